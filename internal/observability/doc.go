// Package observability groups the logging, metrics and tracing helpers
// used by the ingestion worker and CLI.
//
// Subpackages:
//   - logging: slog construction and run-scoped context propagation
//   - metrics: Prometheus collectors and recorders for ingestion runs
//   - tracing: the OpenTelemetry tracer used for run and source spans
package observability
