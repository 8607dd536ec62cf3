// Package tracing exposes the OpenTelemetry tracer used for ingestion spans.
// Without a configured TracerProvider spans are no-ops.
package tracing
