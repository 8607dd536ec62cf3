// Package metrics defines the Prometheus collectors for ingestion runs and
// small recorder helpers around them. Collectors are registered with the
// default registry and served by the worker's /metrics endpoint.
package metrics
