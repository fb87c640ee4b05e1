// Package otel provides OpenTelemetry metric exporter bindings for taskauth counters.
//
// [NewOTelExporter] registers Int64ObservableCounter instruments for each taskauth
// metric. A single callback reads [taskauth.Engine.MetricsSnapshot] on each collection
// cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate engine state.
package otel
