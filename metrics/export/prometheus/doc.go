// Package prometheus provides Prometheus collectors for taskauth metrics.
//
// [NewPrometheusExporter] accepts a [taskauth.Engine] and exposes an [http.Handler]
// that renders all taskauth counters in Prometheus text exposition format. Counter
// names are prefixed taskauth_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
