// Package prometheus provides Prometheus rendering for goSession metrics.
//
// [NewPrometheusExporter] accepts a [goSession.Controller] and exposes an [http.Handler]
// that renders all goSession counters and histograms in Prometheus text exposition format.
// Counter names are prefixed gsession_*_total; the single histogram is
// gsession_refresh_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate controller state.
package prometheus
