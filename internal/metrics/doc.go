// Package metrics records build, hook and composer timings.
//
// Components take a Recorder and default to NoopRecorder, so metrics cost
// nothing unless the serve command wires a PrometheusRecorder and exposes it
// on /metrics:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	mux.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
