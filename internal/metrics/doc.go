// Package metrics records build and stage metrics.
//
// Components receive a Recorder through their options and default to
// NoopRecorder, so no nil checks are needed at call sites. The CLI swaps in a
// PrometheusRecorder when --metrics-file (or build.metrics_file) is set and
// writes the registry in text exposition format after the build.
package metrics
