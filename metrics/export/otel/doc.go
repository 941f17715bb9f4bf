// Package otel publishes engine metrics as OpenTelemetry observable
// instruments.
//
// [NewExporter] registers one Int64ObservableCounter per engine counter and
// one Int64ObservableGauge per cumulative latency bucket, plus a sample
// count gauge. A single callback reads Engine.MetricsSnapshot on each
// collection. The caller owns the MeterProvider.
package otel
