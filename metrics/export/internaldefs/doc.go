// Package internaldefs holds the metric names, help strings and bucket
// bounds shared by the Prometheus and OTel exporters, so both publish the
// same series.
//
// Definitions are derived from authtools.CounterMetrics and
// authtools.LatencyMetrics; adding a flow or outcome adds its series to
// every exporter.
package internaldefs
