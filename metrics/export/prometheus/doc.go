// Package prometheus exports engine metrics through a client_golang
// collector.
//
// [NewCollector] reads Engine.MetricsSnapshot on every scrape, so it can be
// registered with any Registerer. [Exporter] bundles it with a private
// registry and a promhttp handler for hosts without their own. Counters are
// named authtools_<flow>_<outcome>_total; latency histograms are
// authtools_<flow>_latency_seconds and authtools_validate_access_latency_seconds.
//
// Nothing is registered with the global registry.
package prometheus
