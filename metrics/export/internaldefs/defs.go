package internaldefs

import (
	"fmt"

	"github.com/MrEthical07/authtools"
)

// Prefix starts every exported metric name.
const Prefix = "authtools_"

// CounterDef names one counter.
type CounterDef struct {
	ID   authtools.MetricID
	Name string
	Help string
}

// HistogramDef names one latency histogram.
type HistogramDef struct {
	ID   authtools.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter of audit events lost to backpressure.
const (
	AuditDroppedName = Prefix + "audit_dropped_total"
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

var (
	CounterDefs   = counterDefs()
	HistogramDefs = histogramDefs()
)

func counterDefs() []CounterDef {
	defs := make([]CounterDef, 0, len(authtools.CounterMetrics()))
	for _, flow := range authtools.Flows {
		for _, outcome := range authtools.Outcomes {
			id := authtools.FlowMetric(flow, outcome)
			defs = append(defs, CounterDef{
				ID:   id,
				Name: Prefix + id.String() + "_total",
				Help: fmt.Sprintf("Calls of the %s flow ending with outcome %s.", flow, outcome),
			})
		}
	}
	defs = append(defs,
		CounterDef{
			ID:   authtools.MetricValidateAccessSuccess,
			Name: Prefix + authtools.MetricValidateAccessSuccess.String() + "_total",
			Help: "Access tokens accepted by ValidateAccessToken.",
		},
		CounterDef{
			ID:   authtools.MetricValidateAccessFailure,
			Name: Prefix + authtools.MetricValidateAccessFailure.String() + "_total",
			Help: "Access tokens missing or rejected by ValidateAccessToken.",
		},
	)
	return defs
}

func histogramDefs() []HistogramDef {
	defs := make([]HistogramDef, 0, len(authtools.LatencyMetrics()))
	for _, id := range authtools.LatencyMetrics() {
		help := "ValidateAccessToken latency in seconds."
		if id != authtools.MetricValidateLatency {
			help = fmt.Sprintf("Latency of the %s flow in seconds.", id.String()[:len(id.String())-len("_latency")])
		}
		defs = append(defs, HistogramDef{
			ID:   id,
			Name: Prefix + id.String() + "_seconds",
			Help: help,
		})
	}
	return defs
}

// HistogramBounds are the finite bucket upper bounds in seconds. The last
// engine bucket is +Inf.
var HistogramBounds = [authtools.HistogramBucketCount - 1]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names every bucket, +Inf included, for exporters
// without native histogram labels.
var HistogramBoundSuffix = [authtools.HistogramBucketCount]string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, padding with zeros.
func NormalizeBuckets(raw []uint64) [authtools.HistogramBucketCount]uint64 {
	var out [authtools.HistogramBucketCount]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals. The last
// element is the sample count.
func CumulativeBuckets(raw [authtools.HistogramBucketCount]uint64) [authtools.HistogramBucketCount]uint64 {
	var out [authtools.HistogramBucketCount]uint64
	var running uint64
	for i, v := range raw {
		running += v
		out[i] = running
	}
	return out
}
