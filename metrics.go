package authtools

import (
	"fmt"
	"sync/atomic"
	"time"
)

// MetricID indexes one counter or latency histogram.
type MetricID uint16

// Outcome classifies how a flow call ended.
type Outcome uint8

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
	OutcomeIntercepted
	OutcomeDisabled
	OutcomeServerError
	outcomeCount
)

// Outcomes lists every outcome in declaration order.
var Outcomes = [outcomeCount]Outcome{OutcomeSuccess, OutcomeFailure, OutcomeIntercepted, OutcomeDisabled, OutcomeServerError}

var outcomeNames = [outcomeCount]string{"success", "failure", "intercepted", "disabled", "server_error"}

func (o Outcome) String() string {
	if o >= outcomeCount {
		return fmt.Sprintf("outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// Flow outcome counters occupy the first flowCount*outcomeCount ids.
const flowOutcomeMetrics = MetricID(flowCount) * MetricID(outcomeCount)

const (
	MetricValidateAccessSuccess MetricID = flowOutcomeMetrics + iota
	MetricValidateAccessFailure
	MetricValidateLatency
	metricFlowLatencyBase
)

const metricIDCount = metricFlowLatencyBase + MetricID(flowCount)

// FlowMetric returns the counter id for flow ending with outcome.
func FlowMetric(flow Flow, outcome Outcome) MetricID {
	return MetricID(flow)*MetricID(outcomeCount) + MetricID(outcome)
}

// FlowLatencyMetric returns the latency histogram id of flow.
func FlowLatencyMetric(flow Flow) MetricID {
	return metricFlowLatencyBase + MetricID(flow)
}

// String returns the stable snake_case name of id, without prefix or suffix.
func (id MetricID) String() string {
	switch {
	case id < flowOutcomeMetrics:
		flow := Flow(id / MetricID(outcomeCount))
		outcome := Outcome(id % MetricID(outcomeCount))
		return flow.String() + "_" + outcome.String()
	case id == MetricValidateAccessSuccess:
		return "validate_access_success"
	case id == MetricValidateAccessFailure:
		return "validate_access_failure"
	case id == MetricValidateLatency:
		return "validate_access_latency"
	case id < metricIDCount:
		return Flow(id-metricFlowLatencyBase).String() + "_latency"
	default:
		return fmt.Sprintf("metric(%d)", int(id))
	}
}

// IsLatency reports whether id names a histogram rather than a counter.
func (id MetricID) IsLatency() bool {
	return id == MetricValidateLatency || (id >= metricFlowLatencyBase && id < metricIDCount)
}

// CounterMetrics lists every counter id in stable order.
func CounterMetrics() []MetricID {
	out := make([]MetricID, 0, int(metricIDCount))
	for id := MetricID(0); id < metricIDCount; id++ {
		if !id.IsLatency() {
			out = append(out, id)
		}
	}
	return out
}

// LatencyMetrics lists every histogram id in stable order.
func LatencyMetrics() []MetricID {
	out := []MetricID{MetricValidateLatency}
	for _, flow := range Flows {
		out = append(out, FlowLatencyMetric(flow))
	}
	return out
}

const (
	// HistogramBucketCount is the number of latency buckets: <=5ms, 10, 25,
	// 50, 100, 250, 500 and +Inf.
	HistogramBucketCount = 8
	cacheLineSize        = 64
)

type metricHistogram struct {
	buckets [HistogramBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free in-process counters. A nil or disabled Metrics
// ignores every update.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of every counter and, when
// latency histograms are enabled, every non-cumulative bucket slice.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount || id.IsLatency() {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d into the histogram id. Counter ids are ignored.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id >= metricIDCount || !id.IsLatency() {
		return
	}
	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return emptySnapshot()
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, int(flowCount)+1),
	}

	for _, id := range CounterMetrics() {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		for _, id := range LatencyMetrics() {
			buckets := make([]uint64, HistogramBucketCount)
			for i := range buckets {
				buckets[i] = atomic.LoadUint64(&m.histograms[id].buckets[i])
			}
			s.Histograms[id] = buckets
		}
	}

	return s
}

func emptySnapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
