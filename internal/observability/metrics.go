package observability

import (
	"sync/atomic"
	"time"
)

// Metrics collects in-process counters for assistant operations.
// Latency is tracked as a running sum so memory stays constant no
// matter how many requests are recorded.
type Metrics struct {
	parseTotal         atomic.Int64
	parseFailed        atomic.Int64
	executeTotal       atomic.Int64
	executeFailed      atomic.Int64
	lowConfidence      atomic.Int64
	constraintDegraded atomic.Int64

	parseLatencyNs   atomic.Int64
	executeLatencyNs atomic.Int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordParse records a parse attempt and its latency.
func (m *Metrics) RecordParse(d time.Duration, failed bool) {
	m.parseTotal.Add(1)
	if failed {
		m.parseFailed.Add(1)
	}
	m.parseLatencyNs.Add(d.Nanoseconds())
}

// RecordExecute records an execution attempt and its latency.
func (m *Metrics) RecordExecute(d time.Duration, failed bool) {
	m.executeTotal.Add(1)
	if failed {
		m.executeFailed.Add(1)
	}
	m.executeLatencyNs.Add(d.Nanoseconds())
}

// RecordLowConfidence records an intent stopped at the confidence gate.
func (m *Metrics) RecordLowConfidence() {
	m.lowConfidence.Add(1)
}

// RecordConstraintDegraded records a skipped advisory constraint check.
func (m *Metrics) RecordConstraintDegraded() {
	m.constraintDegraded.Add(1)
}

// Snapshot is a point-in-time view of the collected metrics.
type Snapshot struct {
	ParseTotal         int64         `json:"parse_total"`
	ParseFailed        int64         `json:"parse_failed"`
	ExecuteTotal       int64         `json:"execute_total"`
	ExecuteFailed      int64         `json:"execute_failed"`
	LowConfidence      int64         `json:"low_confidence"`
	ConstraintDegraded int64         `json:"constraint_degraded"`
	AvgParseLatency    time.Duration `json:"avg_parse_latency_ns"`
	AvgExecuteLatency  time.Duration `json:"avg_execute_latency_ns"`
}

// Snapshot returns the current counters.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		ParseTotal:         m.parseTotal.Load(),
		ParseFailed:        m.parseFailed.Load(),
		ExecuteTotal:       m.executeTotal.Load(),
		ExecuteFailed:      m.executeFailed.Load(),
		LowConfidence:      m.lowConfidence.Load(),
		ConstraintDegraded: m.constraintDegraded.Load(),
		AvgParseLatency:    average(m.parseLatencyNs.Load(), m.parseTotal.Load()),
		AvgExecuteLatency:  average(m.executeLatencyNs.Load(), m.executeTotal.Load()),
	}
}

func average(totalNs, count int64) time.Duration {
	if count == 0 {
		return 0
	}
	return time.Duration(totalNs / count)
}
