package domain

import "time"

// Metric is a measurement that may be absent when probe output could not be
// parsed. Unknown is distinct from zero.
type Metric struct {
	Value float64
	Known bool
}

func KnownMetric(v float64) Metric {
	return Metric{Value: v, Known: true}
}

func UnknownMetric() Metric {
	return Metric{}
}

// SampleResult is one probe cycle's raw measurement. Produced fresh each
// cycle, never mutated.
type SampleResult struct {
	Reachable   bool
	LossPercent Metric // percent, 0-100
	AvgLatency  Metric // milliseconds
	DNSResolved bool
	SampledAt   time.Time
	RawFailure  string // probe tool failure reason, for logging only
}
