package ports

import (
	"context"
	"time"

	"connwatch/internal/core/domain"
)

// Prober runs one full connectivity probe. It never returns an error: probe
// tool failures are folded into the sample as Down or Unknown fields.
type Prober interface {
	Probe(ctx context.Context) domain.SampleResult
}

// Metrics receives per-cycle observations for instrumentation.
type Metrics interface {
	RecordCycle(elapsed time.Duration)
	RecordSample(sample domain.SampleResult)
	RecordNotification(event domain.NotificationEvent)
	RecordNotifyFailure(signal domain.Signal)
	SetAlerted(signal domain.Signal, alerted bool)
}
