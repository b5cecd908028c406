package services

import (
	"context"
	"time"

	"connwatch/internal/core/domain"
	"connwatch/internal/core/ports"
	"connwatch/pkg/tracing"
	"connwatch/pkg/utils"

	"go.uber.org/zap"
)

// Loop drives one sampling cycle per interval: probe, classify, notify,
// publish. Cycles never overlap, so the tracker needs no synchronization.
type Loop struct {
	interval time.Duration
	prober   ports.Prober
	tracker  *HealthTracker
	translog ports.TransitionLog
	notifier ports.Notifier
	status   ports.StatusPublisher
	metrics  ports.Metrics
	logger   *zap.SugaredLogger
}

func NewLoop(
	interval time.Duration,
	prober ports.Prober,
	tracker *HealthTracker,
	translog ports.TransitionLog,
	notifier ports.Notifier,
	status ports.StatusPublisher,
	metrics ports.Metrics,
	logger *zap.SugaredLogger,
) *Loop {
	return &Loop{
		interval: interval,
		prober:   prober,
		tracker:  tracker,
		translog: translog,
		notifier: notifier,
		status:   status,
		metrics:  metrics,
		logger:   logger,
	}
}

// Run executes cycles at a fixed cadence anchored to each cycle's start until
// ctx is cancelled. A slow cycle shortens the following sleep, never skips or
// overlaps the next one.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Infow("monitor loop started", "interval", l.interval)
	for {
		select {
		case <-ctx.Done():
			l.logger.Infow("monitor loop stopped")
			return ctx.Err()
		default:
		}

		start := utils.Now()
		l.runCycle(ctx)
		elapsed := utils.Since(start)
		l.metrics.RecordCycle(elapsed)

		wait := l.interval - elapsed
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			l.logger.Infow("monitor loop stopped")
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *Loop) runCycle(ctx context.Context) {
	cctx, span := tracing.TraceCycle(ctx, l.tracker.cfg.PingHost)
	defer span.End()
	defer tracing.MeasureDuration(cctx, time.Now(), "monitor.cycle")

	sample := l.prober.Probe(cctx)
	l.metrics.RecordSample(sample)
	tracing.AddSpanAttributes(cctx,
		tracing.ReachableKey.Bool(sample.Reachable),
		tracing.DNSResolvedKey.Bool(sample.DNSResolved),
	)
	if sample.AvgLatency.Known {
		tracing.AddSpanAttributes(cctx, tracing.LatencyKey.Float64(sample.AvgLatency.Value))
	}
	if sample.LossPercent.Known {
		tracing.AddSpanAttributes(cctx, tracing.PacketLossKey.Float64(sample.LossPercent.Value))
	}

	for _, ev := range l.tracker.Update(sample) {
		l.handleEvent(cctx, ev)
	}
	for _, sig := range domain.Signals {
		l.metrics.SetAlerted(sig, l.tracker.Alerted(sig))
	}

	if err := l.status.Publish(l.tracker.Snapshot(sample.SampledAt)); err != nil {
		l.logger.Errorw("failed to publish status", "error", err)
	}
}

// handleEvent records one transition in the connection log and hands it to
// the notifier. Both sinks are best-effort; their failures never abort the
// cycle.
func (l *Loop) handleEvent(ctx context.Context, ev domain.NotificationEvent) {
	l.logger.Infow("health transition",
		"signal", ev.Signal,
		"kind", ev.Kind,
		"title", ev.Title,
		"message", ev.Message)

	tracing.AddSpanAttributes(ctx, tracing.SignalKey.String(string(ev.Signal)))

	ok := ev.Kind == domain.KindRecovered
	if err := l.translog.Append(ok, "Alert: "+ev.Message); err != nil {
		l.logger.Errorw("failed to append to connection log", "error", err, "message", ev.Message)
	}

	if err := l.notifier.Send(ctx, ev.Message, ev.Title); err != nil {
		tracing.RecordError(ctx, err)
		l.logger.Errorw("failed to send notification",
			"error", err,
			"title", ev.Title,
			"message", ev.Message)
		l.metrics.RecordNotifyFailure(ev.Signal)
		return
	}
	l.metrics.RecordNotification(ev)
}
