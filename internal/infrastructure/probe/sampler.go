package probe

import (
	"context"

	"connwatch/internal/core/domain"
	"connwatch/internal/core/ports"
	"connwatch/pkg/tracing"
	"connwatch/pkg/utils"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Sampler composes the ping and DNS probes into one SampleResult per cycle.
// It implements ports.Prober.
type Sampler struct {
	pinger   *Pinger
	resolver *Resolver
	translog ports.TransitionLog
	logger   *zap.SugaredLogger
}

func NewSampler(pinger *Pinger, resolver *Resolver, translog ports.TransitionLog, logger *zap.SugaredLogger) *Sampler {
	return &Sampler{
		pinger:   pinger,
		resolver: resolver,
		translog: translog,
		logger:   logger,
	}
}

func (s *Sampler) Probe(ctx context.Context) domain.SampleResult {
	sampledAt := utils.Now().UTC()

	pctx, span := tracing.TraceProbe(ctx, "ping", s.pinger.host)
	ping := s.pinger.Ping(pctx)
	span.SetAttributes(attribute.Bool("probe.ok", ping.Reachable))
	if ping.LatencyParseFailed || ping.LossParseFailed {
		tracing.RecordError(pctx, domain.ErrUnparsableOutput)
	}
	span.End()

	if ping.LatencyParseFailed {
		s.appendLog(false, "Unable to parse fping output to get ping time")
	}
	if ping.LossParseFailed {
		s.appendLog(false, "Unable to parse fping output to get packet loss")
	}

	// DNS is only meaningful when the host is reachable at all.
	resolved := false
	if ping.Reachable {
		dctx, dspan := tracing.TraceProbe(ctx, "dns", s.resolver.host)
		resolved = s.resolver.Resolve(dctx)
		dspan.SetAttributes(attribute.Bool("probe.ok", resolved))
		dspan.End()
	}

	return domain.SampleResult{
		Reachable:   ping.Reachable,
		LossPercent: ping.Loss,
		AvgLatency:  ping.AvgLatency,
		DNSResolved: resolved,
		SampledAt:   sampledAt,
		RawFailure:  ping.Failure,
	}
}

func (s *Sampler) appendLog(ok bool, message string) {
	if err := s.translog.Append(ok, message); err != nil {
		s.logger.Errorw("failed to append to connection log", "error", err)
	}
}
