// Package reliability wraps outbound dependencies with circuit breaker
// protection.
package reliability

import (
	"context"

	"connwatch/internal/core/ports"
	"connwatch/pkg/circuitbreaker"

	"go.uber.org/zap"
)

// ReliableNotifier decorates a Notifier with a circuit breaker so a failing
// push gateway is skipped instead of eating the loop's time budget every
// cycle. Delivery stays single-attempt; a lost transition is re-signalled by
// later samples, not by re-sending.
type ReliableNotifier struct {
	notifier ports.Notifier
	logger   *zap.SugaredLogger
	breaker  *circuitbreaker.CircuitBreaker
}

// NewReliableNotifier creates a notifier wrapper with the given breaker settings.
func NewReliableNotifier(notifier ports.Notifier, cbConfig circuitbreaker.Config, logger *zap.SugaredLogger) *ReliableNotifier {
	breaker := circuitbreaker.New(cbConfig)

	breaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Infow("notifier circuit breaker state changed",
			"from", from.String(),
			"to", to.String(),
		)
	})

	return &ReliableNotifier{
		notifier: notifier,
		logger:   logger,
		breaker:  breaker,
	}
}

// Send delivers a notification through the circuit breaker.
func (rn *ReliableNotifier) Send(ctx context.Context, message, title string) error {
	return rn.breaker.Execute(ctx, func() error {
		return rn.notifier.Send(ctx, message, title)
	})
}

// Stats returns the current circuit breaker statistics.
func (rn *ReliableNotifier) Stats() circuitbreaker.Stats {
	return rn.breaker.GetStats()
}
