package ports

import (
	"context"

	"connwatch/internal/core/domain"
)

type Notifier interface {
	Send(ctx context.Context, message, title string) error
}

type StatusPublisher interface {
	Publish(snapshot domain.StatusSnapshot) error
}

// TransitionLog is the append-only connection log shared with the viewer.
// ok selects the (+) or (-) marker.
type TransitionLog interface {
	Append(ok bool, message string) error
}
