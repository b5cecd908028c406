package notify

import "context"

// NopNotifier silently drops notifications. Used when notifications are
// disabled in config.
type NopNotifier struct{}

func (NopNotifier) Send(ctx context.Context, message, title string) error {
	return nil
}
