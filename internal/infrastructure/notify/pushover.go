package notify

import (
	"context"
	"fmt"
	"time"

	"connwatch/pkg/utils"

	"github.com/gregdel/pushover"
	"go.uber.org/zap"
)

// PushoverNotifier delivers notifications through the Pushover API. Every
// send is bounded by the configured timeout; an in-flight send that outlives
// it is abandoned so the control loop never stalls on the transport.
type PushoverNotifier struct {
	app       *pushover.Pushover
	recipient *pushover.Recipient
	timeout   time.Duration
	logger    *zap.SugaredLogger
}

func NewPushoverNotifier(creds Credentials, timeout time.Duration, logger *zap.SugaredLogger) *PushoverNotifier {
	return &PushoverNotifier{
		app:       pushover.New(creds.Token),
		recipient: pushover.NewRecipient(creds.User),
		timeout:   timeout,
		logger:    logger,
	}
}

func (n *PushoverNotifier) Send(ctx context.Context, message, title string) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	msg := pushover.NewMessageWithTitle(
		utils.TruncateString(message, pushover.MessageMaxLength),
		utils.TruncateString(title, pushover.MessageTitleMaxLength))

	// The pushover client has no context support, so the call is pushed to a
	// goroutine and abandoned on timeout.
	done := make(chan error, 1)
	go func() {
		_, err := n.app.SendMessage(msg, n.recipient)
		done <- err
	}()

	select {
	case <-ctx.Done():
		n.logger.Warnw("pushover send abandoned", "title", title, "error", ctx.Err())
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send pushover notification: %w", err)
		}
		n.logger.Debugw("pushover notification sent", "title", title)
		return nil
	}
}
