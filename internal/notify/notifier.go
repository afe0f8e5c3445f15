// Package notify delivers end-of-run notifications to the configured channels
// (Telegram, Discord). Delivery failures are logged per channel and never fail
// the scan itself.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Sender is the interface each notification channel implements.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender (e.g. "telegram").
	Name() string
}

// Notifier dispatches notifications to one or more Senders.
type Notifier struct {
	senders []Sender
	logger  *slog.Logger
}

// NewNotifier creates a Notifier delivering to the given senders.
func NewNotifier(senders []Sender, logger *slog.Logger) *Notifier {
	return &Notifier{
		senders: senders,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Enabled reports whether at least one channel is configured.
func (n *Notifier) Enabled() bool {
	return n != nil && len(n.senders) > 0
}

// Notify sends the message to every sender, collecting per-channel failures
// into one error. Partial delivery is reported, not retried.
func (n *Notifier) Notify(ctx context.Context, title, message string) error {
	if !n.Enabled() {
		return nil
	}

	var failed []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.Error("notification delivery failed",
				slog.String("channel", s.Name()),
				slog.String("error", err.Error()),
			)
			failed = append(failed, s.Name())
			continue
		}
		n.logger.Debug("notification delivered", slog.String("channel", s.Name()))
	}

	if len(failed) > 0 {
		return fmt.Errorf("notify: delivery failed on: %s", strings.Join(failed, ", "))
	}
	return nil
}
