package service

import (
	"context"
	"log/slog"

	"github.com/pkordes/car-rental/internal/events"
)

// notifier publishes events after a unit of work commits. Publish failures
// are logged and never returned: the write they describe already happened.
type notifier struct {
	pub events.Publisher
	log *slog.Logger
}

func newNotifier(pub events.Publisher, log *slog.Logger) notifier {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return notifier{pub: pub, log: log}
}

func (n notifier) publish(ctx context.Context, key string, payload any) {
	if err := n.pub.Publish(ctx, key, payload); err != nil {
		n.log.WarnContext(ctx, "event publish failed", "routing_key", key, "error", err)
	}
}
