// Package notify delivers operator alerts for trading events. Alerts are
// dispatched to every registered sender and filtered by event type so
// operators subscribe only to what they care about.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Event classifies an operator alert.
type Event string

const (
	// EventStaleOrders fires when resting orders exceeded the staleness
	// bound and were purged.
	EventStaleOrders Event = "stale_orders"
	// EventOrderRejected fires when the venue rejects a placement.
	EventOrderRejected Event = "order_rejected"
	// EventRoundFailed fires when a quoting round aborts with an error.
	EventRoundFailed Event = "round_failed"
	// EventStartup fires once when the bot comes up.
	EventStartup Event = "startup"
)

// Sender is one notification channel.
type Sender interface {
	// Send delivers an alert with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender.
	Name() string
}

// Notifier dispatches alerts to one or more Senders, forwarding only events
// present in the allowed set. An empty set allows everything.
type Notifier struct {
	senders []Sender
	events  map[Event]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier delivering to the given senders. Only events
// listed in events are forwarded; an empty list forwards all of them.
func NewNotifier(senders []Sender, events []Event, logger *slog.Logger) *Notifier {
	allowed := make(map[Event]bool, len(events))
	for _, e := range events {
		allowed[Event(strings.TrimSpace(string(e)))] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Notify sends an alert to all senders if the event type passes the filter.
func (n *Notifier) Notify(ctx context.Context, event Event, title, message string) error {
	if len(n.events) > 0 && !n.events[event] {
		n.logger.DebugContext(ctx, "event filtered out",
			slog.String("event", string(event)),
		)
		return nil
	}
	return n.dispatch(ctx, title, message)
}

// dispatch fans the alert out to every sender. A failing sender does not
// prevent delivery to the rest; failures are combined into one error.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		n.logger.DebugContext(ctx, "alert sent",
			slog.String("sender", s.Name()),
			slog.String("title", title),
		)
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
