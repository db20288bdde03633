package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jamlabs/reimbursement-service/internal/core/events"
)

// Sender is implemented by Client and by test doubles.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string)
}

// EventHandler bridges notification events to the outbound client.
type EventHandler struct {
	sender Sender
	logger *slog.Logger
}

func NewEventHandler(sender Sender, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		sender: sender,
		logger: logger,
	}
}

func (h *EventHandler) HandleNotificationRequested(ctx context.Context, event events.Event) error {
	ev, ok := event.(*events.NotificationRequestedEvent)
	if !ok {
		h.logger.Error("invalid event type for notification handler", "event_type", event.EventType())
		return fmt.Errorf("expected NotificationRequestedEvent, got %T", event)
	}

	h.sender.Send(ctx, ev.Recipient, ev.Subject, ev.Body)
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeNotificationRequested, h.HandleNotificationRequested)

	h.logger.Info("mailer event handlers registered",
		"handlers", []string{events.EventTypeNotificationRequested})
}
