package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeNotificationRequested = "notification.requested"
)

// NotificationRequestedEvent carries a fully rendered email. The workflow
// publishes one of these per recipient after the store commit; the mailer
// subscriber does the actual dispatch.
type NotificationRequestedEvent struct {
	BaseEvent
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

func NewNotificationRequestedEvent(recipient, subject, body string) *NotificationRequestedEvent {
	return &NotificationRequestedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeNotificationRequested,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"recipient": recipient,
				"subject":   subject,
			},
		},
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
	}
}
