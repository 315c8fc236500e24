// Package notify is the outbound notification boundary. Delivery is
// best-effort and at-most-once: the request transition is already durable
// before an event is handed over, failures are logged and never retried
// or surfaced to the caller.
package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/regportal/registration-backend/v1/models"
)

// Event carries everything a delivery channel needs about a processed
// request.
type Event struct {
	RequestID uuid.UUID          `json:"request_id"`
	TypeName  string             `json:"type_name"`
	Status    string             `json:"status"`
	Notes     *string            `json:"notes,omitempty"`
	Contact   models.ContactInfo `json:"contact"`
	Payload   models.Payload     `json:"payload"`
}

// Notifier delivers a notification for a processed request. Implementations
// must tolerate their own delivery failures; the caller never retries.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// LogNotifier writes notifications to the structured log. It stands in
// for real delivery channels (email, WhatsApp) which plug in behind the
// same interface.
type LogNotifier struct{}

// NewLogNotifier creates a new logging notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify logs the event. Never fails.
func (n *LogNotifier) Notify(_ context.Context, event Event) error {
	attrs := []any{
		"requestId", event.RequestID,
		"type", event.TypeName,
		"status", event.Status,
	}
	if event.Contact.Email != nil {
		attrs = append(attrs, "email", *event.Contact.Email)
	}
	if event.Contact.Phone != nil {
		attrs = append(attrs, "phone", *event.Contact.Phone)
	}
	slog.Info("Notification dispatched", attrs...)
	return nil
}
