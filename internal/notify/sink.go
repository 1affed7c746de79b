// Package notify delivers human-readable status-change messages about events.
// Delivery is best effort: callers record the outcome and never roll back
// state because a message could not be sent.
package notify

import (
	"context"

	"github.com/mmynk/kanji/internal/models"
)

// Message is one outgoing notification.
type Message struct {
	EventID string                  `json:"event_id"`
	Type    models.NotificationType `json:"type"`
	Text    string                  `json:"text"`
	// URL is an optional link shown as a button (e.g. the voting page).
	URL string `json:"url,omitempty"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=Sink
// Sink sends a Message and reports how it went. A non-nil error always comes
// with DeliveryFailed.
type Sink interface {
	Send(ctx context.Context, msg Message) (models.DeliveryStatus, error)
}
