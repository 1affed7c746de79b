package models

// NotificationType tags a status-change message.
type NotificationType string

const (
	NotificationEventCreated   NotificationType = "EVENT_CREATED"
	NotificationDateDecided    NotificationType = "DATE_DECIDED"
	NotificationVenueDecided   NotificationType = "VENUE_DECIDED"
	NotificationEventCancelled NotificationType = "EVENT_CANCELLED"
)

// DeliveryStatus is the outcome reported by a notification sink.
type DeliveryStatus string

const (
	// DeliveryPending marks a record written with its transition whose
	// delivery has not been attempted yet.
	DeliveryPending DeliveryStatus = "PENDING"
	DeliverySent    DeliveryStatus = "SENT"
	DeliveryFailed  DeliveryStatus = "FAILED"
	DeliverySkipped DeliveryStatus = "SKIPPED"
	DeliveryQueued  DeliveryStatus = "QUEUED"
)

// Notification is an append-only record of a message sent about an event.
// It is written in the same transaction as the transition it announces with
// status PENDING. The status is then set once to the delivery outcome; no
// other field is ever modified.
type Notification struct {
	// ID is the unique identifier for the notification (UUID format).
	ID string

	// EventID is the owning event.
	EventID string

	Type    NotificationType
	Message string
	Status  DeliveryStatus

	// CreatedAt is the Unix timestamp when the record was written.
	CreatedAt int64
}
