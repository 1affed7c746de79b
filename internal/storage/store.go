// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/kanji/internal/models"
)

var (
	// ErrNotFound is wrapped by every lookup that matches no row.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a uniqueness constraint rejects a write.
	ErrConflict = errors.New("conflict")
)

// Repository defines the entity operations available both outside and inside
// a transaction. Every child entity belongs to exactly one event and is
// removed when the event is deleted.
type Repository interface {
	// CreateEvent persists a new event. ID and timestamps are filled in when empty.
	CreateEvent(ctx context.Context, event *models.Event) error

	// GetEvent retrieves an event by ID.
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)

	// LockEvent retrieves an event and holds a row lock on it until the
	// surrounding transaction ends. Outside a transaction it behaves like GetEvent.
	LockEvent(ctx context.Context, eventID string) (*models.Event, error)

	// ListEvents returns all events, newest first.
	ListEvents(ctx context.Context) ([]*models.Event, error)

	// UpdateEvent overwrites the mutable fields of an event and bumps UpdatedAt.
	UpdateEvent(ctx context.Context, event *models.Event) error

	// DeleteEvent removes an event and everything it owns.
	DeleteEvent(ctx context.Context, eventID string) error

	CreateParticipant(ctx context.Context, p *models.Participant) error
	GetParticipant(ctx context.Context, eventID, participantID string) (*models.Participant, error)
	GetParticipantByToken(ctx context.Context, eventID, token string) (*models.Participant, error)
	ListParticipants(ctx context.Context, eventID string) ([]*models.Participant, error)
	SetAttendance(ctx context.Context, eventID, participantID string, attending bool) error

	CreateDateOption(ctx context.Context, opt *models.DateOption) error

	// GetDateOption and ListDateOptions compute VoteCount from the vote set.
	GetDateOption(ctx context.Context, eventID, dateOptionID string) (*models.DateOption, error)
	// ListDateOptions returns options in creation order.
	ListDateOptions(ctx context.Context, eventID string) ([]*models.DateOption, error)

	// InsertVote returns ErrConflict if the participant already voted for the option.
	InsertVote(ctx context.Context, vote *models.Vote) error
	// DeleteVote reports whether a vote was removed.
	DeleteVote(ctx context.Context, dateOptionID, token string) (bool, error)
	// RecountVotes recomputes the option's vote count, persists it and returns it.
	RecountVotes(ctx context.Context, dateOptionID string) (int, error)

	CreateVenueOption(ctx context.Context, opt *models.VenueOption) error
	GetVenueOption(ctx context.Context, eventID, venueOptionID string) (*models.VenueOption, error)
	ListVenueOptions(ctx context.Context, eventID string) ([]*models.VenueOption, error)
	// MarkVenueDecided sets IsDecided on one option and clears it on its siblings.
	MarkVenueDecided(ctx context.Context, eventID, venueOptionID string) error

	// UpsertBillSplit inserts a split or updates its amount. IsPaid is only
	// written on insert.
	UpsertBillSplit(ctx context.Context, split *models.BillSplit) error
	GetBillSplit(ctx context.Context, eventID, participantID string) (*models.BillSplit, error)
	ListBillSplits(ctx context.Context, eventID string) ([]*models.BillSplit, error)
	SetBillSplitPaid(ctx context.Context, eventID, participantID string, paid bool) error
	// DeleteBillSplit removes a participant's split. Missing rows are not an error.
	DeleteBillSplit(ctx context.Context, eventID, participantID string) error

	// CreateNotification appends a notification record.
	CreateNotification(ctx context.Context, n *models.Notification) error
	// SetNotificationStatus records the delivery outcome of a PENDING
	// notification. It returns ErrNotFound if no pending record matches.
	SetNotificationStatus(ctx context.Context, notificationID string, status models.DeliveryStatus) error
	// ListNotifications returns records oldest first.
	ListNotifications(ctx context.Context, eventID string) ([]*models.Notification, error)
}

// Store defines the interface for event storage.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the consensus engine or the bill splitter.
type Store interface {
	Repository

	// InTx runs fn inside a transaction. The transaction commits if fn
	// returns nil and rolls back otherwise. fn must only use the Repository
	// it is given.
	InTx(ctx context.Context, fn func(Repository) error) error

	// Close releases any resources held by the store.
	Close() error
}
