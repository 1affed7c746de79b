package models

import (
	"fmt"
	"time"
)

// DecisionSource records how an event's date was decided.
type DecisionSource string

const (
	// DecidedByMajority means the date was picked by tallying votes.
	DecidedByMajority DecisionSource = "majority"
	// DecidedByOrganizer means the organizer picked the date directly.
	DecidedByOrganizer DecisionSource = "organizer"
)

// Event represents one planned gathering and its lifecycle.
// It is the aggregate root: all other models belong to exactly one Event.
type Event struct {
	// ID is the unique identifier for the event (UUID format).
	ID string

	// Title is the human-readable name of the event.
	Title string

	// Description is optional free text.
	Description string

	// BudgetPerPerson is the optional per-head budget in whole currency units.
	BudgetPerPerson *int64

	// LocationConstraint is optional free text such as "near Shibuya station".
	// It is forwarded to the venue recommendation provider.
	LocationConstraint string

	// Status is the current lifecycle state.
	Status Status

	// DecidedDate is set while Status is VENUE_SELECTION, CONFIRMED or COMPLETED.
	DecidedDate *time.Time

	// DateDecidedBy records whether the date came from the tally or the organizer.
	// Empty while DecidedDate is nil.
	DateDecidedBy DecisionSource

	// DecidedVenueName is set while Status is CONFIRMED or COMPLETED.
	DecidedVenueName string

	// DecidedVenueURL is copied from the decided VenueOption (may be empty).
	DecidedVenueURL string

	// TotalBill is the last total passed to the bill splitter.
	TotalBill *int64

	// CreatedAt is the Unix timestamp when the event was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last mutation.
	UpdatedAt int64
}

// CheckInvariants verifies that the decided fields agree with Status.
func (e *Event) CheckInvariants() error {
	if !e.Status.Valid() {
		return fmt.Errorf("event %s has unknown status %q", e.ID, e.Status)
	}
	if e.Status.HasDecidedDate() != (e.DecidedDate != nil) {
		return fmt.Errorf("event %s: decided date presence does not match status %s", e.ID, e.Status)
	}
	if e.Status.HasDecidedVenue() != (e.DecidedVenueName != "") {
		return fmt.Errorf("event %s: decided venue presence does not match status %s", e.ID, e.Status)
	}
	return nil
}

// ClearDecisions drops every decided field.
func (e *Event) ClearDecisions() {
	e.DecidedDate = nil
	e.DateDecidedBy = ""
	e.DecidedVenueName = ""
	e.DecidedVenueURL = ""
}
