package models

// Status is the lifecycle state of an Event.
type Status string

const (
	StatusPlanning       Status = "PLANNING"
	StatusDateVoting     Status = "DATE_VOTING"
	StatusVenueSelection Status = "VENUE_SELECTION"
	StatusConfirmed      Status = "CONFIRMED"
	StatusCompleted      Status = "COMPLETED"
	StatusCancelled      Status = "CANCELLED"
)

// transitions lists the forward edges of the state machine.
// CANCELLED is reachable from every non-terminal state and is handled in CanTransitionTo.
var transitions = map[Status]Status{
	StatusPlanning:       StatusDateVoting,
	StatusDateVoting:     StatusVenueSelection,
	StatusVenueSelection: StatusConfirmed,
	StatusConfirmed:      StatusCompleted,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPlanning, StatusDateVoting, StatusVenueSelection,
		StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible from s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether the state machine allows s -> next.
func (s Status) CanTransitionTo(next Status) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	return transitions[s] == next
}

// HasDecidedDate reports whether an event in status s must carry a decided date.
func (s Status) HasDecidedDate() bool {
	return s == StatusVenueSelection || s == StatusConfirmed || s == StatusCompleted
}

// HasDecidedVenue reports whether an event in status s must carry a decided venue.
func (s Status) HasDecidedVenue() bool {
	return s == StatusConfirmed || s == StatusCompleted
}
