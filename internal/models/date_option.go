package models

import "time"

// DateOption is a candidate date-time participants can vote on.
type DateOption struct {
	// ID is the unique identifier for the option (UUID format).
	ID string

	// EventID is the owning event.
	EventID string

	// StartsAt is the candidate date-time.
	StartsAt time.Time

	// Position is the creation order within the event, starting at 0.
	// It breaks ties when the vote is tallied.
	Position int

	// VoteCount is derived from the Vote set. Stores recompute it on every
	// read and persist it in the same transaction as each vote mutation.
	VoteCount int

	// CreatedAt is the Unix timestamp when the option was created.
	CreatedAt int64
}

// Vote is a single participant's endorsement of one DateOption.
// (DateOptionID, ParticipantToken) is unique.
type Vote struct {
	DateOptionID     string
	ParticipantToken string
	CreatedAt        int64
}

// VoteAction describes the effect of a vote toggle.
type VoteAction string

const (
	VoteAdded   VoteAction = "added"
	VoteRemoved VoteAction = "removed"
)
