package models

// Participant is a person taking part in an event.
// Participants are created together with the event and are immutable
// afterwards, except for the Attending flag.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string

	// EventID is the owning event.
	EventID string

	// Token is the external identity (e.g. a chat handle), unique per event.
	// Votes reference participants by this token.
	Token string

	// Name is the display name.
	Name string

	// Email is an optional contact address.
	Email string

	// Attending defaults to true. Only attending participants are counted
	// when a bill is split evenly.
	Attending bool

	// CreatedAt is the Unix timestamp when the participant was added.
	CreatedAt int64
}
