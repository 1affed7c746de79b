package models

// VenueOption is a candidate venue for an event.
// At most one VenueOption per event has IsDecided set.
type VenueOption struct {
	// ID is the unique identifier for the option (UUID format).
	ID string

	// EventID is the owning event.
	EventID string

	// Name of the venue. Required.
	Name string

	// Address, PriceRange and URL are optional descriptive fields.
	Address    string
	PriceRange string
	URL        string

	// Rating is optional; nil when the source has no rating.
	Rating *float64

	// Source names where the candidate came from ("hotpepper", "gemini", "manual", ...).
	Source string

	// IsDecided marks the venue chosen by the organizer.
	IsDecided bool

	// Position is the insertion order within the event, preserving provider ranking.
	Position int

	// CreatedAt is the Unix timestamp when the option was stored.
	CreatedAt int64
}
