package models

// BillSplit is one participant's owed share of the final bill.
// (EventID, ParticipantID) is unique.
type BillSplit struct {
	EventID       string
	ParticipantID string

	// Amount owed in whole currency units.
	Amount int64

	// IsPaid is false on creation and survives recomputation of the bill.
	IsPaid bool

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64
}

// SplitMode tells whether a bill was split evenly or from explicit amounts.
type SplitMode string

const (
	SplitEven     SplitMode = "even"
	SplitExplicit SplitMode = "explicit"
)
