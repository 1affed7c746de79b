// Package models defines the core domain models for Kanji.
//
// # Aggregate
//
// Event is the aggregate root. Every other model belongs to exactly one
// Event and is removed together with it:
//   - Participant: a person invited to the event, identified by an external token
//   - DateOption: a candidate date-time participants vote on
//   - Vote: one participant's endorsement of one DateOption
//   - VenueOption: a candidate venue, at most one of which is decided
//   - BillSplit: one participant's share of the final bill
//   - Notification: append-only log of status-change messages
//
// # Lifecycle
//
//	PLANNING -> DATE_VOTING -> VENUE_SELECTION -> CONFIRMED -> COMPLETED
//	     \____________\_______________\________________\-> CANCELLED
//
// Events are created directly in DATE_VOTING. COMPLETED and CANCELLED are
// terminal. See Status.CanTransitionTo for the full table.
//
// # Design Principles
//
// 1. **IDs over pointers**: relationships are expressed with ID strings
// 2. **Derived counts**: DateOption.VoteCount is always recomputed from votes
// 3. **Integer money**: amounts are whole currency units (int64)
package models
