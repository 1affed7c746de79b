// Package venue provides venue recommendation backends. A Provider returns
// an empty list when nothing matches and an error only when it could not
// be reached; callers treat that error as "recommendations unavailable".
package venue

import (
	"context"
)

// Query carries the event constraints sent to a provider.
type Query struct {
	Title              string
	BudgetPerPerson    *int64
	PartySize          int
	LocationConstraint string
}

// Keyword is the search term: the location constraint if set, else the title.
func (q Query) Keyword() string {
	if q.LocationConstraint != "" {
		return q.LocationConstraint
	}
	return q.Title
}

// Candidate is one recommended venue.
type Candidate struct {
	Name       string   `json:"name"`
	Address    string   `json:"address,omitempty"`
	PriceRange string   `json:"price_range,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
	URL        string   `json:"url,omitempty"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=Provider
type Provider interface {
	// Name identifies the provider in stored VenueOptions and logs.
	Name() string
	Recommend(ctx context.Context, q Query) ([]Candidate, error)
}
