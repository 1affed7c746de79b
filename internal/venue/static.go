package venue

import (
	"context"
	"strings"
)

type staticVenue struct {
	Candidate
	genre string
}

func rating(v float64) *float64 { return &v }

// defaultVenues is a fixed list used for development and when no API key is set.
var defaultVenues = []staticVenue{
	{Candidate{Name: "Uotami Shibuya Center-gai", Address: "25-3 Udagawacho, Shibuya, Tokyo", PriceRange: "3,000-4,000 JPY", Rating: rating(3.5), URL: "https://www.monteroza.co.jp/shop/uotami/"}, "izakaya"},
	{Candidate{Name: "Watami Shinjuku East Exit", Address: "3-34-16 Shinjuku, Shinjuku, Tokyo", PriceRange: "2,500-3,500 JPY", Rating: rating(3.3), URL: "https://www.watami.co.jp/"}, "izakaya"},
	{Candidate{Name: "Domadoma Ikebukuro West Exit", Address: "1-21-1 Nishiikebukuro, Toshima, Tokyo", PriceRange: "3,000-4,000 JPY", Rating: rating(3.7), URL: "https://www.chimney.co.jp/dodoma/"}, "izakaya"},
	{Candidate{Name: "Tsubohachi Shinagawa", Address: "3-25-27 Takanawa, Minato, Tokyo", PriceRange: "3,500-4,500 JPY", Rating: rating(3.4), URL: "https://www.tsubohachi.co.jp/"}, "izakaya"},
	{Candidate{Name: "Sakanaya Dojo Akihabara", Address: "1-15-13 Sotokanda, Chiyoda, Tokyo", PriceRange: "3,000-4,000 JPY", Rating: rating(3.6), URL: "https://www.create-restaurants.co.jp/shop/sakanaya/"}, "seafood izakaya"},
}

// Static recommends from a fixed list, filtered by the location constraint.
type Static struct {
	venues     []staticVenue
	maxResults int
}

func NewStatic(maxResults int) *Static {
	if maxResults <= 0 {
		maxResults = len(defaultVenues)
	}
	return &Static{venues: defaultVenues, maxResults: maxResults}
}

func (s *Static) Name() string { return "static" }

// Recommend returns every venue whose name, address or genre contains one of
// the words of the location constraint. No constraint returns the whole list.
func (s *Static) Recommend(_ context.Context, q Query) ([]Candidate, error) {
	words := strings.Fields(strings.ToLower(q.LocationConstraint))

	var out []Candidate
	for _, v := range s.venues {
		if len(words) == 0 || matchesAny(v, words) {
			out = append(out, v.Candidate)
		}
		if len(out) == s.maxResults {
			break
		}
	}
	return out, nil
}

func matchesAny(v staticVenue, words []string) bool {
	hay := strings.ToLower(v.Name + " " + v.Address + " " + v.genre)
	for _, w := range words {
		if len(w) < 3 {
			continue
		}
		if strings.Contains(hay, w) {
			return true
		}
	}
	return false
}
