package calculator

// Candidate is a tally entry: an option's vote count and its creation order.
type Candidate struct {
	ID       string
	Votes    int
	Position int
}

// PickWinner returns the index of the candidate with the most votes.
// Ties go to the lowest Position, so the earliest-created option wins.
// It returns -1 for an empty slice.
func PickWinner(candidates []Candidate) int {
	best := -1
	for i, c := range candidates {
		if best == -1 {
			best = i
			continue
		}
		b := candidates[best]
		if c.Votes > b.Votes || (c.Votes == b.Votes && c.Position < b.Position) {
			best = i
		}
	}
	return best
}
