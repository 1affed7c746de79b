package calculator

// Share is one participant's owed amount and payment mark.
type Share struct {
	ParticipantID string
	Amount        int64
	IsPaid        bool
}

// Collection summarizes how much of a bill has been collected.
type Collection struct {
	Assigned    int64 // Sum of all shares
	Collected   int64 // Sum of shares marked paid
	Outstanding int64 // Assigned - Collected
	Unpaid      []string
}

// SummarizeCollection aggregates shares into collected and outstanding totals.
// Unpaid lists participant IDs in input order.
func SummarizeCollection(shares []Share) Collection {
	var c Collection
	for _, s := range shares {
		c.Assigned += s.Amount
		if s.IsPaid {
			c.Collected += s.Amount
			continue
		}
		c.Unpaid = append(c.Unpaid, s.ParticipantID)
	}
	c.Outstanding = c.Assigned - c.Collected
	return c
}
