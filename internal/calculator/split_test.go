package calculator

import (
	"testing"
)

func TestEvenSplit(t *testing.T) {
	tests := []struct {
		name          string
		total         int64
		count         int
		wantPerPerson int64
		wantRemainder int64
		wantErr       bool
	}{
		{
			name:          "divides evenly",
			total:         15000,
			count:         4,
			wantPerPerson: 3750,
			wantRemainder: 0,
		},
		{
			name:          "rounds up with remainder",
			total:         10000,
			count:         3,
			wantPerPerson: 3334,
			wantRemainder: 1,
		},
		{
			name:          "single participant pays everything",
			total:         4321,
			count:         1,
			wantPerPerson: 4321,
			wantRemainder: 0,
		},
		{
			name:          "more people than currency units",
			total:         2,
			count:         5,
			wantPerPerson: 1,
			wantRemainder: 2,
		},
		{
			name:    "zero participants should error",
			total:   9999,
			count:   0,
			wantErr: true,
		},
		{
			name:    "negative participants should error",
			total:   9999,
			count:   -2,
			wantErr: true,
		},
		{
			name:    "zero total should error",
			total:   0,
			count:   3,
			wantErr: true,
		},
		{
			name:    "negative total should error",
			total:   -100,
			count:   3,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvenSplit(tt.total, tt.count)
			if (err != nil) != tt.wantErr {
				t.Fatalf("EvenSplit() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.PerPerson != tt.wantPerPerson {
				t.Errorf("PerPerson = %d, want %d", got.PerPerson, tt.wantPerPerson)
			}
			if got.Remainder != tt.wantRemainder {
				t.Errorf("Remainder = %d, want %d", got.Remainder, tt.wantRemainder)
			}
			// Ceiling never under-collects
			if got.PerPerson*int64(tt.count) < tt.total {
				t.Errorf("PerPerson*count = %d, less than total %d", got.PerPerson*int64(tt.count), tt.total)
			}
		})
	}
}

func TestSummarizeCollection(t *testing.T) {
	shares := []Share{
		{ParticipantID: "p1", Amount: 3334, IsPaid: true},
		{ParticipantID: "p2", Amount: 3334},
		{ParticipantID: "p3", Amount: 3334},
	}

	got := SummarizeCollection(shares)

	if got.Assigned != 10002 {
		t.Errorf("Assigned = %d, want 10002", got.Assigned)
	}
	if got.Collected != 3334 {
		t.Errorf("Collected = %d, want 3334", got.Collected)
	}
	if got.Outstanding != 6668 {
		t.Errorf("Outstanding = %d, want 6668", got.Outstanding)
	}
	if len(got.Unpaid) != 2 || got.Unpaid[0] != "p2" || got.Unpaid[1] != "p3" {
		t.Errorf("Unpaid = %v, want [p2 p3]", got.Unpaid)
	}
}

func TestSummarizeCollectionEmpty(t *testing.T) {
	got := SummarizeCollection(nil)
	if got.Assigned != 0 || got.Outstanding != 0 || len(got.Unpaid) != 0 {
		t.Errorf("SummarizeCollection(nil) = %+v, want zero value", got)
	}
}
