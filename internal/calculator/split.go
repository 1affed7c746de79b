package calculator

import (
	"fmt"
)

// EvenShare is the result of dividing a bill evenly.
type EvenShare struct {
	PerPerson int64
	Remainder int64
}

// EvenSplit divides total among count people, rounding each share up so the
// organizer never collects less than total.
// Remainder = total mod count. It is a reporting value only; it is not
// redistributed. PerPerson*count - total equals count-Remainder when Remainder > 0.
func EvenSplit(total int64, count int) (EvenShare, error) {
	if total <= 0 {
		return EvenShare{}, fmt.Errorf("total amount must be positive, got %d", total)
	}
	if count <= 0 {
		return EvenShare{}, fmt.Errorf("participant count must be positive, got %d", count)
	}

	n := int64(count)
	perPerson := total / n
	remainder := total % n
	if remainder > 0 {
		perPerson++
	}

	return EvenShare{PerPerson: perPerson, Remainder: remainder}, nil
}
