// Package billing splits an event's final bill among its participants and
// tracks who has paid.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/kanji/internal/apperr"
	"github.com/mmynk/kanji/internal/calculator"
	"github.com/mmynk/kanji/internal/lock"
	"github.com/mmynk/kanji/internal/metrics"
	"github.com/mmynk/kanji/internal/models"
	"github.com/mmynk/kanji/internal/storage"
)

// Splitter computes and persists bill splits.
type Splitter struct {
	store   storage.Store
	locker  lock.Locker
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithLocker shares the per-event lock with the consensus engine so bill
// writes serialize with other event mutations.
func WithLocker(l lock.Locker) Option { return func(s *Splitter) { s.locker = l } }
func WithLogger(l *slog.Logger) Option { return func(s *Splitter) { s.logger = l } }
func WithMetrics(m *metrics.Metrics) Option { return func(s *Splitter) { s.metrics = m } }
func WithClock(now func() time.Time) Option { return func(s *Splitter) { s.now = now } }

// New creates a Splitter.
func New(store storage.Store, opts ...Option) *Splitter {
	s := &Splitter{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.locker == nil {
		s.locker = lock.NewLocal()
	}
	return s
}

// ComputeInput holds the bill parameters.
type ComputeInput struct {
	EventID     string
	TotalAmount int64

	// ParticipantCount overrides the divisor of an even split.
	ParticipantCount *int

	// ExplicitSplits maps participant ID to amount. When non-empty it
	// replaces the even split and only the listed participants are charged.
	ExplicitSplits map[string]int64
}

// BillResult is the outcome of ComputeSplit. PerPerson, Remainder and
// ParticipantCount always describe the even division of the total, also in
// explicit mode where they are reported for reference only.
type BillResult struct {
	TotalAmount      int64
	PerPerson        int64
	Remainder        int64
	ParticipantCount int
	Mode             models.SplitMode
	Splits           []*models.BillSplit
}

// BillView is an event's bill as currently stored.
type BillView struct {
	EventID    string
	TotalBill  *int64
	Splits     []*models.BillSplit
	Collection calculator.Collection
}

// ComputeSplit upserts one BillSplit per charged participant, removes the
// splits of everyone else and records the total on the event. Payment marks
// of participants who stay charged are kept.
func (s *Splitter) ComputeSplit(ctx context.Context, in ComputeInput) (*BillResult, error) {
	if in.TotalAmount <= 0 {
		return nil, apperr.InvalidInput("total amount must be positive, got %d", in.TotalAmount)
	}
	if in.ParticipantCount != nil && *in.ParticipantCount <= 0 {
		return nil, apperr.InvalidInput("participant count must be positive, got %d", *in.ParticipantCount)
	}
	for id, amount := range in.ExplicitSplits {
		if amount < 0 {
			return nil, apperr.InvalidInput("amount for participant %s must not be negative, got %d", id, amount)
		}
	}

	result := &BillResult{TotalAmount: in.TotalAmount}
	err := s.withEvent(ctx, in.EventID, func(repo storage.Repository, ev *models.Event) error {
		participants, err := repo.ListParticipants(ctx, in.EventID)
		if err != nil {
			return err
		}

		counted := countedParticipants(participants)
		count := len(counted)
		if in.ParticipantCount != nil {
			count = *in.ParticipantCount
		}
		share, err := calculator.EvenSplit(in.TotalAmount, count)
		if err != nil {
			return apperr.InvalidInput("%v", err)
		}
		result.PerPerson = share.PerPerson
		result.Remainder = share.Remainder
		result.ParticipantCount = count

		var amounts map[string]int64
		if len(in.ExplicitSplits) > 0 {
			amounts, err = explicitAmounts(participants, in.ExplicitSplits)
			if err != nil {
				return err
			}
			result.Mode = models.SplitExplicit
		} else {
			amounts = make(map[string]int64, len(counted))
			for _, p := range counted {
				amounts[p.ID] = share.PerPerson
			}
			result.Mode = models.SplitEven
		}

		// The stored bill is exactly the computed set: rows of participants
		// who are no longer charged are dropped.
		for _, p := range participants {
			amount, ok := amounts[p.ID]
			if !ok {
				if err := repo.DeleteBillSplit(ctx, in.EventID, p.ID); err != nil {
					return err
				}
				continue
			}
			if err := repo.UpsertBillSplit(ctx, &models.BillSplit{
				EventID:       in.EventID,
				ParticipantID: p.ID,
				Amount:        amount,
			}); err != nil {
				return err
			}
		}

		total := in.TotalAmount
		ev.TotalBill = &total
		if err := repo.UpdateEvent(ctx, ev); err != nil {
			return err
		}

		result.Splits, err = repo.ListBillSplits(ctx, in.EventID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.BillComputation(string(result.Mode))
	s.logger.Info("Bill computed",
		"event_id", in.EventID,
		"total_amount", in.TotalAmount,
		"mode", result.Mode,
		"per_person", result.PerPerson,
		"remainder", result.Remainder,
		"participant_count", result.ParticipantCount,
	)
	return result, nil
}

// TogglePaid flips a participant's payment mark. The bill must have been
// computed first.
func (s *Splitter) TogglePaid(ctx context.Context, eventID, participantID string) (*models.BillSplit, error) {
	var out *models.BillSplit
	err := s.withEvent(ctx, eventID, func(repo storage.Repository, _ *models.Event) error {
		split, err := repo.GetBillSplit(ctx, eventID, participantID)
		if err != nil {
			return notFound(err, "no bill split for participant %s in event %s; compute the bill first", participantID, eventID)
		}
		split.IsPaid = !split.IsPaid
		if err := repo.SetBillSplitPaid(ctx, eventID, participantID, split.IsPaid); err != nil {
			return err
		}
		out, err = repo.GetBillSplit(ctx, eventID, participantID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment toggled", "event_id", eventID, "participant_id", participantID, "is_paid", out.IsPaid)
	return out, nil
}

// GetBill returns the stored splits with a collection summary.
func (s *Splitter) GetBill(ctx context.Context, eventID string) (*BillView, error) {
	view := &BillView{EventID: eventID}
	err := s.store.InTx(ctx, func(repo storage.Repository) error {
		ev, err := repo.GetEvent(ctx, eventID)
		if err != nil {
			return notFound(err, "event %s not found", eventID)
		}
		view.TotalBill = ev.TotalBill

		view.Splits, err = repo.ListBillSplits(ctx, eventID)
		return err
	})
	if err != nil {
		return nil, err
	}

	shares := make([]calculator.Share, len(view.Splits))
	for i, sp := range view.Splits {
		shares[i] = calculator.Share{ParticipantID: sp.ParticipantID, Amount: sp.Amount, IsPaid: sp.IsPaid}
	}
	view.Collection = calculator.SummarizeCollection(shares)
	return view, nil
}

func (s *Splitter) withEvent(ctx context.Context, eventID string, fn func(repo storage.Repository, ev *models.Event) error) error {
	unlock, err := s.locker.Lock(ctx, "event:"+eventID)
	if err != nil {
		return fmt.Errorf("failed to lock event %s: %w", eventID, err)
	}
	defer unlock()

	return s.store.InTx(ctx, func(repo storage.Repository) error {
		ev, err := repo.LockEvent(ctx, eventID)
		if err != nil {
			return notFound(err, "event %s not found", eventID)
		}
		return fn(repo, ev)
	})
}

// countedParticipants returns the attending participants, or everyone when
// nobody is marked attending.
func countedParticipants(participants []*models.Participant) []*models.Participant {
	var attending []*models.Participant
	for _, p := range participants {
		if p.Attending {
			attending = append(attending, p)
		}
	}
	if len(attending) == 0 {
		return participants
	}
	return attending
}

func explicitAmounts(participants []*models.Participant, splits map[string]int64) (map[string]int64, error) {
	known := make(map[string]bool, len(participants))
	for _, p := range participants {
		known[p.ID] = true
	}
	for id := range splits {
		if !known[id] {
			return nil, apperr.InvalidInput("participant %s does not belong to this event", id)
		}
	}
	return splits, nil
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(format, args...)
	}
	return err
}
