package consensus

import (
	"context"

	"github.com/mmynk/kanji/internal/apperr"
	"github.com/mmynk/kanji/internal/calculator"
	"github.com/mmynk/kanji/internal/models"
	"github.com/mmynk/kanji/internal/notify"
	"github.com/mmynk/kanji/internal/storage"
)

// FinalizeDate decides the date by tally: most votes wins, ties go to the
// earliest-created option. The event moves to VENUE_SELECTION.
func (e *Engine) FinalizeDate(ctx context.Context, eventID string) (*models.Event, error) {
	var (
		decided *models.Event
		note    *pending
	)
	err := e.mutate(ctx, eventID, func(repo storage.Repository, ev *models.Event) error {
		if err := requireStatus(ev, models.StatusDateVoting); err != nil {
			return err
		}

		opts, err := repo.ListDateOptions(ctx, eventID)
		if err != nil {
			return err
		}
		if len(opts) == 0 {
			return apperr.EmptyCandidateSet("event %s has no date options", eventID)
		}

		candidates := make([]calculator.Candidate, len(opts))
		for i, o := range opts {
			candidates[i] = calculator.Candidate{ID: o.ID, Votes: o.VoteCount, Position: o.Position}
		}
		winner := opts[calculator.PickWinner(candidates)]

		note, err = e.decideDate(ctx, repo, ev, winner, models.DecidedByMajority)
		if err != nil {
			return err
		}
		decided = ev
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.afterDateDecided(ctx, decided, note)
	return decided, nil
}

// DecideDateManually lets the organizer pick any option, regardless of votes.
func (e *Engine) DecideDateManually(ctx context.Context, eventID, dateOptionID string) (*models.Event, error) {
	var (
		decided *models.Event
		note    *pending
	)
	err := e.mutate(ctx, eventID, func(repo storage.Repository, ev *models.Event) error {
		if err := requireStatus(ev, models.StatusDateVoting); err != nil {
			return err
		}

		opt, err := repo.GetDateOption(ctx, eventID, dateOptionID)
		if err != nil {
			return notFound(err, "date option %s not found in event %s", dateOptionID, eventID)
		}

		note, err = e.decideDate(ctx, repo, ev, opt, models.DecidedByOrganizer)
		if err != nil {
			return err
		}
		decided = ev
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.afterDateDecided(ctx, decided, note)
	return decided, nil
}

func (e *Engine) decideDate(ctx context.Context, repo storage.Repository, ev *models.Event, opt *models.DateOption, by models.DecisionSource) (*pending, error) {
	date := opt.StartsAt
	ev.DecidedDate = &date
	ev.DateDecidedBy = by
	if err := e.transition(ctx, repo, ev, models.StatusVenueSelection); err != nil {
		return nil, err
	}
	return e.record(ctx, repo, notify.Message{
		EventID: ev.ID,
		Type:    models.NotificationDateDecided,
		Text:    dateDecidedText(ev),
		URL:     e.eventURL(ev.ID, "venue"),
	})
}

func (e *Engine) afterDateDecided(ctx context.Context, ev *models.Event, note *pending) {
	e.metrics.Transition(string(models.StatusDateVoting), string(models.StatusVenueSelection))
	e.logger.Info("Date decided",
		"event_id", ev.ID,
		"decided_date", ev.DecidedDate,
		"decided_by", ev.DateDecidedBy,
	)

	e.publish(ctx, note)
}
