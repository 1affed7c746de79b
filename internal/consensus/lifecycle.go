package consensus

import (
	"context"

	"github.com/mmynk/kanji/internal/apperr"
	"github.com/mmynk/kanji/internal/models"
	"github.com/mmynk/kanji/internal/notify"
	"github.com/mmynk/kanji/internal/storage"
)

// Cancel moves any non-terminal event to CANCELLED and clears its decided
// date and venue.
func (e *Engine) Cancel(ctx context.Context, eventID string) (*models.Event, error) {
	var (
		cancelled *models.Event
		from      models.Status
		note      *pending
	)
	err := e.mutate(ctx, eventID, func(repo storage.Repository, ev *models.Event) error {
		if ev.Status.IsTerminal() {
			return apperr.InvalidState("event already %s", ev.Status)
		}
		from = ev.Status
		ev.ClearDecisions()
		if err := e.transition(ctx, repo, ev, models.StatusCancelled); err != nil {
			return err
		}
		cancelled = ev

		var err error
		note, err = e.record(ctx, repo, notify.Message{
			EventID: eventID,
			Type:    models.NotificationEventCancelled,
			Text:    cancelledText(ev),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	e.metrics.Transition(string(from), string(models.StatusCancelled))
	e.logger.Info("Event cancelled", "event_id", eventID, "from", from)

	e.publish(ctx, note)
	return cancelled, nil
}

// Complete closes a CONFIRMED event.
func (e *Engine) Complete(ctx context.Context, eventID string) (*models.Event, error) {
	var completed *models.Event
	err := e.mutate(ctx, eventID, func(repo storage.Repository, ev *models.Event) error {
		if err := requireStatus(ev, models.StatusConfirmed); err != nil {
			return err
		}
		if err := e.transition(ctx, repo, ev, models.StatusCompleted); err != nil {
			return err
		}
		completed = ev
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.metrics.Transition(string(models.StatusConfirmed), string(models.StatusCompleted))
	e.logger.Info("Event completed", "event_id", eventID)
	return completed, nil
}
