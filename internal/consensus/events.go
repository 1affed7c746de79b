package consensus

import (
	"context"
	"strings"
	"time"

	"github.com/mmynk/kanji/internal/apperr"
	"github.com/mmynk/kanji/internal/models"
	"github.com/mmynk/kanji/internal/notify"
	"github.com/mmynk/kanji/internal/storage"
)

// ParticipantInput describes one participant at event creation.
type ParticipantInput struct {
	Token string
	Name  string
	Email string
	// Attending defaults to true when nil.
	Attending *bool
}

// CreateEventInput holds everything needed to open an event for voting.
type CreateEventInput struct {
	Title              string
	Description        string
	BudgetPerPerson    *int64
	LocationConstraint string
	DateOptions        []time.Time
	Participants       []ParticipantInput
}

// EventView is an event with everything it owns.
type EventView struct {
	Event        *models.Event
	Participants []*models.Participant
	DateOptions  []*models.DateOption
	VenueOptions []*models.VenueOption
}

func (in *CreateEventInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return apperr.InvalidInput("title is required")
	}
	if in.BudgetPerPerson != nil && *in.BudgetPerPerson < 0 {
		return apperr.InvalidInput("budget per person must not be negative, got %d", *in.BudgetPerPerson)
	}
	if len(in.DateOptions) == 0 {
		return apperr.InvalidInput("event needs at least one date option")
	}
	for i, d := range in.DateOptions {
		if d.IsZero() {
			return apperr.InvalidInput("date option %d has no date", i)
		}
	}
	if len(in.Participants) == 0 {
		return apperr.InvalidInput("event needs at least one participant")
	}
	seen := make(map[string]bool, len(in.Participants))
	for i, p := range in.Participants {
		token := strings.TrimSpace(p.Token)
		if token == "" {
			return apperr.InvalidInput("participant %d has no token", i)
		}
		if seen[token] {
			return apperr.InvalidInput("participant token %q is not unique within the event", token)
		}
		seen[token] = true
	}
	return nil
}

// CreateEvent stores a new event with its participants and date options and
// opens it for date voting.
func (e *Engine) CreateEvent(ctx context.Context, in CreateEventInput) (*EventView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := e.now().Unix()
	view := &EventView{}
	var note *pending

	err := e.store.InTx(ctx, func(repo storage.Repository) error {
		ev := &models.Event{
			Title:              strings.TrimSpace(in.Title),
			Description:        in.Description,
			BudgetPerPerson:    in.BudgetPerPerson,
			LocationConstraint: strings.TrimSpace(in.LocationConstraint),
			Status:             models.StatusPlanning,
			CreatedAt:          now,
		}
		if err := repo.CreateEvent(ctx, ev); err != nil {
			return err
		}

		for _, p := range in.Participants {
			attending := true
			if p.Attending != nil {
				attending = *p.Attending
			}
			name := strings.TrimSpace(p.Name)
			if name == "" {
				name = strings.TrimSpace(p.Token)
			}
			participant := &models.Participant{
				EventID:   ev.ID,
				Token:     strings.TrimSpace(p.Token),
				Name:      name,
				Email:     strings.TrimSpace(p.Email),
				Attending: attending,
				CreatedAt: now,
			}
			if err := repo.CreateParticipant(ctx, participant); err != nil {
				return err
			}
			view.Participants = append(view.Participants, participant)
		}

		for i, d := range in.DateOptions {
			opt := &models.DateOption{
				EventID:   ev.ID,
				StartsAt:  d.UTC().Truncate(time.Second),
				Position:  i,
				CreatedAt: now,
			}
			if err := repo.CreateDateOption(ctx, opt); err != nil {
				return err
			}
			view.DateOptions = append(view.DateOptions, opt)
		}

		view.Event = ev
		if err := e.transition(ctx, repo, ev, models.StatusDateVoting); err != nil {
			return err
		}

		var err error
		note, err = e.record(ctx, repo, notify.Message{
			EventID: ev.ID,
			Type:    models.NotificationEventCreated,
			Text:    eventCreatedText(ev, view.DateOptions),
			URL:     e.eventURL(ev.ID, "vote"),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	e.metrics.Transition(string(models.StatusPlanning), string(models.StatusDateVoting))
	e.logger.Info("Event created",
		"event_id", view.Event.ID,
		"date_options", len(view.DateOptions),
		"participants", len(view.Participants),
	)

	e.publish(ctx, note)
	return view, nil
}

// GetEvent returns the event with its participants, date options (vote
// counts computed from the vote set) and venue options.
func (e *Engine) GetEvent(ctx context.Context, eventID string) (*EventView, error) {
	view := &EventView{}
	err := e.store.InTx(ctx, func(repo storage.Repository) error {
		ev, err := repo.GetEvent(ctx, eventID)
		if err != nil {
			return notFound(err, "event %s not found", eventID)
		}
		view.Event = ev

		if view.Participants, err = repo.ListParticipants(ctx, eventID); err != nil {
			return err
		}
		if view.DateOptions, err = repo.ListDateOptions(ctx, eventID); err != nil {
			return err
		}
		if view.VenueOptions, err = repo.ListVenueOptions(ctx, eventID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ListEvents returns all events, newest first.
func (e *Engine) ListEvents(ctx context.Context) ([]*models.Event, error) {
	return e.store.ListEvents(ctx)
}

// DeleteEvent removes the event and everything it owns.
func (e *Engine) DeleteEvent(ctx context.Context, eventID string) error {
	unlock, err := e.locker.Lock(ctx, "event:"+eventID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := e.store.DeleteEvent(ctx, eventID); err != nil {
		return notFound(err, "event %s not found", eventID)
	}
	e.logger.Info("Event deleted", "event_id", eventID)
	return nil
}

// SetAttendance flips a participant's attendance flag. It is the only change
// allowed to a participant after creation and only while the event is open.
func (e *Engine) SetAttendance(ctx context.Context, eventID, participantID string, attending bool) (*models.Participant, error) {
	var out *models.Participant
	err := e.mutate(ctx, eventID, func(repo storage.Repository, ev *models.Event) error {
		if ev.Status.IsTerminal() {
			return apperr.InvalidState("event is %s; attendance can no longer change", ev.Status)
		}
		p, err := repo.GetParticipant(ctx, eventID, participantID)
		if err != nil {
			return notFound(err, "participant %s not found in event %s", participantID, eventID)
		}
		if err := repo.SetAttendance(ctx, eventID, participantID, attending); err != nil {
			return err
		}
		p.Attending = attending
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListNotifications returns the event's notification log, oldest first.
func (e *Engine) ListNotifications(ctx context.Context, eventID string) ([]*models.Notification, error) {
	if _, err := e.store.GetEvent(ctx, eventID); err != nil {
		return nil, notFound(err, "event %s not found", eventID)
	}
	return e.store.ListNotifications(ctx, eventID)
}
