package consensus

import (
	"context"
	"strings"
	"time"

	"github.com/mmynk/kanji/internal/apperr"
	"github.com/mmynk/kanji/internal/models"
	"github.com/mmynk/kanji/internal/notify"
	"github.com/mmynk/kanji/internal/storage"
	"github.com/mmynk/kanji/internal/venue"
)

// VenueCandidates is the outcome of a recommendation request.
type VenueCandidates struct {
	// Added holds the options stored by this request; it may be empty.
	Added []*models.VenueOption
	// Unavailable is set when the provider could not be reached.
	Unavailable bool
}

// VenueInput describes a manually added venue.
type VenueInput struct {
	Name       string
	Address    string
	PriceRange string
	Rating     *float64
	URL        string
}

// RequestVenueCandidates asks the provider for venues and stores each one as
// a VenueOption. Provider failure yields an empty result, not an error.
func (e *Engine) RequestVenueCandidates(ctx context.Context, eventID string) (*VenueCandidates, error) {
	ev, err := e.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, notFound(err, "event %s not found", eventID)
	}
	if err := requireStatus(ev, models.StatusVenueSelection); err != nil {
		return nil, err
	}

	participants, err := e.store.ListParticipants(ctx, eventID)
	if err != nil {
		return nil, err
	}

	query := venue.Query{
		Title:              ev.Title,
		BudgetPerPerson:    ev.BudgetPerPerson,
		PartySize:          partySize(participants),
		LocationConstraint: ev.LocationConstraint,
	}

	out := &VenueCandidates{Added: []*models.VenueOption{}}
	candidates, err := e.recommend(ctx, query)
	if err != nil {
		e.logger.Warn("Venue recommendations unavailable",
			"event_id", eventID,
			"provider", e.provider.Name(),
			"error", err,
		)
		e.metrics.VenueRequest("unavailable")
		out.Unavailable = true
		return out, nil
	}
	if len(candidates) == 0 {
		e.metrics.VenueRequest("empty")
		return out, nil
	}

	err = e.mutate(ctx, eventID, func(repo storage.Repository, ev *models.Event) error {
		// The status may have moved while the provider was called.
		if err := requireStatus(ev, models.StatusVenueSelection); err != nil {
			return err
		}
		existing, err := repo.ListVenueOptions(ctx, eventID)
		if err != nil {
			return err
		}

		for i, c := range candidates {
			opt := &models.VenueOption{
				EventID:    eventID,
				Name:       c.Name,
				Address:    c.Address,
				PriceRange: c.PriceRange,
				Rating:     c.Rating,
				URL:        c.URL,
				Source:     e.provider.Name(),
				Position:   len(existing) + i,
				CreatedAt:  e.now().Unix(),
			}
			if err := repo.CreateVenueOption(ctx, opt); err != nil {
				return err
			}
			out.Added = append(out.Added, opt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.metrics.VenueRequest("ok")
	e.logger.Info("Venue candidates stored", "event_id", eventID, "provider", e.provider.Name(), "count", len(out.Added))
	return out, nil
}

// recommend calls the provider with a timeout. No lock is held.
func (e *Engine) recommend(ctx context.Context, q venue.Query) ([]venue.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, e.providerTimeout)
	defer cancel()

	start := time.Now()
	candidates, err := e.provider.Recommend(ctx, q)
	e.metrics.ObserveDependency("venue_provider", time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	out := make([]venue.Candidate, 0, len(candidates))
	for _, c := range candidates {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// partySize counts attending participants, or everyone if nobody is marked attending.
func partySize(participants []*models.Participant) int {
	n := 0
	for _, p := range participants {
		if p.Attending {
			n++
		}
	}
	if n == 0 {
		return len(participants)
	}
	return n
}

func (in *VenueInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.InvalidInput("venue name is required")
	}
	if in.Rating != nil && (*in.Rating < 0 || *in.Rating > 5) {
		return apperr.InvalidInput("rating must be between 0 and 5, got %g", *in.Rating)
	}
	return nil
}

// AddVenueOption stores a venue entered by hand.
func (e *Engine) AddVenueOption(ctx context.Context, eventID string, in VenueInput) (*models.VenueOption, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var opt *models.VenueOption
	err := e.mutate(ctx, eventID, func(repo storage.Repository, ev *models.Event) error {
		if err := requireStatus(ev, models.StatusVenueSelection); err != nil {
			return err
		}
		existing, err := repo.ListVenueOptions(ctx, eventID)
		if err != nil {
			return err
		}
		opt = &models.VenueOption{
			EventID:    eventID,
			Name:       strings.TrimSpace(in.Name),
			Address:    strings.TrimSpace(in.Address),
			PriceRange: strings.TrimSpace(in.PriceRange),
			Rating:     in.Rating,
			URL:        strings.TrimSpace(in.URL),
			Source:     "manual",
			Position:   len(existing),
			CreatedAt:  e.now().Unix(),
		}
		return repo.CreateVenueOption(ctx, opt)
	})
	if err != nil {
		return nil, err
	}
	return opt, nil
}

// ListVenueOptions returns the event's venue options in insertion order.
func (e *Engine) ListVenueOptions(ctx context.Context, eventID string) ([]*models.VenueOption, error) {
	if _, err := e.store.GetEvent(ctx, eventID); err != nil {
		return nil, notFound(err, "event %s not found", eventID)
	}
	return e.store.ListVenueOptions(ctx, eventID)
}

// DecideVenue marks one venue as decided, clearing any sibling, and confirms
// the event.
func (e *Engine) DecideVenue(ctx context.Context, eventID, venueOptionID string) (*models.Event, error) {
	var (
		decided *models.Event
		note    *pending
	)
	err := e.mutate(ctx, eventID, func(repo storage.Repository, ev *models.Event) error {
		if err := requireStatus(ev, models.StatusVenueSelection); err != nil {
			return err
		}
		opt, err := repo.GetVenueOption(ctx, eventID, venueOptionID)
		if err != nil {
			return notFound(err, "venue option %s not found in event %s", venueOptionID, eventID)
		}
		if err := repo.MarkVenueDecided(ctx, eventID, venueOptionID); err != nil {
			return err
		}

		ev.DecidedVenueName = opt.Name
		ev.DecidedVenueURL = opt.URL
		if err := e.transition(ctx, repo, ev, models.StatusConfirmed); err != nil {
			return err
		}
		decided = ev

		note, err = e.record(ctx, repo, notify.Message{
			EventID: eventID,
			Type:    models.NotificationVenueDecided,
			Text:    venueDecidedText(ev),
			URL:     e.eventURL(eventID, ""),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	e.metrics.Transition(string(models.StatusVenueSelection), string(models.StatusConfirmed))
	e.logger.Info("Venue decided", "event_id", eventID, "venue_option_id", venueOptionID, "venue", decided.DecidedVenueName)

	e.publish(ctx, note)
	return decided, nil
}
