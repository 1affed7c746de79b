package consensus

import (
	"context"
	"errors"
	"strings"

	"github.com/mmynk/kanji/internal/apperr"
	"github.com/mmynk/kanji/internal/models"
	"github.com/mmynk/kanji/internal/storage"
)

// VoteResult reports the effect of a vote toggle.
type VoteResult struct {
	Action    models.VoteAction
	VoteCount int
}

// CastVote toggles participantToken's vote on a date option: an existing vote
// is removed, otherwise one is added. The option's count is recomputed in the
// same transaction.
func (e *Engine) CastVote(ctx context.Context, eventID, dateOptionID, participantToken string) (*VoteResult, error) {
	token := strings.TrimSpace(participantToken)
	if token == "" {
		return nil, apperr.InvalidInput("participant token is required")
	}

	result := &VoteResult{}
	err := e.mutate(ctx, eventID, func(repo storage.Repository, ev *models.Event) error {
		if err := requireStatus(ev, models.StatusDateVoting); err != nil {
			return err
		}
		if _, err := repo.GetDateOption(ctx, eventID, dateOptionID); err != nil {
			return notFound(err, "date option %s not found in event %s", dateOptionID, eventID)
		}
		if _, err := repo.GetParticipantByToken(ctx, eventID, token); err != nil {
			return notFound(err, "participant %q not found in event %s", token, eventID)
		}

		action, err := toggleVote(ctx, repo, dateOptionID, token, e.now().Unix())
		if errors.Is(err, storage.ErrConflict) {
			// The vote appeared between delete and insert; toggling again removes it.
			action, err = toggleVote(ctx, repo, dateOptionID, token, e.now().Unix())
		}
		if err != nil {
			return err
		}
		result.Action = action

		result.VoteCount, err = repo.RecountVotes(ctx, dateOptionID)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.metrics.Vote(string(result.Action))
	e.logger.Debug("Vote toggled",
		"event_id", eventID,
		"date_option_id", dateOptionID,
		"participant_token", token,
		"action", result.Action,
		"vote_count", result.VoteCount,
	)
	return result, nil
}

// toggleVote removes the participant's vote on the option or adds one.
// InsertVote's ErrConflict is returned unchanged.
func toggleVote(ctx context.Context, repo storage.Repository, dateOptionID, token string, now int64) (models.VoteAction, error) {
	removed, err := repo.DeleteVote(ctx, dateOptionID, token)
	if err != nil {
		return "", err
	}
	if removed {
		return models.VoteRemoved, nil
	}
	if err := repo.InsertVote(ctx, &models.Vote{
		DateOptionID:     dateOptionID,
		ParticipantToken: token,
		CreatedAt:        now,
	}); err != nil {
		return "", err
	}
	return models.VoteAdded, nil
}
