package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mmynk/kanji/internal/models"
	"github.com/mmynk/kanji/internal/storage"
)

type dateOptionRow struct {
	ID        string `db:"id"`
	EventID   string `db:"event_id"`
	StartsAt  int64  `db:"starts_at"`
	Position  int    `db:"position"`
	VoteCount int    `db:"vote_count"`
	CreatedAt int64  `db:"created_at"`
}

// dateOptionSelect computes vote_count from the vote set rather than
// trusting the persisted column.
const dateOptionSelect = `
	SELECT d.id, d.event_id, d.starts_at, d.position, d.created_at,
		(SELECT COUNT(*) FROM votes v WHERE v.date_option_id = d.id) AS vote_count
	FROM date_options d`

func (row *dateOptionRow) toModel() *models.DateOption {
	return &models.DateOption{
		ID:        row.ID,
		EventID:   row.EventID,
		StartsAt:  time.Unix(row.StartsAt, 0).UTC(),
		Position:  row.Position,
		VoteCount: row.VoteCount,
		CreatedAt: row.CreatedAt,
	}
}

func (r *repo) CreateDateOption(ctx context.Context, opt *models.DateOption) error {
	if opt.ID == "" {
		opt.ID = uuid.New().String()
	}
	if opt.CreatedAt == 0 {
		opt.CreatedAt = r.unix()
	}

	_, err := r.ext.ExecContext(ctx, r.q(`
		INSERT INTO date_options (id, event_id, starts_at, position, vote_count, created_at)
		VALUES (?, ?, ?, ?, 0, ?)`),
		opt.ID, opt.EventID, opt.StartsAt.Unix(), opt.Position, opt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert date option: %w", err)
	}
	opt.VoteCount = 0
	return nil
}

func (r *repo) GetDateOption(ctx context.Context, eventID, dateOptionID string) (*models.DateOption, error) {
	var row dateOptionRow
	err := sqlx.GetContext(ctx, r.ext, &row,
		r.q(dateOptionSelect+` WHERE d.event_id = ? AND d.id = ?`),
		eventID, dateOptionID,
	)
	if err != nil {
		return nil, notFound(err, "date option", dateOptionID)
	}
	return row.toModel(), nil
}

func (r *repo) ListDateOptions(ctx context.Context, eventID string) ([]*models.DateOption, error) {
	var rows []dateOptionRow
	err := sqlx.SelectContext(ctx, r.ext, &rows,
		r.q(dateOptionSelect+` WHERE d.event_id = ? ORDER BY d.position`),
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list date options: %w", err)
	}

	out := make([]*models.DateOption, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, nil
}

// InsertVote adds a vote. A duplicate (date_option_id, participant_token)
// is reported as storage.ErrConflict.
func (r *repo) InsertVote(ctx context.Context, vote *models.Vote) error {
	if vote.CreatedAt == 0 {
		vote.CreatedAt = r.unix()
	}

	res, err := r.ext.ExecContext(ctx, r.q(`
		INSERT INTO votes (date_option_id, participant_token, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (date_option_id, participant_token) DO NOTHING`),
		vote.DateOptionID, vote.ParticipantToken, vote.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("vote by %s on %s: %w", vote.ParticipantToken, vote.DateOptionID, storage.ErrConflict)
	}
	return nil
}

func (r *repo) DeleteVote(ctx context.Context, dateOptionID, token string) (bool, error) {
	res, err := r.ext.ExecContext(ctx,
		r.q(`DELETE FROM votes WHERE date_option_id = ? AND participant_token = ?`),
		dateOptionID, token,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete vote: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// RecountVotes writes the current vote total into date_options.vote_count
// and returns it. Call it in the same transaction as the vote mutation.
func (r *repo) RecountVotes(ctx context.Context, dateOptionID string) (int, error) {
	res, err := r.ext.ExecContext(ctx, r.q(`
		UPDATE date_options
		SET vote_count = (SELECT COUNT(*) FROM votes WHERE date_option_id = ?)
		WHERE id = ?`),
		dateOptionID, dateOptionID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to recount votes: %w", err)
	}
	if err := mustAffect(res, "date option", dateOptionID); err != nil {
		return 0, err
	}

	var count int
	err = sqlx.GetContext(ctx, r.ext, &count,
		r.q(`SELECT vote_count FROM date_options WHERE id = ?`), dateOptionID)
	if err != nil {
		return 0, fmt.Errorf("failed to read vote count: %w", err)
	}
	return count, nil
}
