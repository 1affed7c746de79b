package sqlstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mmynk/kanji/internal/models"
)

type participantRow struct {
	ID        string `db:"id"`
	EventID   string `db:"event_id"`
	Token     string `db:"token"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	Attending bool   `db:"attending"`
	CreatedAt int64  `db:"created_at"`
}

const participantColumns = `id, event_id, token, name, email, attending, created_at`

func (row *participantRow) toModel() *models.Participant {
	return &models.Participant{
		ID:        row.ID,
		EventID:   row.EventID,
		Token:     row.Token,
		Name:      row.Name,
		Email:     row.Email,
		Attending: row.Attending,
		CreatedAt: row.CreatedAt,
	}
}

func (r *repo) CreateParticipant(ctx context.Context, p *models.Participant) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = r.unix()
	}

	_, err := r.ext.ExecContext(ctx, r.q(`
		INSERT INTO participants (`+participantColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.EventID, p.Token, p.Name, p.Email, p.Attending, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

func (r *repo) GetParticipant(ctx context.Context, eventID, participantID string) (*models.Participant, error) {
	var row participantRow
	err := sqlx.GetContext(ctx, r.ext, &row,
		r.q(`SELECT `+participantColumns+` FROM participants WHERE event_id = ? AND id = ?`),
		eventID, participantID,
	)
	if err != nil {
		return nil, notFound(err, "participant", participantID)
	}
	return row.toModel(), nil
}

func (r *repo) GetParticipantByToken(ctx context.Context, eventID, token string) (*models.Participant, error) {
	var row participantRow
	err := sqlx.GetContext(ctx, r.ext, &row,
		r.q(`SELECT `+participantColumns+` FROM participants WHERE event_id = ? AND token = ?`),
		eventID, token,
	)
	if err != nil {
		return nil, notFound(err, "participant", token)
	}
	return row.toModel(), nil
}

// ListParticipants returns participants ordered by creation time, then name.
func (r *repo) ListParticipants(ctx context.Context, eventID string) ([]*models.Participant, error) {
	var rows []participantRow
	err := sqlx.SelectContext(ctx, r.ext, &rows,
		r.q(`SELECT `+participantColumns+` FROM participants WHERE event_id = ? ORDER BY created_at, name, id`),
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	out := make([]*models.Participant, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, nil
}

func (r *repo) SetAttendance(ctx context.Context, eventID, participantID string, attending bool) error {
	res, err := r.ext.ExecContext(ctx,
		r.q(`UPDATE participants SET attending = ? WHERE event_id = ? AND id = ?`),
		attending, eventID, participantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	return mustAffect(res, "participant", participantID)
}
