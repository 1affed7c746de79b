package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mmynk/kanji/internal/models"
)

type billSplitRow struct {
	EventID       string `db:"event_id"`
	ParticipantID string `db:"participant_id"`
	Amount        int64  `db:"amount"`
	IsPaid        bool   `db:"is_paid"`
	UpdatedAt     int64  `db:"updated_at"`
}

const billSplitColumns = `event_id, participant_id, amount, is_paid, updated_at`

func (row *billSplitRow) toModel() *models.BillSplit {
	return &models.BillSplit{
		EventID:       row.EventID,
		ParticipantID: row.ParticipantID,
		Amount:        row.Amount,
		IsPaid:        row.IsPaid,
		UpdatedAt:     row.UpdatedAt,
	}
}

// UpsertBillSplit inserts a split with is_paid = false or updates only the
// amount of an existing one, so recomputation keeps payment marks.
func (r *repo) UpsertBillSplit(ctx context.Context, split *models.BillSplit) error {
	split.UpdatedAt = r.unix()

	_, err := r.ext.ExecContext(ctx, r.q(`
		INSERT INTO bill_splits (`+billSplitColumns+`)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (event_id, participant_id)
		DO UPDATE SET amount = excluded.amount, updated_at = excluded.updated_at`),
		split.EventID, split.ParticipantID, split.Amount, false, split.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert bill split: %w", err)
	}
	return nil
}

func (r *repo) GetBillSplit(ctx context.Context, eventID, participantID string) (*models.BillSplit, error) {
	var row billSplitRow
	err := sqlx.GetContext(ctx, r.ext, &row,
		r.q(`SELECT `+billSplitColumns+` FROM bill_splits WHERE event_id = ? AND participant_id = ?`),
		eventID, participantID,
	)
	if err != nil {
		return nil, notFound(err, "bill split for participant", participantID)
	}
	return row.toModel(), nil
}

// ListBillSplits returns splits in participant order.
func (r *repo) ListBillSplits(ctx context.Context, eventID string) ([]*models.BillSplit, error) {
	var rows []billSplitRow
	err := sqlx.SelectContext(ctx, r.ext, &rows, r.q(`
		SELECT b.event_id, b.participant_id, b.amount, b.is_paid, b.updated_at
		FROM bill_splits b
		JOIN participants p ON p.id = b.participant_id
		WHERE b.event_id = ?
		ORDER BY p.created_at, p.name, p.id`),
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bill splits: %w", err)
	}

	out := make([]*models.BillSplit, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, nil
}

func (r *repo) SetBillSplitPaid(ctx context.Context, eventID, participantID string, paid bool) error {
	res, err := r.ext.ExecContext(ctx,
		r.q(`UPDATE bill_splits SET is_paid = ?, updated_at = ? WHERE event_id = ? AND participant_id = ?`),
		paid, r.unix(), eventID, participantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill split: %w", err)
	}
	return mustAffect(res, "bill split for participant", participantID)
}

func (r *repo) DeleteBillSplit(ctx context.Context, eventID, participantID string) error {
	_, err := r.ext.ExecContext(ctx,
		r.q(`DELETE FROM bill_splits WHERE event_id = ? AND participant_id = ?`),
		eventID, participantID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete bill split: %w", err)
	}
	return nil
}
