package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mmynk/kanji/internal/models"
)

type venueRow struct {
	ID         string          `db:"id"`
	EventID    string          `db:"event_id"`
	Name       string          `db:"name"`
	Address    string          `db:"address"`
	PriceRange string          `db:"price_range"`
	Rating     sql.NullFloat64 `db:"rating"`
	URL        string          `db:"url"`
	Source     string          `db:"source"`
	IsDecided  bool            `db:"is_decided"`
	Position   int             `db:"position"`
	CreatedAt  int64           `db:"created_at"`
}

const venueColumns = `id, event_id, name, address, price_range, rating, url, source, is_decided, position, created_at`

func (row *venueRow) toModel() *models.VenueOption {
	v := &models.VenueOption{
		ID:         row.ID,
		EventID:    row.EventID,
		Name:       row.Name,
		Address:    row.Address,
		PriceRange: row.PriceRange,
		URL:        row.URL,
		Source:     row.Source,
		IsDecided:  row.IsDecided,
		Position:   row.Position,
		CreatedAt:  row.CreatedAt,
	}
	if row.Rating.Valid {
		rating := row.Rating.Float64
		v.Rating = &rating
	}
	return v
}

func (r *repo) CreateVenueOption(ctx context.Context, opt *models.VenueOption) error {
	if opt.ID == "" {
		opt.ID = uuid.New().String()
	}
	if opt.CreatedAt == 0 {
		opt.CreatedAt = r.unix()
	}

	var rating sql.NullFloat64
	if opt.Rating != nil {
		rating = sql.NullFloat64{Float64: *opt.Rating, Valid: true}
	}

	_, err := r.ext.ExecContext(ctx, r.q(`
		INSERT INTO venue_options (`+venueColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		opt.ID, opt.EventID, opt.Name, opt.Address, opt.PriceRange, rating,
		opt.URL, opt.Source, opt.IsDecided, opt.Position, opt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert venue option: %w", err)
	}
	return nil
}

func (r *repo) GetVenueOption(ctx context.Context, eventID, venueOptionID string) (*models.VenueOption, error) {
	var row venueRow
	err := sqlx.GetContext(ctx, r.ext, &row,
		r.q(`SELECT `+venueColumns+` FROM venue_options WHERE event_id = ? AND id = ?`),
		eventID, venueOptionID,
	)
	if err != nil {
		return nil, notFound(err, "venue option", venueOptionID)
	}
	return row.toModel(), nil
}

// ListVenueOptions returns venue options by position.
func (r *repo) ListVenueOptions(ctx context.Context, eventID string) ([]*models.VenueOption, error) {
	var rows []venueRow
	err := sqlx.SelectContext(ctx, r.ext, &rows,
		r.q(`SELECT `+venueColumns+` FROM venue_options WHERE event_id = ? ORDER BY position, created_at`),
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list venue options: %w", err)
	}

	out := make([]*models.VenueOption, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, nil
}

// MarkVenueDecided clears the decided flag on every option of the event,
// then sets it on venueOptionID.
func (r *repo) MarkVenueDecided(ctx context.Context, eventID, venueOptionID string) error {
	_, err := r.ext.ExecContext(ctx,
		r.q(`UPDATE venue_options SET is_decided = ? WHERE event_id = ? AND is_decided = ?`),
		false, eventID, true,
	)
	if err != nil {
		return fmt.Errorf("failed to clear decided venue: %w", err)
	}

	res, err := r.ext.ExecContext(ctx,
		r.q(`UPDATE venue_options SET is_decided = ? WHERE event_id = ? AND id = ?`),
		true, eventID, venueOptionID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark decided venue: %w", err)
	}
	return mustAffect(res, "venue option", venueOptionID)
}
