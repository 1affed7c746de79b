package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mmynk/kanji/internal/models"
)

type eventRow struct {
	ID                 string        `db:"id"`
	Title              string        `db:"title"`
	Description        string        `db:"description"`
	BudgetPerPerson    sql.NullInt64 `db:"budget_per_person"`
	LocationConstraint string        `db:"location_constraint"`
	Status             string        `db:"status"`
	DecidedDate        sql.NullInt64 `db:"decided_date"`
	DateDecidedBy      string        `db:"date_decided_by"`
	DecidedVenueName   string        `db:"decided_venue_name"`
	DecidedVenueURL    string        `db:"decided_venue_url"`
	TotalBill          sql.NullInt64 `db:"total_bill"`
	CreatedAt          int64         `db:"created_at"`
	UpdatedAt          int64         `db:"updated_at"`
}

const eventColumns = `id, title, description, budget_per_person, location_constraint, status,
	decided_date, date_decided_by, decided_venue_name, decided_venue_url, total_bill,
	created_at, updated_at`

func (row *eventRow) toModel() *models.Event {
	return &models.Event{
		ID:                 row.ID,
		Title:              row.Title,
		Description:        row.Description,
		BudgetPerPerson:    ptrInt64(row.BudgetPerPerson),
		LocationConstraint: row.LocationConstraint,
		Status:             models.Status(row.Status),
		DecidedDate:        ptrTime(row.DecidedDate),
		DateDecidedBy:      models.DecisionSource(row.DateDecidedBy),
		DecidedVenueName:   row.DecidedVenueName,
		DecidedVenueURL:    row.DecidedVenueURL,
		TotalBill:          ptrInt64(row.TotalBill),
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}

// CreateEvent persists a new event to the database.
func (r *repo) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt == 0 {
		event.CreatedAt = r.unix()
	}
	event.UpdatedAt = event.CreatedAt

	_, err := r.ext.ExecContext(ctx, r.q(`
		INSERT INTO events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		event.ID, event.Title, event.Description, nullInt64(event.BudgetPerPerson),
		event.LocationConstraint, string(event.Status), nullTime(event.DecidedDate),
		string(event.DateDecidedBy), event.DecidedVenueName, event.DecidedVenueURL,
		nullInt64(event.TotalBill), event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// GetEvent retrieves an event by ID.
func (r *repo) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	var row eventRow
	err := sqlx.GetContext(ctx, r.ext, &row, r.q(`SELECT `+eventColumns+` FROM events WHERE id = ?`), eventID)
	if err != nil {
		return nil, notFound(err, "event", eventID)
	}
	return row.toModel(), nil
}

// LockEvent retrieves an event with a row lock on PostgreSQL. SQLite
// transactions already run one at a time over the single connection.
func (r *repo) LockEvent(ctx context.Context, eventID string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	if r.dialect == Postgres {
		query += ` FOR UPDATE`
	}

	var row eventRow
	if err := sqlx.GetContext(ctx, r.ext, &row, r.q(query), eventID); err != nil {
		return nil, notFound(err, "event", eventID)
	}
	return row.toModel(), nil
}

// ListEvents returns all events, newest first.
func (r *repo) ListEvents(ctx context.Context) ([]*models.Event, error) {
	var rows []eventRow
	err := sqlx.SelectContext(ctx, r.ext, &rows, `SELECT `+eventColumns+` FROM events ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]*models.Event, 0, len(rows))
	for i := range rows {
		events = append(events, rows[i].toModel())
	}
	return events, nil
}

// UpdateEvent overwrites the mutable fields of an event.
func (r *repo) UpdateEvent(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = r.unix()

	res, err := r.ext.ExecContext(ctx, r.q(`
		UPDATE events SET
			title = ?, description = ?, budget_per_person = ?, location_constraint = ?,
			status = ?, decided_date = ?, date_decided_by = ?,
			decided_venue_name = ?, decided_venue_url = ?, total_bill = ?, updated_at = ?
		WHERE id = ?`),
		event.Title, event.Description, nullInt64(event.BudgetPerPerson), event.LocationConstraint,
		string(event.Status), nullTime(event.DecidedDate), string(event.DateDecidedBy),
		event.DecidedVenueName, event.DecidedVenueURL, nullInt64(event.TotalBill), event.UpdatedAt,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return mustAffect(res, "event", event.ID)
}

// DeleteEvent removes an event. Foreign keys cascade to all owned rows.
func (r *repo) DeleteEvent(ctx context.Context, eventID string) error {
	res, err := r.ext.ExecContext(ctx, r.q(`DELETE FROM events WHERE id = ?`), eventID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return mustAffect(res, "event", eventID)
}
