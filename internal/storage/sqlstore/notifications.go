package sqlstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mmynk/kanji/internal/models"
)

type notificationRow struct {
	ID        string `db:"id"`
	EventID   string `db:"event_id"`
	Type      string `db:"type"`
	Message   string `db:"message"`
	Status    string `db:"status"`
	CreatedAt int64  `db:"created_at"`
}

// CreateNotification appends a record. Only a PENDING status is ever updated afterwards.
func (r *repo) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt == 0 {
		n.CreatedAt = r.unix()
	}

	_, err := r.ext.ExecContext(ctx, r.q(`
		INSERT INTO notifications (id, event_id, type, message, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		n.ID, n.EventID, string(n.Type), n.Message, string(n.Status), n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// SetNotificationStatus settles a PENDING record once.
func (r *repo) SetNotificationStatus(ctx context.Context, notificationID string, status models.DeliveryStatus) error {
	res, err := r.ext.ExecContext(ctx,
		r.q(`UPDATE notifications SET status = ? WHERE id = ? AND status = ?`),
		string(status), notificationID, string(models.DeliveryPending),
	)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	return mustAffect(res, "pending notification", notificationID)
}

func (r *repo) ListNotifications(ctx context.Context, eventID string) ([]*models.Notification, error) {
	var rows []notificationRow
	err := sqlx.SelectContext(ctx, r.ext, &rows,
		r.q(`SELECT id, event_id, type, message, status, created_at
			FROM notifications WHERE event_id = ? ORDER BY created_at, id`),
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	out := make([]*models.Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, &models.Notification{
			ID:        row.ID,
			EventID:   row.EventID,
			Type:      models.NotificationType(row.Type),
			Message:   row.Message,
			Status:    models.DeliveryStatus(row.Status),
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}
