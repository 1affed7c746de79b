package notify

import (
	"context"
	"log/slog"

	"github.com/mmynk/kanji/internal/models"
)

// LogSink is used when no webhook is configured. It only logs the message.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Send(_ context.Context, msg Message) (models.DeliveryStatus, error) {
	s.logger.Info("Notification not delivered, no webhook configured",
		"event_id", msg.EventID,
		"type", msg.Type,
		"text", msg.Text,
	)
	return models.DeliverySkipped, nil
}
