package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mmynk/kanji/internal/apperr"
	"github.com/mmynk/kanji/internal/models"
)

// TypeDeliver is the asynq task type for queued notifications.
const TypeDeliver = "notification:deliver"

// QueueName is the asynq queue notification tasks are placed on.
const QueueName = "notifications"

// Enqueuer is the part of *asynq.Client used by QueueSink.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueSink hands messages to an asynq queue; a worker running
// DeliveryHandler performs the actual delivery with retries.
type QueueSink struct {
	client   Enqueuer
	queue    string
	maxRetry int
	logger   *slog.Logger
}

func NewQueueSink(client Enqueuer, logger *slog.Logger) *QueueSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueueSink{client: client, queue: QueueName, maxRetry: 5, logger: logger}
}

// NewDeliverTask encodes msg as an asynq task.
func NewDeliverTask(msg Message) (*asynq.Task, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification: %w", err)
	}
	return asynq.NewTask(TypeDeliver, payload), nil
}

// Send enqueues msg and reports DeliveryQueued.
func (s *QueueSink) Send(ctx context.Context, msg Message) (models.DeliveryStatus, error) {
	task, err := NewDeliverTask(msg)
	if err != nil {
		return models.DeliveryFailed, err
	}

	info, err := s.client.EnqueueContext(ctx, task,
		asynq.Queue(s.queue),
		asynq.MaxRetry(s.maxRetry),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		return models.DeliveryFailed, apperr.DependencyUnavailable(err, "notification queue unavailable")
	}

	s.logger.Debug("Notification queued", "event_id", msg.EventID, "type", msg.Type, "task_id", info.ID)
	return models.DeliveryQueued, nil
}

// DeliveryHandler returns the worker-side handler that forwards queued
// messages to sink. Delivery errors are returned so asynq retries them.
func DeliveryHandler(sink Sink, logger *slog.Logger) asynq.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, t *asynq.Task) error {
		var msg Message
		if err := json.Unmarshal(t.Payload(), &msg); err != nil {
			// Malformed payloads will never succeed.
			return fmt.Errorf("failed to decode notification: %v: %w", err, asynq.SkipRetry)
		}

		status, err := sink.Send(ctx, msg)
		if err != nil {
			logger.Warn("Queued notification delivery failed", "event_id", msg.EventID, "type", msg.Type, "error", err)
			return err
		}

		logger.Info("Queued notification delivered", "event_id", msg.EventID, "type", msg.Type, "status", status)
		return nil
	}
}

// NewServeMux registers DeliveryHandler for TypeDeliver.
func NewServeMux(sink Sink, logger *slog.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeDeliver, DeliveryHandler(sink, logger))
	return mux
}
