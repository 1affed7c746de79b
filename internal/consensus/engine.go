// Package consensus implements the event lifecycle: the status state machine,
// date voting and finalization, the venue phase, cancellation and completion.
//
// Every mutation of an event runs under a per-event lock and inside one store
// transaction that re-reads the event row. A transition writes its
// Notification record in that transaction. Calls to the notification sink and
// the venue provider happen outside both and are bounded by a timeout.
package consensus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/kanji/internal/apperr"
	"github.com/mmynk/kanji/internal/lock"
	"github.com/mmynk/kanji/internal/metrics"
	"github.com/mmynk/kanji/internal/models"
	"github.com/mmynk/kanji/internal/notify"
	"github.com/mmynk/kanji/internal/storage"
	"github.com/mmynk/kanji/internal/venue"
)

const (
	defaultSinkTimeout     = 5 * time.Second
	defaultProviderTimeout = 10 * time.Second
)

// Engine owns the event state machine.
type Engine struct {
	store           storage.Store
	locker          lock.Locker
	sink            notify.Sink
	provider        venue.Provider
	logger          *slog.Logger
	metrics         *metrics.Metrics
	now             func() time.Time
	sinkTimeout     time.Duration
	providerTimeout time.Duration
	appURL          string
}

// Option configures an Engine.
type Option func(*Engine)

func WithLocker(l lock.Locker) Option { return func(e *Engine) { e.locker = l } }
func WithSink(s notify.Sink) Option { return func(e *Engine) { e.sink = s } }
func WithProvider(p venue.Provider) Option { return func(e *Engine) { e.provider = p } }
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }
func WithMetrics(m *metrics.Metrics) Option { return func(e *Engine) { e.metrics = m } }
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithSinkTimeout bounds each notification delivery.
func WithSinkTimeout(d time.Duration) Option { return func(e *Engine) { e.sinkTimeout = d } }

// WithProviderTimeout bounds each venue recommendation request.
func WithProviderTimeout(d time.Duration) Option { return func(e *Engine) { e.providerTimeout = d } }

// WithAppURL sets the base URL used for links in notifications.
func WithAppURL(u string) Option { return func(e *Engine) { e.appURL = u } }

// New creates an Engine. Without options it uses an in-process locker,
// a log-only sink and the static venue provider.
func New(store storage.Store, opts ...Option) *Engine {
	e := &Engine{
		store:           store,
		now:             time.Now,
		sinkTimeout:     defaultSinkTimeout,
		providerTimeout: defaultProviderTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.locker == nil {
		e.locker = lock.NewLocal()
	}
	if e.sink == nil {
		e.sink = notify.NewLogSink(e.logger)
	}
	if e.provider == nil {
		e.provider = venue.NewStatic(0)
	}
	return e
}

// mutate runs fn with the event row re-read under the per-event lock,
// inside a single transaction. fn must only use repo.
func (e *Engine) mutate(ctx context.Context, eventID string, fn func(repo storage.Repository, ev *models.Event) error) error {
	unlock, err := e.locker.Lock(ctx, "event:"+eventID)
	if err != nil {
		return fmt.Errorf("failed to lock event %s: %w", eventID, err)
	}
	defer unlock()

	return e.store.InTx(ctx, func(repo storage.Repository) error {
		ev, err := repo.LockEvent(ctx, eventID)
		if err != nil {
			return notFound(err, "event %s not found", eventID)
		}
		return fn(repo, ev)
	})
}

// transition moves ev to the next status and persists it.
func (e *Engine) transition(ctx context.Context, repo storage.Repository, ev *models.Event, to models.Status) error {
	if !ev.Status.CanTransitionTo(to) {
		return apperr.InvalidState("event cannot move from %s to %s", ev.Status, to)
	}
	ev.Status = to
	if err := ev.CheckInvariants(); err != nil {
		return fmt.Errorf("refusing to persist event: %w", err)
	}
	return repo.UpdateEvent(ctx, ev)
}

// requireStatus rejects the operation unless ev is in want.
func requireStatus(ev *models.Event, want models.Status) error {
	if ev.Status != want {
		return apperr.InvalidState("event not in %s state (status: %s)", want, ev.Status)
	}
	return nil
}

// notFound maps storage.ErrNotFound to apperr.NotFound; other errors pass through.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(format, args...)
	}
	return err
}

// pending is a notification recorded with its transition and not yet sent.
type pending struct {
	rec *models.Notification
	msg notify.Message
}

// record writes msg as a PENDING Notification through repo, so the record
// commits or rolls back with the transition it announces.
func (e *Engine) record(ctx context.Context, repo storage.Repository, msg notify.Message) (*pending, error) {
	rec := &models.Notification{
		EventID:   msg.EventID,
		Type:      msg.Type,
		Message:   msg.Text,
		Status:    models.DeliveryPending,
		CreatedAt: e.now().Unix(),
	}
	if err := repo.CreateNotification(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to record %s notification: %w", msg.Type, err)
	}
	return &pending{rec: rec, msg: msg}, nil
}

// publish delivers a recorded notification and settles its status. It never
// fails the caller: the state change it describes is already committed.
func (e *Engine) publish(ctx context.Context, p *pending) {
	ctx = context.WithoutCancel(ctx)
	msg := p.msg

	sendCtx, cancel := context.WithTimeout(ctx, e.sinkTimeout)
	start := time.Now()
	status, err := e.sink.Send(sendCtx, msg)
	cancel()
	e.metrics.ObserveDependency("notification_sink", time.Since(start).Seconds())

	if err != nil {
		e.logger.Warn("Notification delivery failed",
			"event_id", msg.EventID,
			"type", msg.Type,
			"error", err,
		)
		status = models.DeliveryFailed
	}

	if err := e.store.SetNotificationStatus(ctx, p.rec.ID, status); err != nil {
		// The record stays PENDING.
		e.logger.Error("Failed to settle notification",
			"event_id", msg.EventID,
			"notification_id", p.rec.ID,
			"status", status,
			"error", err,
		)
	} else {
		p.rec.Status = status
	}
	e.metrics.Notification(string(msg.Type), string(status))
}

func (e *Engine) eventURL(eventID, page string) string {
	if e.appURL == "" {
		return ""
	}
	u := e.appURL + "/events/" + eventID
	if page != "" {
		u += "/" + page
	}
	return u
}
