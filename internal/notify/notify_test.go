package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/kanji/internal/apperr"
	"github.com/mmynk/kanji/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSlackSink(t *testing.T) {
	t.Parallel()

	msg := Message{
		EventID: "e1",
		Type:    models.NotificationDateDecided,
		Text:    `Date decided for "Team dinner"`,
		URL:     "http://localhost:3000/events/e1",
	}

	t.Run("posts text and button", func(t *testing.T) {
		var got slackPayload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		sink := NewSlackSink(srv.URL, srv.Client(), discardLogger())
		status, err := sink.Send(context.Background(), msg)

		require.NoError(t, err)
		assert.Equal(t, models.DeliverySent, status)
		assert.Equal(t, msg.Text, got.Text)
		require.Len(t, got.Blocks, 2)
		assert.Equal(t, "actions", got.Blocks[1].Type)
		assert.Equal(t, msg.URL, got.Blocks[1].Elements[0].URL)
	})

	t.Run("non-2xx is dependency unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		sink := NewSlackSink(srv.URL, srv.Client(), discardLogger())
		status, err := sink.Send(context.Background(), msg)

		assert.Equal(t, models.DeliveryFailed, status)
		assert.ErrorIs(t, err, apperr.ErrDependencyUnavailable)
	})

	t.Run("unreachable webhook is dependency unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		sink := NewSlackSink(url, nil, discardLogger())
		status, err := sink.Send(context.Background(), msg)

		assert.Equal(t, models.DeliveryFailed, status)
		assert.ErrorIs(t, err, apperr.ErrDependencyUnavailable)
	})
}

func TestBuildSlackPayloadWithoutURL(t *testing.T) {
	p := buildSlackPayload(Message{Text: "Event cancelled"})
	assert.Equal(t, "Event cancelled", p.Text)
	assert.Len(t, p.Blocks, 1)
}

func TestLogSink(t *testing.T) {
	status, err := NewLogSink(discardLogger()).Send(context.Background(), Message{EventID: "e1", Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, models.DeliverySkipped, status)
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type()}, nil
}

type recordingSink struct {
	got []Message
	err error
}

func (r *recordingSink) Send(_ context.Context, msg Message) (models.DeliveryStatus, error) {
	if r.err != nil {
		return models.DeliveryFailed, r.err
	}
	r.got = append(r.got, msg)
	return models.DeliverySent, nil
}

func TestQueueSinkRoundTrip(t *testing.T) {
	enq := &fakeEnqueuer{}
	sink := NewQueueSink(enq, discardLogger())

	msg := Message{EventID: "e1", Type: models.NotificationVenueDecided, Text: "Venue decided: Uotami"}
	status, err := sink.Send(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryQueued, status)
	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TypeDeliver, enq.tasks[0].Type())

	// Worker side
	downstream := &recordingSink{}
	handler := DeliveryHandler(downstream, discardLogger())
	require.NoError(t, handler(context.Background(), enq.tasks[0]))
	require.Len(t, downstream.got, 1)
	assert.Equal(t, msg, downstream.got[0])
}

func TestQueueSinkEnqueueFailure(t *testing.T) {
	sink := NewQueueSink(&fakeEnqueuer{err: errors.New("redis down")}, discardLogger())

	status, err := sink.Send(context.Background(), Message{EventID: "e1"})
	assert.Equal(t, models.DeliveryFailed, status)
	assert.ErrorIs(t, err, apperr.ErrDependencyUnavailable)
}

func TestDeliveryHandlerErrors(t *testing.T) {
	t.Run("malformed payload skips retry", func(t *testing.T) {
		handler := DeliveryHandler(&recordingSink{}, discardLogger())
		err := handler(context.Background(), asynq.NewTask(TypeDeliver, []byte("not json")))
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})

	t.Run("sink failure is returned for retry", func(t *testing.T) {
		boom := errors.New("webhook down")
		handler := DeliveryHandler(&recordingSink{err: boom}, discardLogger())
		task, err := NewDeliverTask(Message{EventID: "e1"})
		require.NoError(t, err)

		err = handler(context.Background(), task)
		assert.ErrorIs(t, err, boom)
	})
}
