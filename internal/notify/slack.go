package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mmynk/kanji/internal/apperr"
	"github.com/mmynk/kanji/internal/models"
)

// SlackSink posts messages to a Slack incoming webhook.
type SlackSink struct {
	webhookURL string
	client     *http.Client
	logger     *slog.Logger
}

// NewSlackSink creates a sink for webhookURL. A nil client uses http.DefaultClient;
// callers bound each Send with a context deadline.
func NewSlackSink(webhookURL string, client *http.Client, logger *slog.Logger) *SlackSink {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SlackSink{webhookURL: webhookURL, client: client, logger: logger}
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type string    `json:"type"`
	Text slackText `json:"text"`
	URL  string    `json:"url"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks,omitempty"`
}

func buildSlackPayload(msg Message) slackPayload {
	p := slackPayload{
		Text: msg.Text,
		Blocks: []slackBlock{
			{Type: "section", Text: &slackText{Type: "mrkdwn", Text: msg.Text}},
		},
	}
	if msg.URL != "" {
		p.Blocks = append(p.Blocks, slackBlock{
			Type: "actions",
			Elements: []slackElement{{
				Type: "button",
				Text: slackText{Type: "plain_text", Text: "Open event"},
				URL:  msg.URL,
			}},
		})
	}
	return p
}

// Send posts msg. Transport failures and non-2xx responses are reported as
// apperr.DependencyUnavailable.
func (s *SlackSink) Send(ctx context.Context, msg Message) (models.DeliveryStatus, error) {
	body, err := json.Marshal(buildSlackPayload(msg))
	if err != nil {
		return models.DeliveryFailed, fmt.Errorf("failed to encode slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return models.DeliveryFailed, fmt.Errorf("failed to build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return models.DeliveryFailed, apperr.DependencyUnavailable(err, "slack webhook unreachable")
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.DeliveryFailed, apperr.DependencyUnavailable(
			fmt.Errorf("status %d", resp.StatusCode), "slack webhook rejected message")
	}

	s.logger.Debug("Slack notification sent", "event_id", msg.EventID, "type", msg.Type)
	return models.DeliverySent, nil
}
