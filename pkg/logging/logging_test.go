package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestJSONOutsideLocal(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "prod", slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("Event created", "event_id", "e1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["event_id"] != "e1" {
		t.Errorf("event_id = %v, want e1", entry["event_id"])
	}
}

func TestTintLocally(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "local", slog.LevelDebug)

	logger.Debug("Vote toggled", "action", "added")

	out := buf.String()
	if !strings.Contains(out, "Vote toggled") || !strings.Contains(out, "added") {
		t.Errorf("unexpected tint output: %q", out)
	}
	if json.Valid([]byte(strings.TrimSpace(out))) {
		t.Errorf("local output should not be JSON: %q", out)
	}
}
