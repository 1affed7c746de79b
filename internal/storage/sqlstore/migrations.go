package sqlstore

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// schemaTemplate sets up the database schema. It runs on startup to ensure
// tables exist. {{BOOL}} and {{REAL}} are replaced per dialect.
// Every child table cascades from events.
const schemaTemplate = `
CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    budget_per_person BIGINT,
    location_constraint TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    decided_date BIGINT,
    date_decided_by TEXT NOT NULL DEFAULT '',
    decided_venue_name TEXT NOT NULL DEFAULT '',
    decided_venue_url TEXT NOT NULL DEFAULT '',
    total_bill BIGINT,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS participants (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL,
    token TEXT NOT NULL,
    name TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    attending {{BOOL}} NOT NULL DEFAULT {{TRUE}},
    created_at BIGINT NOT NULL,
    UNIQUE (event_id, token),
    FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS date_options (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL,
    starts_at BIGINT NOT NULL,
    position INTEGER NOT NULL,
    vote_count INTEGER NOT NULL DEFAULT 0,
    created_at BIGINT NOT NULL,
    FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS votes (
    date_option_id TEXT NOT NULL,
    participant_token TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    PRIMARY KEY (date_option_id, participant_token),
    FOREIGN KEY (date_option_id) REFERENCES date_options(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS venue_options (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL,
    name TEXT NOT NULL,
    address TEXT NOT NULL DEFAULT '',
    price_range TEXT NOT NULL DEFAULT '',
    rating {{REAL}},
    url TEXT NOT NULL DEFAULT '',
    source TEXT NOT NULL DEFAULT '',
    is_decided {{BOOL}} NOT NULL DEFAULT {{FALSE}},
    position INTEGER NOT NULL DEFAULT 0,
    created_at BIGINT NOT NULL,
    FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS bill_splits (
    event_id TEXT NOT NULL,
    participant_id TEXT NOT NULL,
    amount BIGINT NOT NULL,
    is_paid {{BOOL}} NOT NULL DEFAULT {{FALSE}},
    updated_at BIGINT NOT NULL,
    PRIMARY KEY (event_id, participant_id),
    FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE,
    FOREIGN KEY (participant_id) REFERENCES participants(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS notifications (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL,
    type TEXT NOT NULL,
    message TEXT NOT NULL,
    status TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_participants_event_id ON participants(event_id);
CREATE INDEX IF NOT EXISTS idx_date_options_event_id ON date_options(event_id);
CREATE INDEX IF NOT EXISTS idx_venue_options_event_id ON venue_options(event_id);
CREATE INDEX IF NOT EXISTS idx_notifications_event_id ON notifications(event_id);
`

func schemaFor(dialect Dialect) string {
	var r *strings.Replacer
	switch dialect {
	case Postgres:
		r = strings.NewReplacer("{{BOOL}}", "BOOLEAN", "{{TRUE}}", "TRUE", "{{FALSE}}", "FALSE", "{{REAL}}", "DOUBLE PRECISION")
	default:
		r = strings.NewReplacer("{{BOOL}}", "INTEGER", "{{TRUE}}", "1", "{{FALSE}}", "0", "{{REAL}}", "REAL")
	}
	return r.Replace(schemaTemplate)
}

// runMigrations executes the schema setup one statement at a time.
func runMigrations(db *sqlx.DB, dialect Dialect) error {
	for _, stmt := range strings.Split(schemaFor(dialect), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
