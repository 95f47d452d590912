// Package sqlite archives session summaries and interaction events in a
// local SQLite database. It is the durable fallback when the session API is
// unreachable; the ttl columns let an external sweep expire old rows.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hypermage/shardcore/internal/platform/storage/sqlitemigrate"
	"github.com/hypermage/shardcore/internal/report/sqlite/migrations"
	"github.com/hypermage/shardcore/internal/session"
)

// Sink persists reporting documents in SQLite.
type Sink struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the archive database and applies embedded migrations.
func Open(path string) (*Sink, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("archive path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Sink{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Sink) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SendSummary archives a session summary. The ttl column mirrors the
// retention window stamped on the session at end time.
func (s *Sink) SendSummary(ctx context.Context, summary session.Summary) bool {
	rewards, err := json.Marshal(summary.Rewards)
	if err != nil {
		log.Printf("sqlite: marshal rewards for %s: %v", summary.SessionID, err)
		return false
	}
	var ttl int64
	if !summary.EndedAt.IsZero() {
		ttl = toMillis(summary.EndedAt.Add(session.RetentionWindow))
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO session_summaries (session_id, player_id, rewards, started_at, ended_at, ttl)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(session_id) DO UPDATE SET
    player_id = excluded.player_id,
    rewards = excluded.rewards,
    started_at = excluded.started_at,
    ended_at = excluded.ended_at,
    ttl = excluded.ttl`,
		summary.SessionID, summary.PlayerID, string(rewards),
		toMillis(summary.StartedAt), toMillis(summary.EndedAt), ttl,
	)
	if err != nil {
		log.Printf("sqlite: archive summary %s: %v", summary.SessionID, err)
		return false
	}
	return true
}

// SendEvents archives interaction events. Replayed event ids are ignored.
func (s *Sink) SendEvents(ctx context.Context, events []session.Event) bool {
	ok := true
	for _, event := range events {
		data, err := json.Marshal(event.Data)
		if err != nil {
			log.Printf("sqlite: marshal event data %s: %v", event.ID, err)
			ok = false
			continue
		}
		var ttl int64
		if !event.TTL.IsZero() {
			ttl = toMillis(event.TTL)
		}
		_, err = s.sqlDB.ExecContext(ctx, `
INSERT OR IGNORE INTO interaction_events (event_id, player_id, event_type, occurred_at, data, ttl)
VALUES (?, ?, ?, ?, ?, ?)`,
			event.ID, event.PlayerID, event.Type, toMillis(event.Timestamp), string(data), ttl,
		)
		if err != nil {
			log.Printf("sqlite: archive event %s: %v", event.ID, err)
			ok = false
		}
	}
	return ok
}

// SummaryBySession reads an archived summary back. The boolean reports
// whether the session id exists.
func (s *Sink) SummaryBySession(ctx context.Context, sessionID string) (session.Summary, bool, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT session_id, player_id, rewards, started_at, ended_at
FROM session_summaries WHERE session_id = ?`, sessionID)

	var summary session.Summary
	var rewards string
	var startedAt, endedAt int64
	err := row.Scan(&summary.SessionID, &summary.PlayerID, &rewards, &startedAt, &endedAt)
	if err == sql.ErrNoRows {
		return session.Summary{}, false, nil
	}
	if err != nil {
		return session.Summary{}, false, fmt.Errorf("scan summary: %w", err)
	}
	if err := json.Unmarshal([]byte(rewards), &summary.Rewards); err != nil {
		return session.Summary{}, false, fmt.Errorf("unmarshal rewards: %w", err)
	}
	summary.StartedAt = fromMillis(startedAt)
	summary.EndedAt = fromMillis(endedAt)
	return summary, true, nil
}

// EventCount returns the number of archived interaction events.
func (s *Sink) EventCount(ctx context.Context) (int, error) {
	var count int
	err := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM interaction_events").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}
