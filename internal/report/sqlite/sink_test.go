package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hypermage/shardcore/internal/session"
)

func openTestSink(t *testing.T) *Sink {
	t.Helper()
	sink, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}
	t.Cleanup(func() { sink.Close() })
	return sink
}

func TestSummaryRoundTrip(t *testing.T) {
	sink := openTestSink(t)
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)
	summary := session.Summary{
		SessionID: "sess-1",
		PlayerID:  "player-1",
		Rewards:   []string{"sword_of_dawn", "shield_basic"},
		StartedAt: start,
		EndedAt:   end,
	}

	if ok := sink.SendSummary(ctx, summary); !ok {
		t.Fatal("expected archive to succeed")
	}

	got, found, err := sink.SummaryBySession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if !found {
		t.Fatal("expected summary to exist")
	}
	if got.PlayerID != "player-1" || len(got.Rewards) != 2 {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if !got.StartedAt.Equal(start) || !got.EndedAt.Equal(end) {
		t.Fatalf("unexpected times: %+v", got)
	}
}

func TestSummaryUpsert(t *testing.T) {
	sink := openTestSink(t)
	ctx := context.Background()

	summary := session.Summary{SessionID: "sess-1", PlayerID: "player-1"}
	sink.SendSummary(ctx, summary)
	summary.Rewards = []string{"sword_of_dawn"}
	if ok := sink.SendSummary(ctx, summary); !ok {
		t.Fatal("expected re-archive to succeed")
	}

	got, found, err := sink.SummaryBySession(ctx, "sess-1")
	if err != nil || !found {
		t.Fatalf("read summary: %v found=%v", err, found)
	}
	if len(got.Rewards) != 1 {
		t.Fatalf("expected updated rewards, got %v", got.Rewards)
	}
}

func TestSummaryUnknownSession(t *testing.T) {
	sink := openTestSink(t)

	_, found, err := sink.SummaryBySession(context.Background(), "missing")
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if found {
		t.Fatal("expected no summary for unknown session")
	}
}

func TestEventsArchiveAndDeduplicate(t *testing.T) {
	sink := openTestSink(t)
	ctx := context.Background()

	ts := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	events := []session.Event{
		{ID: "ev-1", PlayerID: "player-1", Type: "spell_cast", Timestamp: ts, Data: map[string]string{"spell": "fireball"}, TTL: ts.Add(72 * time.Hour)},
		{ID: "ev-2", PlayerID: "player-1", Type: "player_leave", Timestamp: ts},
	}
	if ok := sink.SendEvents(ctx, events); !ok {
		t.Fatal("expected archive to succeed")
	}
	// Replaying the same batch is ignored, not an error.
	if ok := sink.SendEvents(ctx, events); !ok {
		t.Fatal("expected replay to succeed")
	}

	count, err := sink.EventCount(ctx)
	if err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 archived events, got %d", count)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
