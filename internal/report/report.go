// Package report defines the external reporting boundary for session
// summaries and interaction events. Delivery is best-effort: failures are
// reported as booleans, logged, and never roll back session state.
package report

import (
	"context"
	"log"

	"github.com/hypermage/shardcore/internal/session"
)

// Reporter delivers durable session data to an external system.
type Reporter interface {
	SendSummary(ctx context.Context, summary session.Summary) bool
	SendEvents(ctx context.Context, events []session.Event) bool
}

// LogReporter is the mock-mode reporter: it logs the payload and succeeds.
// Used when no reporting endpoint is configured.
type LogReporter struct{}

// SendSummary logs the summary.
func (LogReporter) SendSummary(ctx context.Context, summary session.Summary) bool {
	log.Printf("report (mock): session summary session=%s player=%s rewards=%d",
		summary.SessionID, summary.PlayerID, len(summary.Rewards))
	for _, rewardID := range summary.Rewards {
		log.Printf("report (mock):   reward %s", rewardID)
	}
	return true
}

// SendEvents logs the event count.
func (LogReporter) SendEvents(ctx context.Context, events []session.Event) bool {
	log.Printf("report (mock): %d interaction events", len(events))
	return true
}

// Multi fans out to several reporters. Delivery succeeds only when every
// reporter succeeds; each reporter logs its own failures.
type Multi []Reporter

// SendSummary delivers the summary to every reporter.
func (m Multi) SendSummary(ctx context.Context, summary session.Summary) bool {
	ok := true
	for _, r := range m {
		if !r.SendSummary(ctx, summary) {
			ok = false
		}
	}
	return ok
}

// SendEvents delivers the events to every reporter.
func (m Multi) SendEvents(ctx context.Context, events []session.Event) bool {
	ok := true
	for _, r := range m {
		if !r.SendEvents(ctx, events) {
			ok = false
		}
	}
	return ok
}
