package admission

import (
	"context"
	"log"

	"github.com/hypermage/shardcore/internal/report"
	"github.com/hypermage/shardcore/internal/session"
)

// Closer ends a session on disconnect, hands its summary and interaction
// events to the external reporting boundary, and discards the ephemeral
// gameplay state. Reporting failures are logged and never roll back the
// session lifecycle.
type Closer struct {
	registry *session.Registry
	reporter report.Reporter
}

// NewCloser creates a session closer.
func NewCloser(registry *session.Registry, reporter report.Reporter) *Closer {
	return &Closer{registry: registry, reporter: reporter}
}

// Close ends the session and returns its summary. Events are exported
// best-effort before the session's transient state is discarded; the
// session record and its reward set survive the discard.
func (c *Closer) Close(ctx context.Context, sessionID string) (session.Summary, error) {
	if err := c.registry.End(sessionID); err != nil {
		return session.Summary{}, err
	}

	summary, ok := c.registry.Summary(sessionID)
	if !ok {
		// End succeeded, so the session cannot have vanished; guard anyway.
		log.Printf("closer: session %s disappeared after end", sessionID)
		return session.Summary{}, nil
	}

	if !c.reporter.SendSummary(ctx, summary) {
		log.Printf("closer: summary report failed for session %s", sessionID)
	}
	if sess, ok := c.registry.Get(sessionID); ok && len(sess.Events) > 0 {
		if !c.reporter.SendEvents(ctx, sess.Events) {
			log.Printf("closer: event report failed for session %s (%d events)", sessionID, len(sess.Events))
		}
	}

	c.registry.DiscardState(sessionID)
	return summary, nil
}
