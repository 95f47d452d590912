// Package natsbus publishes session reporting documents on NATS subjects.
// Delivery is best-effort: a dropped message is logged and forgotten.
package natsbus

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/nats-io/nats.go"

	"github.com/hypermage/shardcore/internal/report"
	"github.com/hypermage/shardcore/internal/session"
)

// Default subjects for the reporting documents.
const (
	DefaultSummarySubject = "shardcore.sessions.summary"
	DefaultEventSubject   = "shardcore.sessions.events"
)

// conn is the subset of the NATS connection the publisher uses.
type conn interface {
	Publish(subj string, data []byte) error
	Flush() error
}

// Publisher emits summaries and interaction events to NATS.
type Publisher struct {
	conn           conn
	closer         func()
	summarySubject string
	eventSubject   string
}

// Connect dials a NATS endpoint and returns a publisher using the default
// subjects.
func Connect(url string, opts ...nats.Option) (*Publisher, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	p, err := NewPublisher(nc, DefaultSummarySubject, DefaultEventSubject)
	if err != nil {
		nc.Close()
		return nil, err
	}
	p.closer = func() {
		if err := nc.Drain(); err != nil {
			nc.Close()
		}
	}
	return p, nil
}

// NewPublisher wraps an existing connection.
func NewPublisher(c conn, summarySubject, eventSubject string) (*Publisher, error) {
	if c == nil {
		return nil, errors.New("nats connection is required")
	}
	if summarySubject == "" {
		summarySubject = DefaultSummarySubject
	}
	if eventSubject == "" {
		eventSubject = DefaultEventSubject
	}
	return &Publisher{conn: c, summarySubject: summarySubject, eventSubject: eventSubject}, nil
}

// Close drains the underlying connection when the publisher owns it.
func (p *Publisher) Close() {
	if p == nil || p.closer == nil {
		return
	}
	p.closer()
}

// SendSummary publishes the summary document.
func (p *Publisher) SendSummary(ctx context.Context, summary session.Summary) bool {
	if !p.publish(p.summarySubject, report.NewSummaryPayload(summary)) {
		log.Printf("natsbus: drop session summary %s", summary.SessionID)
		return false
	}
	return true
}

// SendEvents publishes one message per interaction event.
func (p *Publisher) SendEvents(ctx context.Context, events []session.Event) bool {
	ok := true
	for _, event := range events {
		if !p.publish(p.eventSubject, report.NewEventPayload(event)) {
			log.Printf("natsbus: drop interaction event %s", event.ID)
			ok = false
		}
	}
	if ok {
		if err := p.conn.Flush(); err != nil {
			log.Printf("natsbus: flush: %v", err)
			return false
		}
	}
	return ok
}

func (p *Publisher) publish(subject string, payload any) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("natsbus: marshal payload: %v", err)
		return false
	}
	if err := p.conn.Publish(subject, data); err != nil {
		log.Printf("natsbus: publish %s: %v", subject, err)
		return false
	}
	return true
}
