package report

import (
	"slices"
	"time"

	"github.com/hypermage/shardcore/internal/session"
)

// SummaryPayload is the session summary document shared by the reporting
// transports. Field names are part of the session API contract.
type SummaryPayload struct {
	SessionID        string   `json:"sessionId"`
	PlayerID         string   `json:"playerId"`
	Rewards          []string `json:"rewards"`
	SessionStartTime string   `json:"sessionStartTime"`
	SessionEndTime   string   `json:"sessionEndTime"`
}

// EventPayload is the interaction event document shared by the reporting
// transports. TTL is Unix seconds; zero means the owning session has not
// ended.
type EventPayload struct {
	EventID   string            `json:"eventId"`
	Timestamp string            `json:"timestamp"`
	PlayerID  string            `json:"playerId"`
	EventType string            `json:"eventType"`
	Data      map[string]string `json:"data"`
	TTL       int64             `json:"ttl"`
}

// NewSummaryPayload projects a session summary onto the wire document.
func NewSummaryPayload(summary session.Summary) SummaryPayload {
	rewards := slices.Clone(summary.Rewards)
	if rewards == nil {
		rewards = []string{}
	}
	return SummaryPayload{
		SessionID:        summary.SessionID,
		PlayerID:         summary.PlayerID,
		Rewards:          rewards,
		SessionStartTime: summary.StartedAt.UTC().Format(time.RFC3339),
		SessionEndTime:   summary.EndedAt.UTC().Format(time.RFC3339),
	}
}

// NewEventPayload projects an interaction event onto the wire document.
func NewEventPayload(event session.Event) EventPayload {
	data := event.Data
	if data == nil {
		data = map[string]string{}
	}
	var ttl int64
	if !event.TTL.IsZero() {
		ttl = event.TTL.UTC().Unix()
	}
	return EventPayload{
		EventID:   event.ID,
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		PlayerID:  event.PlayerID,
		EventType: event.Type,
		Data:      data,
		TTL:       ttl,
	}
}
