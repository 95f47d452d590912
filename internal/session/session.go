// Package session owns the finite-state lifecycle of ephemeral per-player
// sessions, their interaction events, and their accumulated rewards.
package session

import "time"

// State captures the lifecycle status of a session.
type State int

const (
	// StateCreated marks a session that exists but has not started.
	StateCreated State = iota
	// StateActive marks a session accepting events and rewards.
	StateActive
	// StateEnded marks a session that finished and carries an end time.
	StateEnded
	// StateExpired is a sentinel returned by state queries for unknown
	// session ids. It is never a transition target.
	StateExpired
)

// String renders the state for logs.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "CREATED"
	case StateActive:
		return "ACTIVE"
	case StateEnded:
		return "ENDED"
	case StateExpired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// RetentionWindow is the fixed time a session record is expected to survive
// in external storage after it ends. The registry stamps it as a TTL marker;
// enforcement belongs to the external store.
const RetentionWindow = 72 * time.Hour

// Event is an append-only interaction fact owned by a single session.
type Event struct {
	ID        string
	Timestamp time.Time
	PlayerID  string
	Type      string
	Data      map[string]string
	// TTL is copied from the owning session once it ends; zero before that.
	TTL time.Time
}

// Session is the core mutable entity. It is owned exclusively by the
// Registry; all mutation goes through registry operations keyed by id.
type Session struct {
	ID        string
	PlayerID  string
	ShardID   string
	State     State
	CreatedAt time.Time
	EndedAt   time.Time
	Events    []Event
	Rewards   []string
	// TTL is meaningful only after the session ends.
	TTL time.Time
}

// Summary is an immutable projection of a session's durable fields. It
// excludes interaction events.
type Summary struct {
	SessionID string
	PlayerID  string
	Rewards   []string
	StartedAt time.Time
	EndedAt   time.Time
}
