package session

import (
	"log"
	"maps"
	"slices"
	"sync"
	"time"

	apperrors "github.com/hypermage/shardcore/internal/platform/errors"
	"github.com/hypermage/shardcore/internal/platform/id"
)

// Registry owns every session in the process. It is safe for concurrent use;
// the state-transition guard is the linearization point for callers racing on
// the same session id.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	now   func() time.Time
	newID func() (string, error)
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		now:      time.Now,
		newID:    id.NewID,
	}
}

// Create registers a new session in the CREATED state and returns a copy.
func (r *Registry) Create(playerID, shardID string) (Session, error) {
	sessionID, err := r.newID()
	if err != nil {
		return Session{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sess := &Session{
		ID:        sessionID,
		PlayerID:  playerID,
		ShardID:   shardID,
		State:     StateCreated,
		CreatedAt: r.now().UTC(),
	}
	r.sessions[sessionID] = sess
	return copySession(sess), nil
}

// Start transitions a session from CREATED to ACTIVE.
func (r *Registry) Start(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transition(sessionID, StateCreated, StateActive)
}

// End transitions a session from ACTIVE to ENDED. On success it stamps the
// end time, computes the TTL marker as end time plus the retention window,
// and propagates that TTL onto every recorded event.
func (r *Registry) End(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.transition(sessionID, StateActive, StateEnded); err != nil {
		return err
	}
	sess := r.sessions[sessionID]
	sess.EndedAt = r.now().UTC()
	sess.TTL = sess.EndedAt.Add(RetentionWindow)
	for i := range sess.Events {
		sess.Events[i].TTL = sess.TTL
	}
	return nil
}

// transition moves a session from one exact state to another. The caller
// must hold the mutex.
func (r *Registry) transition(sessionID string, from, to State) error {
	sess, ok := r.sessions[sessionID]
	if !ok {
		return apperrors.WithMetadata(
			apperrors.CodeSessionNotFound,
			"session not found",
			map[string]string{"SessionID": sessionID},
		)
	}
	if sess.State != from {
		return apperrors.WithMetadata(
			apperrors.CodeSessionInvalidState,
			"session is not in the required state",
			map[string]string{
				"SessionID": sessionID,
				"Current":   sess.State.String(),
				"Required":  from.String(),
			},
		)
	}
	sess.State = to
	return nil
}

// TrackEvent appends an interaction event to an active session. A missing or
// non-active session logs a warning and is otherwise a no-op, because
// session ids can legitimately race with disconnect cleanup.
func (r *Registry) TrackEvent(sessionID, eventType string, data map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[sessionID]
	if !ok {
		log.Printf("session: track event %q on unknown session %s", eventType, sessionID)
		return
	}
	if sess.State != StateActive {
		log.Printf("session: track event %q on %s session %s", eventType, sess.State, sessionID)
		return
	}

	eventID, err := r.newID()
	if err != nil {
		log.Printf("session: generate event id: %v", err)
		return
	}
	sess.Events = append(sess.Events, Event{
		ID:        eventID,
		Timestamp: r.now().UTC(),
		PlayerID:  sess.PlayerID,
		Type:      eventType,
		Data:      maps.Clone(data),
	})
}

// AddReward records a reward id on a session. Duplicate reward ids and
// unknown sessions log a warning and are otherwise a no-op.
func (r *Registry) AddReward(sessionID, rewardID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[sessionID]
	if !ok {
		log.Printf("session: add reward %q on unknown session %s", rewardID, sessionID)
		return
	}
	if slices.Contains(sess.Rewards, rewardID) {
		log.Printf("session: reward %q already recorded on session %s", rewardID, sessionID)
		return
	}
	sess.Rewards = append(sess.Rewards, rewardID)
}

// Summary projects a session's durable fields. The boolean reports whether
// the session id is known.
func (r *Registry) Summary(sessionID string) (Summary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[sessionID]
	if !ok {
		return Summary{}, false
	}
	return Summary{
		SessionID: sess.ID,
		PlayerID:  sess.PlayerID,
		Rewards:   slices.Clone(sess.Rewards),
		StartedAt: sess.CreatedAt,
		EndedAt:   sess.EndedAt,
	}, true
}

// DiscardState clears a session's event sequence. Rewards and identity
// fields are untouched. Unknown sessions log a warning and are a no-op.
func (r *Registry) DiscardState(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[sessionID]
	if !ok {
		log.Printf("session: discard state on unknown session %s", sessionID)
		return
	}
	sess.Events = nil
}

// Get returns a copy of a session. The boolean reports whether the id is
// known.
func (r *Registry) Get(sessionID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[sessionID]
	if !ok {
		return Session{}, false
	}
	return copySession(sess), true
}

// State reports a session's lifecycle state. Unknown ids return the EXPIRED
// sentinel.
func (r *Registry) State(sessionID string) State {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[sessionID]
	if !ok {
		return StateExpired
	}
	return sess.State
}

// FindByPlayer returns a copy of the most recently created session for a
// player that has not ended. The boolean reports whether one exists.
func (r *Registry) FindByPlayer(playerID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found *Session
	for _, sess := range r.sessions {
		if sess.PlayerID != playerID || sess.State == StateEnded {
			continue
		}
		if found == nil || sess.CreatedAt.After(found.CreatedAt) {
			found = sess
		}
	}
	if found == nil {
		return Session{}, false
	}
	return copySession(found), true
}

// copySession deep-copies a session so callers never alias registry state.
func copySession(sess *Session) Session {
	out := *sess
	out.Rewards = slices.Clone(sess.Rewards)
	out.Events = make([]Event, len(sess.Events))
	for i, ev := range sess.Events {
		out.Events[i] = ev
		out.Events[i].Data = maps.Clone(ev.Data)
	}
	return out
}
