package fleet

import (
	"log"
	"sync"

	apperrors "github.com/hypermage/shardcore/internal/platform/errors"
)

type reservationState int

const (
	reservationReserved reservationState = iota
	reservationAccepted
)

// MockManager is an in-memory fleet manager for development and tests. It
// tracks reservations the way the production integration does: matchmaking
// seeds them, admission validates and accepts them.
type MockManager struct {
	mu           sync.Mutex
	reservations map[string]reservationState
	health       []Snapshot
}

// NewMockManager creates a mock fleet manager with no reservations.
func NewMockManager() *MockManager {
	return &MockManager{reservations: make(map[string]reservationState)}
}

// AddReservation seeds a claimable reservation, standing in for matchmaking.
// Duplicate ids map to one tracked entry.
func (m *MockManager) AddReservation(reservationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reservations[reservationID]; ok {
		return
	}
	m.reservations[reservationID] = reservationReserved
}

// ValidateReservation checks that a reservation id exists.
func (m *MockManager) ValidateReservation(reservationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reservations[reservationID]; !ok {
		return apperrors.WithMetadata(
			apperrors.CodeReservationRejected,
			"reservation id is not recognized",
			map[string]string{"ReservationID": reservationID},
		)
	}
	return nil
}

// AcceptReservation marks a reservation as claimed. Accepting an
// already-accepted reservation is a no-op.
func (m *MockManager) AcceptReservation(reservationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reservations[reservationID]; !ok {
		return apperrors.WithMetadata(
			apperrors.CodeReservationRejected,
			"reservation id is not recognized",
			map[string]string{"ReservationID": reservationID},
		)
	}
	m.reservations[reservationID] = reservationAccepted
	return nil
}

// RemoveReservation drops a reservation. Unknown ids are ignored.
func (m *MockManager) RemoveReservation(reservationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reservations, reservationID)
}

// ReportHealth records the snapshot and reports success.
func (m *MockManager) ReportHealth(snap Snapshot) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.health = append(m.health, snap)
	log.Printf("fleet: health report shard=%s players=%d/%d", snap.ShardID, snap.PlayerCount, snap.Capacity)
	return true
}

// HealthReports returns the snapshots received so far.
func (m *MockManager) HealthReports() []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Snapshot, len(m.health))
	copy(out, m.health)
	return out
}

// Reservations returns the number of tracked reservations.
func (m *MockManager) Reservations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reservations)
}
