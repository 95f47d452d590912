// Package fleet defines the boundary to an external fleet manager: player
// reservations handed out by matchmaking and the periodic health signal.
package fleet

// Snapshot is the health/readiness signal consumed by the fleet manager.
type Snapshot struct {
	ShardID     string
	PlayerCount int
	Capacity    int
}

// Manager is the external fleet-management integration. Calls are best-effort
// from the core's perspective and never block on a network round trip.
type Manager interface {
	// ValidateReservation checks that a reservation id was issued by
	// matchmaking and is still claimable.
	ValidateReservation(reservationID string) error
	// AcceptReservation marks a reservation as claimed. Re-accepting an
	// already-accepted reservation is not an error.
	AcceptReservation(reservationID string) error
	// RemoveReservation drops tracking for a reservation on disconnect.
	RemoveReservation(reservationID string)
	// ReportHealth delivers a snapshot. The return reports delivery success;
	// callers never act on a failure beyond logging it.
	ReportHealth(snap Snapshot) bool
}
