package admission

// Connection option keys carried on a connect request.
const (
	// OptionToken carries the bearer authentication token.
	OptionToken = "Token"
	// OptionReservationID carries the fleet reservation id issued by
	// matchmaking. Required only under fleet management.
	OptionReservationID = "ReservationId"
	// OptionPlayerSessionID is the legacy alias some clients still send for
	// the reservation id.
	OptionPlayerSessionID = "PlayerSessionId"
)

// Options are the string-keyed key/value pairs a client sends on connect.
type Options map[string]string

// Token returns the bearer token, or empty when none was sent.
func (o Options) Token() string {
	return o[OptionToken]
}

// ReservationID returns the fleet reservation id, preferring the current key
// over the legacy alias. Empty when neither was sent.
func (o Options) ReservationID() string {
	if id := o[OptionReservationID]; id != "" {
		return id
	}
	return o[OptionPlayerSessionID]
}
