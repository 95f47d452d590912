package errors

// Code is a machine-readable error code. Codes double as the structured
// rejection reasons handed to the connection layer, so their spelling is part
// of the external contract.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Token errors
	CodeMalformedToken   Code = "MALFORMED_TOKEN"
	CodeTokenExpired     Code = "TOKEN_EXPIRED"
	CodeInvalidIssuer    Code = "INVALID_ISSUER"
	CodeInvalidAudience  Code = "INVALID_AUDIENCE"
	CodeInvalidTokenUse  Code = "INVALID_TOKEN_USE"
	CodeMissingSubject   Code = "MISSING_SUBJECT"
	CodeSignatureInvalid Code = "SIGNATURE_INVALID"

	// Admission errors
	CodeServerFull          Code = "SERVER_FULL"
	CodeNoToken             Code = "NO_TOKEN"
	CodeNoReservation       Code = "NO_RESERVATION"
	CodeReservationRejected Code = "RESERVATION_REJECTED"

	// Reward errors
	CodeInvalidPlayerID       Code = "INVALID_PLAYER_ID"
	CodeInvalidRewardID       Code = "INVALID_REWARD_ID"
	CodeRewardCatalogNotFound Code = "REWARD_CATALOG_NOT_FOUND"
	CodeRewardAlreadyGranted  Code = "REWARD_ALREADY_GRANTED"

	// Session errors
	CodeSessionNotFound     Code = "SESSION_NOT_FOUND"
	CodeSessionInvalidState Code = "SESSION_INVALID_STATE"
)
