// Package token parses and validates bearer authentication tokens and
// extracts identity claims for admission decisions.
package token

// Token-use tags accepted during validation.
const (
	TokenUseAccess = "access"
	TokenUseID     = "id"
)

// Claims hold the identity assertions decoded from a token payload. Missing
// optional fields default to empty or zero values.
type Claims struct {
	Subject   string
	Issuer    string
	Audience  string
	TokenUse  string
	Username  string
	Groups    []string
	ExpiresAt int64 // Unix seconds
	IssuedAt  int64 // Unix seconds
}

// tokenPayload mirrors the JSON payload segment of a bearer token.
type tokenPayload struct {
	Subject   string   `json:"sub"`
	Issuer    string   `json:"iss"`
	Audience  string   `json:"aud"`
	TokenUse  string   `json:"token_use"`
	Username  string   `json:"cognito:username"`
	ExpiresAt int64    `json:"exp"`
	IssuedAt  int64    `json:"iat"`
	Groups    []string `json:"cognito:groups"`
}

func (p tokenPayload) claims() Claims {
	return Claims{
		Subject:   p.Subject,
		Issuer:    p.Issuer,
		Audience:  p.Audience,
		TokenUse:  p.TokenUse,
		Username:  p.Username,
		Groups:    p.Groups,
		ExpiresAt: p.ExpiresAt,
		IssuedAt:  p.IssuedAt,
	}
}
