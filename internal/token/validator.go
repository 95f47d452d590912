package token

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/hypermage/shardcore/internal/platform/errors"
)

// Config defines how bearer tokens are validated. Empty Issuer or Audience
// disables the corresponding check — an explicit open mode for development
// that is logged at construction.
type Config struct {
	Issuer   string
	Audience string
	Now      func() time.Time
}

// Validator validates bearer tokens against a Config and a pluggable
// signature verifier.
type Validator struct {
	cfg      Config
	verifier SignatureVerifier
}

// NewValidator creates a token validator. A nil verifier falls back to the
// no-op verifier, which accepts every signature.
func NewValidator(cfg Config, verifier SignatureVerifier) *Validator {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if verifier == nil {
		verifier = NewNoopVerifier()
	}
	if cfg.Issuer == "" {
		log.Printf("token: no issuer configured, issuer check disabled (open mode)")
	}
	if cfg.Audience == "" {
		log.Printf("token: no audience configured, audience check disabled (open mode)")
	}
	return &Validator{cfg: cfg, verifier: verifier}
}

// Validate checks a bearer token end to end and returns its claims.
//
// Check order: structure, payload decode, expiration, issuer, audience,
// token use, subject, signature. The first failure wins.
func (v *Validator) Validate(token string) (Claims, error) {
	header, payload, signature, err := splitToken(token)
	if err != nil {
		return Claims{}, err
	}

	claims, err := parseClaims(payload)
	if err != nil {
		return Claims{}, err
	}

	// A missing exp claim decodes to zero and counts as expired. The boundary
	// is inclusive: a token expiring exactly now is already invalid.
	now := v.cfg.Now().UTC().Unix()
	if now >= claims.ExpiresAt {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeTokenExpired,
			"token has expired",
			map[string]string{
				"Now":       strconv.FormatInt(now, 10),
				"ExpiresAt": strconv.FormatInt(claims.ExpiresAt, 10),
			},
		)
	}

	if v.cfg.Issuer != "" && claims.Issuer != v.cfg.Issuer {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeInvalidIssuer,
			"token issuer mismatch",
			map[string]string{"Expected": v.cfg.Issuer, "Actual": claims.Issuer},
		)
	}
	if v.cfg.Audience != "" && claims.Audience != v.cfg.Audience {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeInvalidAudience,
			"token audience mismatch",
			map[string]string{"Expected": v.cfg.Audience, "Actual": claims.Audience},
		)
	}
	if claims.TokenUse != TokenUseAccess && claims.TokenUse != TokenUseID {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeInvalidTokenUse,
			"token use must be access or id",
			map[string]string{"Actual": claims.TokenUse},
		)
	}
	if claims.Subject == "" {
		return Claims{}, apperrors.New(apperrors.CodeMissingSubject, "token subject is required")
	}

	if err := v.verifier.Verify(header, payload, signature); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

// Decode extracts claims from a token without expiration or signature checks.
// It exists for non-authoritative contexts, such as reading a player id out
// of an already-trusted token; callers must not treat it as an admission
// decision.
func (v *Validator) Decode(token string) (Claims, error) {
	_, payload, _, err := splitToken(token)
	if err != nil {
		return Claims{}, err
	}
	return parseClaims(payload)
}

// splitToken splits a bearer token into its header, payload, and signature
// segments. Any segment count other than three is malformed.
func splitToken(token string) (header, payload, signature string, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", "", "", apperrors.WithMetadata(
			apperrors.CodeMalformedToken,
			"token must have three segments",
			map[string]string{"Segments": strconv.Itoa(len(parts))},
		)
	}
	return parts[0], parts[1], parts[2], nil
}

// parseClaims base64url-decodes a payload segment and parses its JSON claims.
func parseClaims(payload string) (Claims, error) {
	raw, err := decodeSegment(payload)
	if err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeMalformedToken, "decode token payload", err)
	}
	var parsed tokenPayload
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeMalformedToken, "parse token claims", err)
	}
	return parsed.claims(), nil
}

// decodeSegment converts base64url to standard base64, restores padding to a
// multiple-of-4 length, and decodes.
func decodeSegment(segment string) ([]byte, error) {
	s := strings.ReplaceAll(segment, "-", "+")
	s = strings.ReplaceAll(s, "_", "/")
	if rem := len(s) % 4; rem != 0 {
		s += strings.Repeat("=", 4-rem)
	}
	return base64.StdEncoding.DecodeString(s)
}
