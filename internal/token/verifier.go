package token

import (
	"errors"
	"fmt"
	"log"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/hypermage/shardcore/internal/platform/errors"
)

// SignatureVerifier checks the cryptographic signature over a token's header
// and payload segments. Implementations are swappable so the core never
// depends on a concrete key source.
type SignatureVerifier interface {
	Verify(header, payload, signature string) error
}

// NoopVerifier accepts every signature. Development only.
type NoopVerifier struct{}

// NewNoopVerifier returns a verifier that skips signature checks. The
// degraded-trust condition is logged once here so it is never silent.
func NewNoopVerifier() NoopVerifier {
	log.Printf("token: signature verification disabled, tokens are accepted without cryptographic proof")
	return NoopVerifier{}
}

// Verify always succeeds.
func (NoopVerifier) Verify(header, payload, signature string) error {
	return nil
}

// KeyResolver maps a token header key id to a verification key.
type KeyResolver interface {
	ResolveKey(keyID string) (any, error)
}

// StaticKeyResolver serves verification keys from a fixed map.
type StaticKeyResolver map[string]any

// ResolveKey returns the key registered for keyID.
func (r StaticKeyResolver) ResolveKey(keyID string) (any, error) {
	key, ok := r[keyID]
	if !ok {
		return nil, fmt.Errorf("unknown key id %q", keyID)
	}
	return key, nil
}

// JWTVerifier verifies token signatures using keys from a resolver. Claims
// validation stays in the Validator; this step only proves the signature.
type JWTVerifier struct {
	resolver KeyResolver
	methods  []string
}

// NewJWTVerifier creates a signature verifier restricted to the given
// signing methods. An empty method list defaults to RS256.
func NewJWTVerifier(resolver KeyResolver, methods []string) *JWTVerifier {
	if len(methods) == 0 {
		methods = []string{"RS256"}
	}
	return &JWTVerifier{resolver: resolver, methods: methods}
}

// Verify checks the signature over the header and payload segments.
func (v *JWTVerifier) Verify(header, payload, signature string) error {
	raw := header + "." + payload + "." + signature
	_, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		keyID, _ := t.Header["kid"].(string)
		return v.resolver.ResolveKey(keyID)
	},
		jwt.WithValidMethods(v.methods),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return mapJWTError(err)
	}
	return nil
}

// mapJWTError translates jwt library errors to domain errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		return apperrors.New(apperrors.CodeSignatureInvalid, "token signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.Wrap(apperrors.CodeSignatureInvalid, "token key is unavailable", err)
	}
	return apperrors.Wrap(apperrors.CodeSignatureInvalid, "token signature verification failed", err)
}
