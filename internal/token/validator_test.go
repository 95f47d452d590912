package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperrors "github.com/hypermage/shardcore/internal/platform/errors"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

// makeToken builds a three-segment token with the given payload claims and a
// placeholder signature.
func makeToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	header, err := json.Marshal(map[string]any{"alg": "RS256", "typ": "JWT"})
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + ".signature"
}

func validClaims() map[string]any {
	return map[string]any{
		"sub":              "player-1",
		"iss":              "https://issuer.example/pool",
		"aud":              "client-abc",
		"token_use":        "access",
		"cognito:username": "mage01",
		"exp":              testNow.Add(time.Hour).Unix(),
		"iat":              testNow.Add(-time.Minute).Unix(),
		"cognito:groups":   []string{"players", "beta"},
	}
}

func TestValidateOpenMode(t *testing.T) {
	v := NewValidator(Config{Now: fixedNow}, NoopVerifier{})

	claims, err := v.Validate(makeToken(t, validClaims()))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.Subject != "player-1" {
		t.Fatalf("expected subject player-1, got %q", claims.Subject)
	}
	if claims.Username != "mage01" {
		t.Fatalf("expected username mage01, got %q", claims.Username)
	}
	if len(claims.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %v", claims.Groups)
	}
}

func TestValidateSegmentCount(t *testing.T) {
	v := NewValidator(Config{Now: fixedNow}, NoopVerifier{})

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"two segments", "aGVhZGVy.cGF5bG9hZA"},
		{"four segments", "a.b.c.d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.Validate(tt.token); apperrors.CodeOf(err) != apperrors.CodeMalformedToken {
				t.Fatalf("Validate(%q) = %v, want MALFORMED_TOKEN", tt.token, err)
			}
			if _, err := v.Decode(tt.token); apperrors.CodeOf(err) != apperrors.CodeMalformedToken {
				t.Fatalf("Decode(%q) = %v, want MALFORMED_TOKEN", tt.token, err)
			}
		})
	}
}

func TestValidateBadPayload(t *testing.T) {
	v := NewValidator(Config{Now: fixedNow}, NoopVerifier{})

	// Payload segment is not valid base64.
	if _, err := v.Validate("header.!!!.sig"); apperrors.CodeOf(err) != apperrors.CodeMalformedToken {
		t.Fatalf("expected MALFORMED_TOKEN for bad base64, got %v", err)
	}

	// Payload decodes but is not JSON.
	garbage := base64.RawURLEncoding.EncodeToString([]byte("not json"))
	if _, err := v.Validate("header." + garbage + ".sig"); apperrors.CodeOf(err) != apperrors.CodeMalformedToken {
		t.Fatalf("expected MALFORMED_TOKEN for bad JSON, got %v", err)
	}
}

func TestValidateExpiration(t *testing.T) {
	v := NewValidator(Config{Now: fixedNow}, NoopVerifier{})

	tests := []struct {
		name    string
		exp     any
		expired bool
	}{
		{"future", testNow.Add(time.Hour).Unix(), false},
		{"past", testNow.Add(-time.Hour).Unix(), true},
		{"exactly now", testNow.Unix(), true},
		{"one second left", testNow.Add(time.Second).Unix(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := validClaims()
			claims["exp"] = tt.exp
			_, err := v.Validate(makeToken(t, claims))
			if tt.expired {
				if apperrors.CodeOf(err) != apperrors.CodeTokenExpired {
					t.Fatalf("expected TOKEN_EXPIRED, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateMissingExpCountsAsExpired(t *testing.T) {
	v := NewValidator(Config{Now: fixedNow}, NoopVerifier{})

	claims := validClaims()
	delete(claims, "exp")
	if _, err := v.Validate(makeToken(t, claims)); apperrors.CodeOf(err) != apperrors.CodeTokenExpired {
		t.Fatalf("expected TOKEN_EXPIRED for missing exp, got %v", err)
	}
}

func TestValidateClaimChecks(t *testing.T) {
	cfg := Config{
		Issuer:   "https://issuer.example/pool",
		Audience: "client-abc",
		Now:      fixedNow,
	}
	v := NewValidator(cfg, NoopVerifier{})

	tests := []struct {
		name   string
		mutate func(map[string]any)
		want   apperrors.Code
	}{
		{"wrong issuer", func(c map[string]any) { c["iss"] = "https://other.example" }, apperrors.CodeInvalidIssuer},
		{"missing issuer", func(c map[string]any) { delete(c, "iss") }, apperrors.CodeInvalidIssuer},
		{"wrong audience", func(c map[string]any) { c["aud"] = "client-xyz" }, apperrors.CodeInvalidAudience},
		{"bad token use", func(c map[string]any) { c["token_use"] = "refresh" }, apperrors.CodeInvalidTokenUse},
		{"missing token use", func(c map[string]any) { delete(c, "token_use") }, apperrors.CodeInvalidTokenUse},
		{"missing subject", func(c map[string]any) { delete(c, "sub") }, apperrors.CodeMissingSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := validClaims()
			tt.mutate(claims)
			_, err := v.Validate(makeToken(t, claims))
			if apperrors.CodeOf(err) != tt.want {
				t.Fatalf("Validate() = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestValidateIDTokenUse(t *testing.T) {
	v := NewValidator(Config{Now: fixedNow}, NoopVerifier{})

	claims := validClaims()
	claims["token_use"] = "id"
	if _, err := v.Validate(makeToken(t, claims)); err != nil {
		t.Fatalf("expected id token use to validate, got %v", err)
	}
}

func TestValidateOpenModeSkipsIssuerAndAudience(t *testing.T) {
	v := NewValidator(Config{Now: fixedNow}, NoopVerifier{})

	claims := validClaims()
	claims["iss"] = "https://anything.example"
	claims["aud"] = "whatever"
	if _, err := v.Validate(makeToken(t, claims)); err != nil {
		t.Fatalf("expected open mode to skip issuer/audience checks, got %v", err)
	}
}

type failingVerifier struct{}

func (failingVerifier) Verify(header, payload, signature string) error {
	return apperrors.New(apperrors.CodeSignatureInvalid, "token signature is invalid")
}

func TestValidateSignatureFailure(t *testing.T) {
	v := NewValidator(Config{Now: fixedNow}, failingVerifier{})

	_, err := v.Validate(makeToken(t, validClaims()))
	if apperrors.CodeOf(err) != apperrors.CodeSignatureInvalid {
		t.Fatalf("expected SIGNATURE_INVALID, got %v", err)
	}
}

func TestDecodeSkipsExpiryAndSignature(t *testing.T) {
	v := NewValidator(Config{Now: fixedNow}, failingVerifier{})

	claims := validClaims()
	claims["exp"] = testNow.Add(-time.Hour).Unix()
	got, err := v.Decode(makeToken(t, claims))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Subject != "player-1" {
		t.Fatalf("expected subject player-1, got %q", got.Subject)
	}
}

func TestValidateErrorIsMatchable(t *testing.T) {
	v := NewValidator(Config{Now: fixedNow}, NoopVerifier{})

	claims := validClaims()
	claims["exp"] = testNow.Add(-time.Hour).Unix()
	_, err := v.Validate(makeToken(t, claims))
	if !errors.Is(err, apperrors.New(apperrors.CodeTokenExpired, "")) {
		t.Fatalf("expected error to match by code, got %v", err)
	}
}
