// ABOUTME: Tests for JWT claims extraction
// ABOUTME: Tokens are handcrafted; no signature verification happens client-side

package session

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"
)

// makeToken builds an unsigned JWT-shaped token for tests
func makeToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	header, _ := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("failed to marshal claims: %v", err)
	}
	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + ".sig"
}

func TestParseToken_Valid(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	token := makeToken(t, map[string]any{
		"user_id":  "42",
		"username": "alice",
		"email":    "alice@example.com",
		"exp":      exp,
	})

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != "42" || claims.Username != "alice" || claims.Email != "alice@example.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt().Unix() != exp {
		t.Errorf("expected expiry %d, got %d", exp, claims.ExpiresAt().Unix())
	}
}

func TestParseToken_Expired(t *testing.T) {
	token := makeToken(t, map[string]any{
		"user_id": "42",
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})

	if _, err := ParseToken(token); err == nil {
		t.Error("expected error for expired token, got nil")
	}
}

func TestParseToken_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not a jwt", "garbage"},
		{"two parts", "aaaa.bbbb"},
		{"bad base64", "aaaa.!!!!.cccc"},
		{"payload not json", "aaaa." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".cccc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseToken(tt.token); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestParseToken_PaddedPayload(t *testing.T) {
	// Some issuers emit standard base64 with padding
	payload, _ := json.Marshal(map[string]any{
		"user_id": "1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	token := "aaaa." + base64.URLEncoding.EncodeToString(payload) + ".cccc"

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != "1" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestParseToken_NoExpiry(t *testing.T) {
	// A token without exp never counts as expired
	token := makeToken(t, map[string]any{"user_id": "1"})
	if _, err := ParseToken(token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
