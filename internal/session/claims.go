// ABOUTME: Access token claim extraction for session restore
// ABOUTME: Validates token structure and expiration, extracts user identity

package session

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// Claims contains the identity fields embedded in an access token
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Exp      int64  `json:"exp"`
}

// ExpiresAt returns the token expiry as a time, zero when no exp claim is set
func (c *Claims) ExpiresAt() time.Time {
	if c.Exp == 0 {
		return time.Time{}
	}
	return time.Unix(c.Exp, 0)
}

// tokenError represents a token validation error
type tokenError struct {
	msg string
}

func (e *tokenError) Error() string {
	return e.msg
}

// ParseToken extracts claims from an access token.
// Note: This validates structure and expiration but does not cryptographically
// verify the signature. The token is opaque to the client; the backend is the
// authority on validity and answers 401 for anything it no longer accepts.
func ParseToken(token string) (*Claims, error) {
	return parseTokenAt(token, time.Now())
}

// parseTokenAt is ParseToken with an injected clock for tests
func parseTokenAt(token string, now time.Time) (*Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, &tokenError{"malformed token structure"}
	}

	payload, err := base64URLDecode(parts[1])
	if err != nil {
		return nil, err
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, &tokenError{"invalid payload format"}
	}

	if claims.Exp > 0 && now.Unix() > claims.Exp {
		return nil, &tokenError{"token expired"}
	}

	return &claims, nil
}

// base64URLDecode decodes base64url encoded data (RFC 4648)
func base64URLDecode(s string) ([]byte, error) {
	// RawURLEncoding handles base64url without padding
	// Add padding if present in input (some JWTs include it)
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.URLEncoding.DecodeString(s)
		if err != nil {
			return nil, &tokenError{"invalid payload encoding"}
		}
	}
	return data, nil
}
