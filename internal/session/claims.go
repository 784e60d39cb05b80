package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is what the client can read out of its own bearer token.
// The token is issued and verified server-side; the client only inspects
// the claims, it never validates the signature.
type Identity struct {
	Subject   string
	Email     string
	Name      string
	ExpiresAt time.Time
}

// Identity parses the active token's claims. Returns ErrTokenExpired when
// the token is past its expiry so callers can prompt for a fresh login
// before issuing a doomed request.
func (h *Holder) Identity() (*Identity, error) {
	token, err := h.Token()
	if err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	id := &Identity{}
	if sub, err := claims.GetSubject(); err == nil {
		id.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		id.Name = name
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
		if time.Now().After(exp.Time) {
			return id, ErrTokenExpired
		}
	}
	return id, nil
}
