// Package token signs and verifies the HS256 access tokens handed out on login.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/truckmitra/backend/domain"
)

// Claims are the registered claims plus the caller role and session id.
type Claims struct {
	jwt.RegisteredClaims
	Role      domain.Role `json:"role"`
	SessionID string      `json:"sid"`
}

// Issuer signs and verifies HS256 access tokens.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an issuer; a non-positive ttl falls back to 30 minutes.
func NewIssuer(secret string, issuer string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Issuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL is the lifetime of issued tokens.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token bound to the given session.
func (i *Issuer) Issue(session *domain.Session) (string, error) {
	if session == nil || session.ID == "" || session.UserID == "" {
		return "", domain.ErrInvalidPayload
	}
	now := i.now()
	expires := session.ExpiresAt
	if expires.IsZero() {
		expires = now.Add(i.ttl)
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Role:      session.Role,
		SessionID: session.ID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse verifies signature, expiry and issuer. Every failure is reported as
// domain.ErrUnauthorized wrapping the cause.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	if raw == "" {
		return nil, domain.ErrUnauthorized
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "invalid token", err)
	}
	if !parsed.Valid {
		return nil, domain.ErrUnauthorized
	}
	if i.issuer != "" && !claims.VerifyIssuer(i.issuer, true) {
		return nil, domain.NewError(domain.ErrCodeUnauthorized, "invalid token issuer")
	}
	if claims.Subject == "" || claims.SessionID == "" || !claims.Role.Valid() {
		return nil, domain.NewError(domain.ErrCodeUnauthorized, "incomplete token claims")
	}
	return claims, nil
}
