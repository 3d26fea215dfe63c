package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truckmitra/backend/domain"
)

func session(expires time.Time) *domain.Session {
	return &domain.Session{ID: "sid-1", UserID: "user-1", Role: domain.RoleLoader, ExpiresAt: expires}
}

func TestIssueAndParse(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("super-secret", "truckmitra", time.Hour)
	raw, err := issuer.Issue(session(time.Now().Add(time.Hour)))
	require.NoError(t, err)

	claims, err := issuer.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, domain.RoleLoader, claims.Role)
	assert.Equal(t, "sid-1", claims.SessionID)
	assert.Equal(t, "truckmitra", claims.Issuer)
	assert.NotNil(t, claims.IssuedAt)
}

func TestParseExpired(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("secret", "truckmitra", time.Hour)
	raw, err := issuer.Issue(session(time.Now().Add(-time.Second)))
	require.NoError(t, err)

	_, err = issuer.Parse(raw)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
}

func TestParseWrongSecret(t *testing.T) {
	t.Parallel()

	raw, err := NewIssuer("right", "truckmitra", time.Hour).Issue(session(time.Now().Add(time.Hour)))
	require.NoError(t, err)

	_, err = NewIssuer("wrong", "truckmitra", time.Hour).Parse(raw)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
}

func TestParseWrongIssuer(t *testing.T) {
	t.Parallel()

	raw, err := NewIssuer("secret", "someone-else", time.Hour).Issue(session(time.Now().Add(time.Hour)))
	require.NoError(t, err)

	_, err = NewIssuer("secret", "truckmitra", time.Hour).Parse(raw)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role:      domain.RoleShipper,
		SessionID: "sid",
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewIssuer("secret", "", time.Hour).Parse(raw)
	assert.Error(t, err)
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("k", "", time.Hour)
	_, err := issuer.Parse("not.a.jwt")
	assert.Error(t, err)
	_, err = issuer.Parse("")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
