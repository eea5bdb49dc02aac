package jwtutil

import (
	"strings"
	"testing"

	"notes-service/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUtil() *JWTUtil {
	return New(&config.JWTConfig{
		SigningKey:      "test-signing-key",
		ExpirationHours: 24,
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	j := newTestUtil()

	token, err := j.GenerateToken(42, "admin@acme.test", "admin", 7, "acme")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := j.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin@acme.test", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, uint(7), claims.TenantID)
	assert.Equal(t, "acme", claims.TenantSlug)
	assert.NotNil(t, claims.ExpiresAt)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt.Time))
}

func TestValidateMalformedToken(t *testing.T) {
	j := newTestUtil()

	for _, token := range []string{"", "garbage", "a.b", "a.b.c"} {
		_, err := j.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q should be rejected", token)
	}
}

func TestValidateTamperedSignature(t *testing.T) {
	j := newTestUtil()

	token, err := j.GenerateToken(1, "user@acme.test", "member", 1, "acme")
	require.NoError(t, err)

	// Flip a character in the signature segment
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = j.ValidateToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenSignedWithDifferentKey(t *testing.T) {
	other := New(&config.JWTConfig{SigningKey: "another-key", ExpirationHours: 24})
	token, err := other.GenerateToken(1, "user@acme.test", "member", 1, "acme")
	require.NoError(t, err)

	_, err = newTestUtil().ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateExpiredToken(t *testing.T) {
	// Negative expiration puts ExpiresAt in the past at issuance
	j := New(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: -1})

	token, err := j.GenerateToken(1, "user@acme.test", "member", 1, "acme")
	require.NoError(t, err)

	_, err = j.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
