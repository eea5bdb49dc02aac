package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginSuccess(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/auth/login", "",
		`{"email":"admin@acme.test","password":"password"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeMap(t, rec)
	assert.NotEmpty(t, body["token"])

	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "admin@acme.test", user["email"])
	assert.Equal(t, "admin", user["role"])

	tenant, ok := user["tenant"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "acme", tenant["slug"])
	assert.Equal(t, "Acme Corporation", tenant["name"])
	assert.Equal(t, "free", tenant["subscription_plan"])
}

func TestLoginMissingFields(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"no email", `{"password":"password"}`},
		{"no password", `{"email":"admin@acme.test"}`},
		{"empty body", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.request(t, http.MethodPost, "/auth/login", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "email and password are required")
		})
	}
}

func TestLoginBadCredentialsGiveIdenticalResponses(t *testing.T) {
	env := newTestEnv(t)

	// Existing account with wrong password
	wrongPassword := env.request(t, http.MethodPost, "/auth/login", "",
		`{"email":"admin@acme.test","password":"nope"}`)
	// Account that does not exist at all
	unknownEmail := env.request(t, http.MethodPost, "/auth/login", "",
		`{"email":"ghost@acme.test","password":"password"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	// Byte-identical bodies: the endpoint must not reveal which accounts exist
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "user@acme.test", "password")

	rec := env.request(t, http.MethodGet, "/auth/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeMap(t, rec)
	assert.Equal(t, "user@acme.test", body["email"])
	assert.Equal(t, "member", body["role"])
	tenant, ok := body["tenant"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "acme", tenant["slug"])
}

func TestMeRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeUserVanished(t *testing.T) {
	env := newTestEnv(t)

	// Token for a user ID that no longer exists in the store
	token, err := env.jwt.GenerateToken(999, "gone@acme.test", "member", env.acme.ID, "acme")
	require.NoError(t, err)

	rec := env.request(t, http.MethodGet, "/auth/me", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not found")

	// The store is untouched otherwise
	_, err = env.store.GetUserByEmail(context.Background(), "user@acme.test")
	assert.NoError(t, err)
}
