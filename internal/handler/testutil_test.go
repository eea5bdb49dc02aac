package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"notes-service/internal/handler"
	"notes-service/internal/middleware"
	"notes-service/internal/model"
	"notes-service/internal/store"
	"notes-service/pkg/config"
	"notes-service/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// testEnv wires an Echo instance against the in-memory store with the same
// routes and middleware chain as main.
type testEnv struct {
	e     *echo.Echo
	store *store.MemoryStore
	jwt   *jwtutil.JWTUtil
	cfg   *config.Config

	acme   *model.Tenant
	globex *model.Tenant
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		JWT: config.JWTConfig{
			SigningKey:      "handler-test-key",
			ExpirationHours: 24,
		},
		Quota: config.QuotaConfig{FreeNoteLimit: 3},
	}

	st := store.NewMemoryStore()
	jwt := jwtutil.New(&cfg.JWT)
	h := handler.New(st, jwt, cfg)

	e := echo.New()

	auth := e.Group("/auth")
	auth.POST("/login", h.Login)
	auth.GET("/me", h.Me, middleware.Auth(jwt))

	notes := e.Group("/notes", middleware.Auth(jwt))
	notes.POST("", h.CreateNote)
	notes.GET("", h.ListNotes)
	notes.GET("/:id", h.GetNote)
	notes.PUT("/:id", h.UpdateNote)
	notes.DELETE("/:id", h.DeleteNote)

	tenants := e.Group("/tenants", middleware.Auth(jwt), middleware.RequireAdmin)
	tenants.POST("/:slug/upgrade", h.UpgradeTenant)

	env := &testEnv{e: e, store: st, jwt: jwt, cfg: cfg}

	ctx := context.Background()
	env.acme = &model.Tenant{Slug: "acme", Name: "Acme Corporation", SubscriptionPlan: model.PlanFree}
	require.NoError(t, st.CreateTenant(ctx, env.acme))
	env.globex = &model.Tenant{Slug: "globex", Name: "Globex Corporation", SubscriptionPlan: model.PlanFree}
	require.NoError(t, st.CreateTenant(ctx, env.globex))

	env.addUser(t, "admin@acme.test", model.RoleAdmin, env.acme.ID)
	env.addUser(t, "user@acme.test", model.RoleMember, env.acme.ID)
	env.addUser(t, "admin@globex.test", model.RoleAdmin, env.globex.ID)
	env.addUser(t, "user@globex.test", model.RoleMember, env.globex.ID)

	return env
}

func (env *testEnv) addUser(t *testing.T, email, role string, tenantID uint) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &model.User{Email: email, PasswordHash: string(hash), Role: role, TenantID: tenantID}
	require.NoError(t, env.store.CreateUser(context.Background(), user))
}

// login performs a real login request and returns the issued token.
func (env *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := env.request(t, http.MethodPost, "/auth/login", "",
		`{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, "login failed: %s", rec.Body.String())

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func (env *testEnv) request(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func decodeNote(t *testing.T, rec *httptest.ResponseRecorder) model.Note {
	t.Helper()
	var n model.Note
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))
	return n
}

func decodeNotes(t *testing.T, rec *httptest.ResponseRecorder) []model.Note {
	t.Helper()
	var ns []model.Note
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ns))
	return ns
}
