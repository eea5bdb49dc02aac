package handler

import (
	"notes-service/internal/model"
	"notes-service/internal/store"
	"notes-service/pkg/config"
	"notes-service/pkg/jwtutil"

	"github.com/labstack/echo/v4"
)

// Handler carries the dependencies shared by all HTTP handlers. The store,
// token codec, and configuration are injected at startup; handlers hold no
// other state.
type Handler struct {
	store store.Store
	jwt   *jwtutil.JWTUtil
	cfg   *config.Config
}

// New creates a Handler with the given dependencies.
func New(st store.Store, jwt *jwtutil.JWTUtil, cfg *config.Config) *Handler {
	return &Handler{store: st, jwt: jwt, cfg: cfg}
}

// userSummary is the user/tenant shape returned by login and /auth/me.
func userSummary(user *model.User, tenant *model.Tenant) echo.Map {
	return echo.Map{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role,
		"tenant": echo.Map{
			"id":                tenant.ID,
			"slug":              tenant.Slug,
			"name":              tenant.Name,
			"subscription_plan": tenant.SubscriptionPlan,
		},
	}
}
