package handler

import (
	"errors"
	"net/http"
	"time"

	"notes-service/internal/middleware"
	"notes-service/internal/store"
	"notes-service/pkg/logger"
	"notes-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Login authenticates a user by email and password and issues a session token
// carrying the user's tenant context.
func (h *Handler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	// Parse request
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	if req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_login")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	// Find user in database - track DB operation duration
	defer prometheus.TrackDBOperation("query")(time.Now())
	user, err := h.store.GetUserByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("Failed to look up user", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
		}
		// Unknown email and wrong password return the same response, so the
		// login endpoint cannot be used to probe which accounts exist
		log.Warn("Login failed: user not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_credentials")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Warn("Login failed: invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_credentials")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	tenant, err := h.store.GetTenantByID(c.Request().Context(), user.TenantID)
	if err != nil {
		log.Error("Failed to load user's tenant", zap.Uint("tenant_id", user.TenantID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	// Generate session token with tenant claims
	token, err := h.jwt.GenerateToken(user.ID, user.Email, user.Role, tenant.ID, tenant.Slug)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	prometheus.IncreaseActiveTokens()

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.Uint("tenant_id", tenant.ID),
		zap.String("tenant_slug", tenant.Slug),
		zap.String("role", user.Role))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  userSummary(user, tenant),
	})
}

// Me returns the current user's profile. The user and tenant are re-read from
// the store, so the response reflects current state rather than token claims.
func (h *Handler) Me(c echo.Context) error {
	log := logger.FromContext(c)

	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	user, err := h.store.GetUserByID(c.Request().Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("Token valid but user no longer exists", zap.Uint("user_id", claims.UserID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		log.Error("Failed to look up user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	tenant, err := h.store.GetTenantByID(c.Request().Context(), user.TenantID)
	if err != nil {
		log.Error("Failed to load user's tenant", zap.Uint("tenant_id", user.TenantID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	return c.JSON(http.StatusOK, userSummary(user, tenant))
}
