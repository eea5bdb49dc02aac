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
)

// UpgradeTenant moves the caller's tenant to the pro plan. On top of the admin
// role check in the route middleware, the slug in the path must match the
// caller's own tenant slug: an admin of one tenant can never upgrade another,
// and foreign slugs are rejected before any lookup so their existence is not
// confirmed. The operation is idempotent.
func (h *Handler) UpgradeTenant(c echo.Context) error {
	log := logger.FromContext(c)

	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	slug := c.Param("slug")
	if claims.TenantSlug != slug {
		log.Warn("Tenant upgrade denied: slug mismatch",
			zap.String("caller_slug", claims.TenantSlug),
			zap.String("requested_slug", slug))
		prometheus.RecordAuthError("tenant_mismatch")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	tenant, err := h.store.UpgradeTenantPlan(c.Request().Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("Tenant in token no longer exists", zap.String("slug", slug))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		log.Error("Failed to upgrade tenant", zap.String("slug", slug), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	prometheus.TenantUpgradeCounter.Inc()
	log.Info("Tenant upgraded to pro",
		zap.Uint("tenant_id", tenant.ID),
		zap.String("slug", tenant.Slug))

	return c.JSON(http.StatusOK, echo.Map{"message": "Subscription upgraded to Pro"})
}
