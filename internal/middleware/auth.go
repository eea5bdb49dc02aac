package middleware

import (
	"net/http"
	"strings"

	"notes-service/internal/model"
	"notes-service/pkg/jwtutil"
	"notes-service/pkg/logger"
	"notes-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ClaimsKey is the echo context key under which Auth stores the validated claims.
const ClaimsKey = "claims"

// Auth returns a middleware that validates the JWT bearer token from the
// Authorization header. A missing token and an invalid one are rejected with
// distinct messages; both fail closed with 401.
func Auth(jwt *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			// Get the Authorization header
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing Authorization header")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			// Check if it's a Bearer token
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Warn("Invalid Authorization header format")
				prometheus.RecordAuthError("invalid_auth_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			// Validate the token
			claims, err := jwt.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid JWT token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			// Store claims in context; all tenant scoping downstream derives
			// from these, never from client-supplied fields
			c.Set(ClaimsKey, claims)

			log.Debug("Request authenticated",
				zap.Uint("user_id", claims.UserID),
				zap.Uint("tenant_id", claims.TenantID),
				zap.String("role", claims.Role))

			return next(c)
		}
	}
}

// RequireAdmin rejects callers whose token does not carry the admin role. It
// must run after Auth. The role is taken from the claims at issuance time, so
// a demotion only takes effect once the token expires.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		claims := ClaimsFromContext(c)
		if claims == nil {
			log.Error("RequireAdmin used without Auth middleware")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		if claims.Role != model.RoleAdmin {
			log.Warn("Admin role required",
				zap.Uint("user_id", claims.UserID),
				zap.String("role", claims.Role))
			prometheus.RecordAuthError("forbidden")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "admin role required"})
		}

		return next(c)
	}
}

// ClaimsFromContext returns the validated claims set by Auth, or nil.
func ClaimsFromContext(c echo.Context) *jwtutil.UserClaims {
	claims, _ := c.Get(ClaimsKey).(*jwtutil.UserClaims)
	return claims
}
