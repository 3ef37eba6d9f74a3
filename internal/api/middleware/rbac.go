package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/assetverse/asset-management/internal/core/domain"
)

// RequireRole lets a request through only when Auth stored one of roles.
// A request that never went through Auth is unauthenticated, not forbidden.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(RoleKey).(string)
			switch {
			case role == "":
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			case !slices.Contains(roles, domain.Role(role)):
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
