package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/assetverse/asset-management/internal/core/domain"
)

// HREmailHeader names the acting HR on company-scoped routes.
const HREmailHeader = "hremail"

// HREmail requires the hremail header and stores the normalised address
// under HREmailKey.
func HREmail() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			email := domain.NormalizeEmail(c.Request().Header.Get(HREmailHeader))
			if email == "" {
				return echo.NewHTTPError(http.StatusBadRequest, "HR email required")
			}
			c.Set(HREmailKey, email)
			return next(c)
		}
	}
}
