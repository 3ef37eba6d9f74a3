package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/assetverse/asset-management/internal/api/middleware"
)

// ctxHREmail returns the acting HR injected by the HREmail middleware and
// fails fast when the route was mounted without it.
func ctxHREmail(c echo.Context) (string, error) {
	email, _ := c.Get(middleware.HREmailKey).(string)
	if email == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "HR email required")
	}
	return email, nil
}
