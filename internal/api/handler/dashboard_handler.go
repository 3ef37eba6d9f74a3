package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/assetverse/asset-management/internal/core/ports"
)

// DashboardHandler serves the HR dashboard charts.
type DashboardHandler struct {
	service ports.DashboardService
}

func NewDashboardHandler(service ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Pie handles GET /api/dashboard/pie.
//
// @Summary      Asset count by type
// @Tags         dashboard
// @Produce      json
// @Success      200  {array}  domain.TypeCount
// @Router       /api/dashboard/pie [get]
func (h *DashboardHandler) Pie(c echo.Context) error {
	data, err := h.service.AssetTypeBreakdown(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, data)
}

// Bar handles GET /api/dashboard/bar.
//
// @Summary      Most requested assets
// @Tags         dashboard
// @Produce      json
// @Success      200  {array}  domain.NameCount
// @Router       /api/dashboard/bar [get]
func (h *DashboardHandler) Bar(c echo.Context) error {
	data, err := h.service.TopRequestedAssets(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, data)
}
