package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/assetverse/asset-management/internal/core/ports"
)

// AffiliationHandler serves the HR-scoped employee routes. Every route
// expects the HREmail middleware.
type AffiliationHandler struct {
	service ports.AffiliationService
}

func NewAffiliationHandler(service ports.AffiliationService) *AffiliationHandler {
	return &AffiliationHandler{service: service}
}

type addAffiliationResponse struct {
	Success       bool   `json:"success"`
	AffiliationID string `json:"affiliationId"`
	Created       bool   `json:"created"`
}

// ListEmployees handles GET /hr/employees.
//
// @Summary      List the HR company's employees
// @Tags         affiliations
// @Produce      json
// @Param        hremail  header    string  true   "Acting HR email"
// @Param        page     query     int     false  "Page (1-based)"
// @Param        limit    query     int     false  "Page size"
// @Param        search   query     string  false  "Employee email match"
// @Success      200      {object}  employeeListResponse
// @Failure      400      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /hr/employees [get]
func (h *AffiliationHandler) ListEmployees(c echo.Context) error {
	hrEmail, err := ctxHREmail(c)
	if err != nil {
		return err
	}
	q, err := bindListQuery(c)
	if err != nil {
		return err
	}

	page, err := h.service.ListEmployees(c.Request().Context(), ports.ListEmployeesInput{
		HREmail:     hrEmail,
		Search:      q.Search,
		PageRequest: q.pageRequest(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, employeeListResponse{Employees: page.Items, Total: page.Total})
}

// Add handles POST /affiliations/:id, affiliating user :id with the HR's
// company under its package limit.
//
// @Summary      Affiliate an employee
// @Tags         affiliations
// @Produce      json
// @Param        hremail  header    string  true  "Acting HR email"
// @Param        id       path      string  true  "Employee user id"
// @Success      201      {object}  addAffiliationResponse
// @Success      200      {object}  addAffiliationResponse
// @Failure      403      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /affiliations/{id} [post]
func (h *AffiliationHandler) Add(c echo.Context) error {
	hrEmail, err := ctxHREmail(c)
	if err != nil {
		return err
	}

	id, created, err := h.service.AddEmployee(c.Request().Context(), c.Param("id"), hrEmail)
	if err != nil {
		return err
	}
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	return c.JSON(code, addAffiliationResponse{Success: true, AffiliationID: id, Created: created})
}

// Remove handles DELETE /affiliations/:affiliationId.
//
// @Summary      Remove an employee from the HR's company
// @Tags         affiliations
// @Produce      json
// @Param        hremail        header    string  true  "Acting HR email"
// @Param        affiliationId  path      string  true  "Affiliation id"
// @Success      200            {object}  successResponse
// @Failure      400            {object}  errorResponse
// @Failure      404            {object}  errorResponse
// @Router       /affiliations/{affiliationId} [delete]
func (h *AffiliationHandler) Remove(c echo.Context) error {
	hrEmail, err := ctxHREmail(c)
	if err != nil {
		return err
	}
	if err := h.service.RemoveAffiliation(c.Request().Context(), c.Param("affiliationId"), hrEmail); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}
