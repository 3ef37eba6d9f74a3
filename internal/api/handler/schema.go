package handler

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/core/ports"
)

// successResponse is the plain acknowledgement body.
type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type insertedResponse struct {
	InsertedID string `json:"insertedId"`
}

type deletedResponse struct {
	DeletedCount int `json:"deletedCount"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// --- Paginated listings ---

type userPageResponse struct {
	Users      []*domain.User `json:"users"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
}

type assetPageResponse struct {
	Assets     []*domain.Asset `json:"assets"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	TotalPages int             `json:"totalPages"`
}

type requestPageResponse struct {
	Requests   []*domain.AssetRequest `json:"requests"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	TotalPages int                    `json:"totalPages"`
}

type employeeListResponse struct {
	Employees []domain.EmployeeView `json:"employees"`
	Total     int64                 `json:"total"`
}

// listQuery is the page/limit/search triple shared by listings.
type listQuery struct {
	Page   int
	Limit  int
	Search string
}

// bindListQuery reads page, limit and search; absent values fall back to
// the port defaults.
func bindListQuery(c echo.Context) (listQuery, error) {
	var q listQuery
	err := echo.QueryParamsBinder(c).
		Int("page", &q.Page).
		Int("limit", &q.Limit).
		String("search", &q.Search).
		BindError()
	if err != nil {
		return q, fmt.Errorf("%w: page and limit must be integers", domain.ErrValidation)
	}
	return q, nil
}

func (q listQuery) pageRequest() ports.PageRequest {
	return ports.PageRequest{Page: q.Page, Limit: q.Limit}.Normalize()
}

func boolCount(b bool) int {
	if b {
		return 1
	}
	return 0
}
