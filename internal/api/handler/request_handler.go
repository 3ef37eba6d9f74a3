package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/core/ports"
)

// RequestHandler drives asset requests through their lifecycle.
type RequestHandler struct {
	service ports.RequestService
}

func NewRequestHandler(service ports.RequestService) *RequestHandler {
	return &RequestHandler{service: service}
}

type createAssetRequestRequest struct {
	AssetID  string `json:"assetId" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
	UserName string `json:"userName"`
	Email    string `json:"email" validate:"required,email"`
	Reason   string `json:"reason"`
}

type approveRequest struct {
	HREmail        string `json:"hrEmail" validate:"required,email"`
	EmployeeEmail  string `json:"employeeEmail" validate:"required,email"`
	AssetID        string `json:"assetId" validate:"required"`
	QuantityNeeded int    `json:"quantityNeeded" validate:"gt=0"`
}

type approveResponse struct {
	Success            bool                 `json:"success"`
	Status             domain.RequestStatus `json:"status"`
	AffiliationID      string               `json:"affiliationId,omitempty"`
	AffiliationCreated bool                 `json:"affiliationCreated"`
}

type returnResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	ModifiedCount int    `json:"modifiedCount"`
}

// List handles GET /asset_requests, newest first.
//
// @Summary      List asset requests
// @Tags         asset_requests
// @Produce      json
// @Param        email  query     string  false  "Requester email"
// @Param        page   query     int     false  "Page (1-based)"
// @Param        limit  query     int     false  "Page size"
// @Success      200    {object}  requestPageResponse
// @Failure      400    {object}  errorResponse
// @Router       /asset_requests [get]
func (h *RequestHandler) List(c echo.Context) error {
	q, err := bindListQuery(c)
	if err != nil {
		return err
	}
	page, err := h.service.ListRequests(c.Request().Context(), ports.RequestListFilter{
		Email:       c.QueryParam("email"),
		PageRequest: q.pageRequest(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, requestPageResponse{
		Requests:   page.Items,
		Total:      page.Total,
		Page:       page.Page,
		TotalPages: page.TotalPages,
	})
}

// Create handles POST /asset_requests.
//
// @Summary      Request an asset
// @Tags         asset_requests
// @Accept       json
// @Produce      json
// @Param        body  body      createAssetRequestRequest  true  "Request"
// @Success      201   {object}  insertedResponse
// @Failure      400   {object}  errorResponse
// @Router       /asset_requests [post]
func (h *RequestHandler) Create(c echo.Context) error {
	var req createAssetRequestRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	id, err := h.service.CreateRequest(c.Request().Context(), ports.CreateRequestInput{
		AssetID:  req.AssetID,
		Quantity: req.Quantity,
		UserName: req.UserName,
		Email:    req.Email,
		Reason:   req.Reason,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, insertedResponse{InsertedID: id})
}

// Approve handles PUT /asset_requests/:id/approve.
//
// @Summary      Approve a pending request
// @Description  Affiliates the employee with the HR's company when needed and removes quantityNeeded from stock.
// @Tags         asset_requests
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Request id"
// @Param        body  body      approveRequest  true  "Approval"
// @Success      200   {object}  approveResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /asset_requests/{id}/approve [put]
func (h *RequestHandler) Approve(c echo.Context) error {
	var req approveRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.service.ApproveRequest(c.Request().Context(), ports.ApproveRequestInput{
		RequestID:      c.Param("id"),
		HREmail:        req.HREmail,
		EmployeeEmail:  req.EmployeeEmail,
		AssetID:        req.AssetID,
		QuantityNeeded: req.QuantityNeeded,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, approveResponse{
		Success:            true,
		Status:             result.Request.Status,
		AffiliationID:      result.AffiliationID,
		AffiliationCreated: result.AffiliationCreated,
	})
}

// Reject handles PUT /asset_requests/:id/reject.
//
// @Summary      Reject a pending request
// @Tags         asset_requests
// @Produce      json
// @Param        id   path      string  true  "Request id"
// @Success      200  {object}  successResponse
// @Failure      404  {object}  errorResponse
// @Router       /asset_requests/{id}/reject [put]
func (h *RequestHandler) Reject(c echo.Context) error {
	if err := h.service.RejectRequest(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true, Message: "Request rejected"})
}

// Return handles PUT /asset_requests/:id/return. A second return reports
// success=false and leaves stock unchanged.
//
// @Summary      Return an approved asset
// @Tags         asset_requests
// @Produce      json
// @Param        id   path      string  true  "Request id"
// @Success      200  {object}  returnResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /asset_requests/{id}/return [put]
func (h *RequestHandler) Return(c echo.Context) error {
	result, err := h.service.ReturnRequest(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if result.AlreadyReturned {
		return c.JSON(http.StatusOK, returnResponse{Success: false, Message: "Asset already returned"})
	}
	return c.JSON(http.StatusOK, returnResponse{Success: true, ModifiedCount: 1})
}

// Delete handles DELETE /asset_requests/:id (admin only). Stock is not
// touched.
//
// @Summary      Delete an asset request
// @Tags         asset_requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request id"
// @Success      200  {object}  deletedResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /asset_requests/{id} [delete]
func (h *RequestHandler) Delete(c echo.Context) error {
	deleted, err := h.service.DeleteRequest(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deletedResponse{DeletedCount: boolCount(deleted)})
}
