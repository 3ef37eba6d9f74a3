package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/core/ports"
)

// AssetHandler serves the asset catalogue.
type AssetHandler struct {
	service ports.AssetService
}

func NewAssetHandler(service ports.AssetService) *AssetHandler {
	return &AssetHandler{service: service}
}

type createAssetRequest struct {
	Name        string `json:"name" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=returnable non-returnable"`
	Quantity    *int   `json:"quantity" validate:"required,min=0"`
	Image       string `json:"image"`
	CompanyName string `json:"companyName"`
	HREmail     string `json:"hrEmail" validate:"omitempty,email"`
}

type updateAssetRequest struct {
	Name     *string `json:"name"`
	Type     *string `json:"type"`
	Quantity *int    `json:"quantity"`
	Image    *string `json:"image"`
}

type createAssetResponse struct {
	InsertedID string        `json:"insertedId"`
	Asset      *domain.Asset `json:"asset"`
}

type updateAssetResponse struct {
	Success       bool `json:"success"`
	MatchedCount  int  `json:"matchedCount"`
	ModifiedCount int  `json:"modifiedCount"`
}

// List handles GET /assets.
//
// @Summary      List assets
// @Tags         assets
// @Produce      json
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size"
// @Param        search  query     string  false  "Case-insensitive name match"
// @Param        type    query     string  false  "returnable or non-returnable"
// @Success      200     {object}  assetPageResponse
// @Failure      400     {object}  errorResponse
// @Router       /assets [get]
func (h *AssetHandler) List(c echo.Context) error {
	q, err := bindListQuery(c)
	if err != nil {
		return err
	}
	page, err := h.service.ListAssets(c.Request().Context(), ports.AssetListFilter{
		Search:      q.Search,
		Type:        c.QueryParam("type"),
		PageRequest: q.pageRequest(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, assetPageResponse{
		Assets:     page.Items,
		Total:      page.Total,
		Page:       page.Page,
		TotalPages: page.TotalPages,
	})
}

// Get handles GET /assets/:id.
//
// @Summary      Get an asset
// @Tags         assets
// @Produce      json
// @Param        id   path      string  true  "Asset id"
// @Success      200  {object}  domain.Asset
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /assets/{id} [get]
func (h *AssetHandler) Get(c echo.Context) error {
	asset, err := h.service.GetAsset(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, asset)
}

// Create handles POST /assets.
//
// @Summary      Create an asset
// @Tags         assets
// @Accept       json
// @Produce      json
// @Param        body  body      createAssetRequest  true  "Stock line"
// @Success      201   {object}  createAssetResponse
// @Failure      400   {object}  errorResponse
// @Router       /assets [post]
func (h *AssetHandler) Create(c echo.Context) error {
	var req createAssetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	quantity := 0
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	asset, err := h.service.CreateAsset(c.Request().Context(), ports.CreateAssetInput{
		Name:        req.Name,
		Type:        req.Type,
		Quantity:    quantity,
		Image:       req.Image,
		CompanyName: req.CompanyName,
		HREmail:     req.HREmail,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, createAssetResponse{InsertedID: asset.ID, Asset: asset})
}

// Update handles PUT /assets/:id. Only the supplied fields change.
//
// @Summary      Update an asset
// @Tags         assets
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Asset id"
// @Param        body  body      updateAssetRequest  true  "Fields to change"
// @Success      200   {object}  updateAssetResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /assets/{id} [put]
func (h *AssetHandler) Update(c echo.Context) error {
	var req updateAssetRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrValidation)
	}

	patch := domain.AssetPatch{Name: req.Name, Quantity: req.Quantity, Image: req.Image}
	if req.Type != nil {
		t := domain.AssetType(*req.Type)
		patch.Type = &t
	}

	matched, modified, err := h.service.UpdateAsset(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updateAssetResponse{
		Success:       true,
		MatchedCount:  boolCount(matched),
		ModifiedCount: boolCount(modified),
	})
}

// Delete handles DELETE /assets/:id (admin only).
//
// @Summary      Delete an asset
// @Tags         assets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Asset id"
// @Success      200  {object}  deletedResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /assets/{id} [delete]
func (h *AssetHandler) Delete(c echo.Context) error {
	deleted, err := h.service.DeleteAsset(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deletedResponse{DeletedCount: boolCount(deleted)})
}
