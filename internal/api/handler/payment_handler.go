package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/assetverse/asset-management/internal/core/ports"
)

// noStore keeps the payment confirmation out of every cache.
const noStore = "no-store, no-cache, must-revalidate, private"

// PaymentHandler serves the package catalogue and checkout flow.
type PaymentHandler struct {
	service ports.PaymentService
}

func NewPaymentHandler(service ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

type checkoutRequest struct {
	HREmail   string `json:"hrEmail" validate:"required,email"`
	PackageID string `json:"packageId" validate:"required"`
}

type checkoutResponse struct {
	Free bool   `json:"free,omitempty"`
	URL  string `json:"url,omitempty"`
}

type confirmResponse struct {
	Success        bool   `json:"success"`
	PackageName    string `json:"packageName"`
	AlreadyApplied bool   `json:"alreadyApplied,omitempty"`
}

// ListPackages handles GET /api/packages.
//
// @Summary      List packages
// @Tags         packages
// @Produce      json
// @Success      200  {array}  domain.Package
// @Router       /api/packages [get]
func (h *PaymentHandler) ListPackages(c echo.Context) error {
	pkgs, err := h.service.ListPackages(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkgs)
}

// GetPackage handles GET /api/packages/:id.
//
// @Summary      Get a package
// @Tags         packages
// @Produce      json
// @Param        id   path      string  true  "Package id"
// @Success      200  {object}  domain.Package
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/packages/{id} [get]
func (h *PaymentHandler) GetPackage(c echo.Context) error {
	pkg, err := h.service.GetPackage(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkg)
}

// CreateCheckout handles POST /api/stripe/create-checkout-session.
//
// @Summary      Start a package checkout
// @Description  Free packages apply immediately and return free=true; paid packages return the payment page url.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        body  body      checkoutRequest  true  "Checkout"
// @Success      200   {object}  checkoutResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /api/stripe/create-checkout-session [post]
func (h *PaymentHandler) CreateCheckout(c echo.Context) error {
	var req checkoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	result, err := h.service.CreateCheckout(c.Request().Context(), req.HREmail, req.PackageID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, checkoutResponse{Free: result.Free, URL: result.URL})
}

// ConfirmCheckout handles GET /api/stripe/success.
//
// @Summary      Confirm a paid checkout
// @Tags         payments
// @Produce      json
// @Param        session_id  query     string  true  "Checkout session id"
// @Param        packageId   query     string  true  "Package id"
// @Param        hrEmail     query     string  true  "HR email"
// @Success      200         {object}  confirmResponse
// @Failure      400         {object}  errorResponse
// @Failure      402         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Failure      502         {object}  errorResponse
// @Router       /api/stripe/success [get]
func (h *PaymentHandler) ConfirmCheckout(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", noStore)

	result, err := h.service.ConfirmCheckout(c.Request().Context(), ports.ConfirmCheckoutInput{
		SessionID: c.QueryParam("session_id"),
		PackageID: c.QueryParam("packageId"),
		HREmail:   c.QueryParam("hrEmail"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, confirmResponse{
		Success:        true,
		PackageName:    result.PackageName,
		AlreadyApplied: result.AlreadyApplied,
	})
}
