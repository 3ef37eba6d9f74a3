package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/assetverse/asset-management/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"success": false, "message": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Success: false, Message: msg})
	}
}

// statusFor maps a domain error to its HTTP status. ok is false for errors
// the API does not know about.
func statusFor(err error) (code int, ok bool) {
	switch {
	// Validation first: a wrapped ErrValidation may also carry another cause.
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, true
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrHRNotFound),
		errors.Is(err, domain.ErrAssetNotFound),
		errors.Is(err, domain.ErrRequestNotFound),
		errors.Is(err, domain.ErrAffiliationNotFound),
		errors.Is(err, domain.ErrPackageNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, domain.ErrStatusConflict),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, true
	case errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrInvalidHRCode):
		return http.StatusForbidden, true
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusBadRequest, true
	case errors.Is(err, domain.ErrPaymentNotCompleted):
		return http.StatusPaymentRequired, true
	case errors.Is(err, domain.ErrUpstreamPayment):
		return http.StatusBadGateway, true
	case errors.Is(err, domain.ErrLockBusy):
		return http.StatusServiceUnavailable, true
	}
	return 0, false
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, auth middleware, ...)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	if code, ok := statusFor(err); ok {
		if code < http.StatusInternalServerError {
			return code, err.Error()
		}
		// Dependency failures keep the upstream detail in the log only.
		log.Warn().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("dependency error")
		switch {
		case errors.Is(err, domain.ErrUpstreamPayment):
			return code, domain.ErrUpstreamPayment.Error()
		default:
			return code, domain.ErrLockBusy.Error()
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
