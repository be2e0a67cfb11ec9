package v1handler

import (
	"errors"
	"net/http"

	"leadscout/pkg/logger"
	"leadscout/pkg/serrors"

	"github.com/go-chi/render"
	"go.uber.org/zap"
)

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusFor maps a semantic error kind to its HTTP status. Quota exhaustion
// maps to 402 since the remedy is a plan upgrade, not a retry.
func statusFor(err error) int {
	switch {
	case errors.Is(err, serrors.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, serrors.ErrUnauthorized), errors.Is(err, serrors.ErrSignatureInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, serrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, serrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, serrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, serrors.ErrQuotaExceeded):
		return http.StatusPaymentRequired
	case errors.Is(err, serrors.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, serrors.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, serrors.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// renderError writes the JSON error response for err. Internal errors are
// logged and their details withheld from the client.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error(r.Context(), "request failed", zap.Error(err))
		msg = "internal server error"
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: msg})
}
