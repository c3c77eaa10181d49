package http

import (
	"errors"
	"net/http"

	"cryptowallet/internal/domain/errs"
)

// StatusFor maps an error from the services to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrInvalidAmount), errors.Is(err, errs.ErrInvalidOperationKind):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrUnknownSymbol), errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrInsufficientQuantity):
		return http.StatusConflict
	case errs.IsNetwork(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorResponse builds the body for err at status.
func NewErrorResponse(status int, err error) ErrorResponse {
	return ErrorResponse{Error: http.StatusText(status), Message: err.Error()}
}
