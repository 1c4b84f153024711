package handlers

import (
	"errors"
	"net/http"

	"github.com/solrent/solrent/internal/models"
	pkghttp "github.com/solrent/solrent/pkg/http"
)

// writeServiceError maps service-layer errors onto HTTP responses. Lifecycle
// conflicts (already rented, not rented, toggle while rented) are 409s so
// clients can distinguish a lost race from bad input.
func writeServiceError(w http.ResponseWriter, err error) {
	if ve, ok := models.AsValidationError(err); ok {
		pkghttp.WriteValidationError(w, ve.Field, ve.Message)
		return
	}

	switch {
	case errors.Is(err, models.ErrRateLimited):
		pkghttp.WriteTooManyRequests(w, "Too many requests. Please try again later.")
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, "Authentication failed")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "You do not have access to this resource")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Resource not found")
	case errors.Is(err, models.ErrAlreadyRented):
		pkghttp.WriteConflict(w, "Listing is not available for rent")
	case errors.Is(err, models.ErrNotRented):
		pkghttp.WriteConflict(w, "Rental is not active")
	case errors.Is(err, models.ErrCannotToggleWhileRented):
		pkghttp.WriteConflict(w, "Listing cannot be toggled while rented")
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "Resource already exists")
	case errors.Is(err, models.ErrEscrowCallFailed):
		pkghttp.WriteBadGateway(w, "Escrow program call failed")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Invalid request")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
