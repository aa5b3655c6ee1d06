package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"trike/internal/repository"
	"trike/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidCustomerID),
		errors.Is(err, service.ErrInvalidPhone),
		errors.Is(err, service.ErrInvalidBookingID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidDistance),
		errors.Is(err, service.ErrInvalidTripType),
		errors.Is(err, service.ErrInvalidAmount):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, repository.ErrStaleState),
		errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, service.ErrCustomerHasActiveBooking),
		errors.Is(err, service.ErrBookingNotCancellable),
		errors.Is(err, service.ErrNotArrivedAtPickup),
		errors.Is(err, service.ErrAlreadyQueued):
		return http.StatusConflict

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrActorNotAllowed),
		errors.Is(err, service.ErrNotEligible),
		errors.Is(err, service.ErrDriverNotApproved):
		return http.StatusForbidden

	// Service unavailable
	case errors.Is(err, service.ErrQueueBusy):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
