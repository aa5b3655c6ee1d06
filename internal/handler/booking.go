package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"trike/internal/domain"
	"trike/internal/service"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	lifecycle *service.LifecycleService
	matching  *service.MatchingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(lifecycle *service.LifecycleService, matching *service.MatchingService) *BookingHandler {
	return &BookingHandler{
		lifecycle: lifecycle,
		matching:  matching,
	}
}

// CreateBookingRequest is the HTTP request body for creating a booking.
type CreateBookingRequest struct {
	CustomerID       string  `json:"customer_id"`
	CustomerName     string  `json:"customer_name"`
	Phone            string  `json:"phone"`
	PickupLat        float64 `json:"pickup_lat"`
	PickupLng        float64 `json:"pickup_lng"`
	PickupText       string  `json:"pickup_text,omitempty"`
	DropoffLat       float64 `json:"dropoff_lat"`
	DropoffLng       float64 `json:"dropoff_lng"`
	DropoffText      string  `json:"dropoff_text,omitempty"`
	TripType         string  `json:"trip_type,omitempty"` // REGULAR, SPECIAL
	DistanceKm       float64 `json:"distance_km"`
	DriverToPickupKm float64 `json:"driver_to_pickup_km,omitempty"`
	Discount         string  `json:"discount,omitempty"` // STUDENT, PWD, SENIOR
	DiscountVerified bool    `json:"discount_verified,omitempty"`
}

// CancelBookingRequest is the HTTP request body for cancelling a booking.
type CancelBookingRequest struct {
	ActorID   string `json:"actor_id"`
	ActorRole string `json:"actor_role"` // CUSTOMER, DRIVER, ADMIN
	Reason    string `json:"reason,omitempty"`
}

// DriverActionRequest is the HTTP request body for driver-initiated
// booking transitions.
type DriverActionRequest struct {
	DriverID string `json:"driver_id"`
}

// BookingResponse is the HTTP representation of a booking.
type BookingResponse struct {
	ID               string  `json:"id"`
	CustomerID       string  `json:"customer_id"`
	CustomerName     string  `json:"customer_name"`
	Phone            string  `json:"phone"`
	PickupLat        float64 `json:"pickup_lat"`
	PickupLng        float64 `json:"pickup_lng"`
	PickupText       string  `json:"pickup_text,omitempty"`
	DropoffLat       float64 `json:"dropoff_lat"`
	DropoffLng       float64 `json:"dropoff_lng"`
	DropoffText      string  `json:"dropoff_text,omitempty"`
	TripType         string  `json:"trip_type"`
	DistanceKm       float64 `json:"distance_km"`
	Fare             float64 `json:"fare"`
	Status           string  `json:"status"`
	DriverID         string  `json:"driver_id,omitempty"`
	VehicleID        string  `json:"vehicle_id,omitempty"`
	VerificationCode string  `json:"verification_code,omitempty"`
	ArrivedAtPickup  bool    `json:"arrived_at_pickup"`
	NoShow           bool    `json:"no_show"`
	CreatedAt        string  `json:"created_at"`
	CancelledAt      string  `json:"cancelled_at,omitempty"`
	CancelledBy      string  `json:"cancelled_by,omitempty"`
	CancelReason     string  `json:"cancel_reason,omitempty"`
}

// CreateBookingResponse is the HTTP response for creating a booking.
// It carries the match outcome alongside the booking itself.
type CreateBookingResponse struct {
	Booking        BookingResponse `json:"booking"`
	DriverAssigned bool            `json:"driver_assigned"`
	DriverID       string          `json:"driver_id,omitempty"`
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	resp := BookingResponse{
		ID:               b.ID,
		CustomerID:       b.CustomerID,
		CustomerName:     b.CustomerName,
		Phone:            b.Phone,
		PickupLat:        b.PickupLat,
		PickupLng:        b.PickupLng,
		PickupText:       b.PickupText,
		DropoffLat:       b.DropoffLat,
		DropoffLng:       b.DropoffLng,
		DropoffText:      b.DropoffText,
		TripType:         string(b.TripType),
		DistanceKm:       b.DistanceKm,
		Fare:             b.Fare,
		Status:           string(b.Status),
		DriverID:         b.DriverID,
		VehicleID:        b.VehicleID,
		VerificationCode: b.VerificationCode,
		ArrivedAtPickup:  b.ArrivedAtPickup,
		NoShow:           b.NoShow,
		CreatedAt:        b.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if !b.CancelledAt.IsZero() {
		resp.CancelledAt = b.CancelledAt.Format("2006-01-02T15:04:05Z07:00")
		resp.CancelledBy = b.CancelledBy
		resp.CancelReason = b.CancelReason
	}
	return resp
}

// CreateBooking handles POST /v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	tripType := domain.TripType(req.TripType)
	if tripType == "" {
		tripType = domain.TripTypeRegular
	}

	booking, err := h.lifecycle.Create(c.Request.Context(), service.CreateBookingRequest{
		CustomerID:       req.CustomerID,
		CustomerName:     req.CustomerName,
		Phone:            req.Phone,
		PickupLat:        req.PickupLat,
		PickupLng:        req.PickupLng,
		PickupText:       req.PickupText,
		DropoffLat:       req.DropoffLat,
		DropoffLng:       req.DropoffLng,
		DropoffText:      req.DropoffText,
		TripType:         tripType,
		DistanceKm:       req.DistanceKm,
		DriverToPickupKm: req.DriverToPickupKm,
		Discount:         domain.DiscountClass(req.Discount),
		DiscountVerified: req.DiscountVerified,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	// Try to match immediately. A busy queue lock just leaves the
	// booking PENDING for the next join or admin nudge.
	result, err := h.matching.AttemptMatch(c.Request.Context(), booking.ID)
	if err == nil && result.Matched {
		booking = result.Booking
	}

	respondJSON(c, http.StatusCreated, CreateBookingResponse{
		Booking:        toBookingResponse(booking),
		DriverAssigned: booking.DriverID != "",
		DriverID:       booking.DriverID,
	})
}

// GetBooking handles GET /v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.lifecycle.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// GetAll handles GET /v1/bookings
func (h *BookingHandler) GetAll(c *gin.Context) {
	bookings, err := h.lifecycle.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		response = append(response, toBookingResponse(b))
	}

	respondJSON(c, http.StatusOK, response)
}

// CancelBooking handles POST /v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.lifecycle.Cancel(c.Request.Context(), service.CancelRequest{
		BookingID: c.Param("id"),
		ActorID:   req.ActorID,
		Role:      domain.ActorRole(req.ActorRole),
		Reason:    req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// MarkArrived handles POST /v1/bookings/:id/arrived
func (h *BookingHandler) MarkArrived(c *gin.Context) {
	h.driverAction(c, h.lifecycle.MarkArrived)
}

// StartTrip handles POST /v1/bookings/:id/start
func (h *BookingHandler) StartTrip(c *gin.Context) {
	h.driverAction(c, h.lifecycle.StartTrip)
}

// CompleteTrip handles POST /v1/bookings/:id/complete
func (h *BookingHandler) CompleteTrip(c *gin.Context) {
	h.driverAction(c, h.lifecycle.Complete)
}

// ReportNoShow handles POST /v1/bookings/:id/no-show
func (h *BookingHandler) ReportNoShow(c *gin.Context) {
	h.driverAction(c, h.lifecycle.ReportNoShow)
}

// Rematch handles POST /v1/bookings/:id/match
func (h *BookingHandler) Rematch(c *gin.Context) {
	result, err := h.matching.AttemptMatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if !result.Matched {
		respondJSON(c, http.StatusOK, gin.H{"matched": false})
		return
	}

	respondJSON(c, http.StatusOK, CreateBookingResponse{
		Booking:        toBookingResponse(result.Booking),
		DriverAssigned: true,
		DriverID:       result.DriverID,
	})
}

func (h *BookingHandler) driverAction(c *gin.Context, fn func(ctx context.Context, bookingID, driverID string) (*domain.Booking, error)) {
	var req DriverActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := fn(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}
