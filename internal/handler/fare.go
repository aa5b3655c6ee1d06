package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trike/internal/domain"
	"trike/internal/service"
)

// FareHandler handles HTTP requests for fare quotes and tariffs.
type FareHandler struct {
	fareService *service.FareService
}

// NewFareHandler creates a new FareHandler.
func NewFareHandler(fareService *service.FareService) *FareHandler {
	return &FareHandler{fareService: fareService}
}

// QuoteRequest is the HTTP request body for a fare preview.
type QuoteRequest struct {
	TripType         string  `json:"trip_type,omitempty"` // REGULAR, SPECIAL
	DistanceKm       float64 `json:"distance_km"`
	DriverToPickupKm float64 `json:"driver_to_pickup_km,omitempty"`
	Discount         string  `json:"discount,omitempty"`
	DiscountVerified bool    `json:"discount_verified,omitempty"`
}

// QuoteResponse is the HTTP representation of a fare breakdown.
type QuoteResponse struct {
	TripType            string  `json:"trip_type"`
	BaseFare            float64 `json:"base_fare"`
	DistanceCharge      float64 `json:"distance_charge"`
	RepositionSurcharge float64 `json:"reposition_surcharge"`
	ConvenienceFee      float64 `json:"convenience_fee"`
	Total               float64 `json:"total"`
}

// UpdateTariffRequest is the HTTP request body for an admin tariff update.
type UpdateTariffRequest struct {
	BaseFare  float64 `json:"base_fare"`
	PerKmRate float64 `json:"per_km_rate"`
	Reason    string  `json:"reason,omitempty"`
	AdminID   string  `json:"admin_id"`
}

// TariffResponse is the HTTP representation of a tariff config.
type TariffResponse struct {
	Tier      string  `json:"tier"`
	BaseFare  float64 `json:"base_fare"`
	PerKmRate float64 `json:"per_km_rate"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

// FareChangeResponse is the HTTP representation of one tariff update.
type FareChangeResponse struct {
	ID           string  `json:"id"`
	Tier         string  `json:"tier"`
	OldBaseFare  float64 `json:"old_base_fare"`
	OldPerKmRate float64 `json:"old_per_km_rate"`
	NewBaseFare  float64 `json:"new_base_fare"`
	NewPerKmRate float64 `json:"new_per_km_rate"`
	Reason       string  `json:"reason,omitempty"`
	AdminID      string  `json:"admin_id"`
	ChangedAt    string  `json:"changed_at"`
}

// Quote handles POST /v1/fares/quote
func (h *FareHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	tripType := domain.TripType(req.TripType)
	if tripType == "" {
		tripType = domain.TripTypeRegular
	}

	quote, err := h.fareService.Quote(c.Request.Context(), service.QuoteRequest{
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

	respondJSON(c, http.StatusOK, QuoteResponse{
		TripType:            string(quote.Tier),
		BaseFare:            quote.BaseFare,
		DistanceCharge:      quote.DistanceCharge,
		RepositionSurcharge: quote.RepositionSurcharge,
		ConvenienceFee:      quote.ConvenienceFee,
		Total:               quote.Total,
	})
}

// UpdateTariff handles POST /v1/fares/:tier
func (h *FareHandler) UpdateTariff(c *gin.Context) {
	var req UpdateTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	config, err := h.fareService.UpdateTariff(c.Request.Context(), service.UpdateTariffRequest{
		Tier:      domain.TripType(c.Param("tier")),
		BaseFare:  req.BaseFare,
		PerKmRate: req.PerKmRate,
		Reason:    req.Reason,
		AdminID:   req.AdminID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTariffResponse(config))
}

// GetTariffs handles GET /v1/fares
func (h *FareHandler) GetTariffs(c *gin.Context) {
	configs, err := h.fareService.Tariffs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TariffResponse, 0, len(configs))
	for _, cfg := range configs {
		response = append(response, toTariffResponse(cfg))
	}

	respondJSON(c, http.StatusOK, response)
}

// History handles GET /v1/fares/:tier/history
func (h *FareHandler) History(c *gin.Context) {
	changes, err := h.fareService.History(c.Request.Context(), domain.TripType(c.Param("tier")))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]FareChangeResponse, 0, len(changes))
	for _, ch := range changes {
		response = append(response, FareChangeResponse{
			ID:           ch.ID,
			Tier:         string(ch.Tier),
			OldBaseFare:  ch.OldBaseFare,
			OldPerKmRate: ch.OldPerKmRate,
			NewBaseFare:  ch.NewBaseFare,
			NewPerKmRate: ch.NewPerKmRate,
			Reason:       ch.Reason,
			AdminID:      ch.AdminID,
			ChangedAt:    ch.ChangedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	respondJSON(c, http.StatusOK, response)
}

func toTariffResponse(cfg *domain.TariffConfig) TariffResponse {
	resp := TariffResponse{
		Tier:      string(cfg.Tier),
		BaseFare:  cfg.BaseFare,
		PerKmRate: cfg.PerKmRate,
	}
	if !cfg.UpdatedAt.IsZero() {
		resp.UpdatedAt = cfg.UpdatedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}
