package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trike/internal/service"
)

// ContributionHandler handles HTTP requests for dues contributions.
type ContributionHandler struct {
	contributionService *service.ContributionService
}

// NewContributionHandler creates a new ContributionHandler.
func NewContributionHandler(contributionService *service.ContributionService) *ContributionHandler {
	return &ContributionHandler{contributionService: contributionService}
}

// RecordContributionRequest is the HTTP request body for recording a
// dues payment.
type RecordContributionRequest struct {
	DriverID string  `json:"driver_id"`
	Amount   float64 `json:"amount"`
}

// ContributionResponse is the HTTP representation of one payment.
type ContributionResponse struct {
	ID       string  `json:"id"`
	DriverID string  `json:"driver_id"`
	Amount   float64 `json:"amount"`
	PaidAt   string  `json:"paid_at"`
}

// SummaryResponse is the HTTP representation of a contribution summary.
type SummaryResponse struct {
	DriverID      string  `json:"driver_id"`
	Total         float64 `json:"total"`
	Today         float64 `json:"today"`
	ThisWeek      float64 `json:"this_week"`
	ThisMonth     float64 `json:"this_month"`
	Count         int     `json:"count"`
	StreakDays    int     `json:"streak_days"`
	Average30Days float64 `json:"average_30_days"`
}

// Record handles POST /v1/contributions
func (h *ContributionHandler) Record(c *gin.Context) {
	var req RecordContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	contribution, err := h.contributionService.Record(c.Request.Context(), req.DriverID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, ContributionResponse{
		ID:       contribution.ID,
		DriverID: contribution.DriverID,
		Amount:   contribution.Amount,
		PaidAt:   contribution.PaidAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// Summary handles GET /v1/contributions/:driverId/summary
func (h *ContributionHandler) Summary(c *gin.Context) {
	summary, err := h.contributionService.Summary(c.Request.Context(), c.Param("driverId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, SummaryResponse{
		DriverID:      summary.DriverID,
		Total:         summary.Total,
		Today:         summary.Today,
		ThisWeek:      summary.ThisWeek,
		ThisMonth:     summary.ThisMonth,
		Count:         summary.Count,
		StreakDays:    summary.StreakDays,
		Average30Days: summary.Average30Days,
	})
}
