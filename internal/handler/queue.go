package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trike/internal/domain"
	"trike/internal/service"
)

// QueueHandler handles HTTP requests for the driver queue.
type QueueHandler struct {
	queueService *service.QueueService
}

// NewQueueHandler creates a new QueueHandler.
func NewQueueHandler(queueService *service.QueueService) *QueueHandler {
	return &QueueHandler{queueService: queueService}
}

// JoinQueueRequest is the HTTP request body for joining the queue.
type JoinQueueRequest struct {
	DriverID  string `json:"driver_id"`
	VehicleID string `json:"vehicle_id,omitempty"`
}

// LeaveQueueRequest is the HTTP request body for leaving the queue.
type LeaveQueueRequest struct {
	DriverID string `json:"driver_id"`
}

// QueueEntryResponse is the HTTP representation of a queue entry.
type QueueEntryResponse struct {
	DriverID  string `json:"driver_id"`
	VehicleID string `json:"vehicle_id"`
	Position  int64  `json:"position"`
	PaidToday bool   `json:"paid_today"`
	JoinedAt  string `json:"joined_at"`
}

func toQueueEntryResponse(e *domain.QueueEntry) QueueEntryResponse {
	return QueueEntryResponse{
		DriverID:  e.DriverID,
		VehicleID: e.VehicleID,
		Position:  e.Position,
		PaidToday: e.PaidToday,
		JoinedAt:  e.JoinedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Join handles POST /v1/queue/join
func (h *QueueHandler) Join(c *gin.Context) {
	var req JoinQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	entry, err := h.queueService.Join(c.Request.Context(), req.DriverID, req.VehicleID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toQueueEntryResponse(entry))
}

// Leave handles POST /v1/queue/leave
func (h *QueueHandler) Leave(c *gin.Context) {
	var req LeaveQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.queueService.Leave(c.Request.Context(), req.DriverID); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"left": true})
}

// Snapshot handles GET /v1/queue
func (h *QueueHandler) Snapshot(c *gin.Context) {
	entries, err := h.queueService.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]QueueEntryResponse, 0, len(entries))
	for _, e := range entries {
		response = append(response, toQueueEntryResponse(e))
	}

	respondJSON(c, http.StatusOK, response)
}
