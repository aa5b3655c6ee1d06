package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"trike/internal/domain"
	"trike/internal/service"
)

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	driverService *service.DriverService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService) *DriverHandler {
	return &DriverHandler{driverService: driverService}
}

// RegisterDriverRequest is the HTTP request body for registering a driver.
type RegisterDriverRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	VehicleID string `json:"vehicle_id"`
}

// AdminActionRequest is the HTTP request body for audited admin actions.
type AdminActionRequest struct {
	AdminID string `json:"admin_id"`
}

// ReassignVehicleRequest is the HTTP request body for reassigning a
// driver's tricycle.
type ReassignVehicleRequest struct {
	AdminID   string `json:"admin_id"`
	VehicleID string `json:"vehicle_id"`
}

// DriverResponse is the HTTP representation of a driver.
type DriverResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	VehicleID string `json:"vehicle_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func toDriverResponse(d *domain.Driver) DriverResponse {
	return DriverResponse{
		ID:        d.ID,
		Name:      d.Name,
		Phone:     d.Phone,
		VehicleID: d.VehicleID,
		Status:    string(d.Status),
		CreatedAt: d.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Register handles POST /v1/drivers/register
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.driverService.Register(c.Request.Context(), service.RegisterDriverRequest{
		Name:      req.Name,
		Phone:     req.Phone,
		VehicleID: req.VehicleID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toDriverResponse(driver))
}

// Approve handles POST /v1/drivers/:id/approve
func (h *DriverHandler) Approve(c *gin.Context) {
	h.adminStatusAction(c, h.driverService.Approve)
}

// Reject handles POST /v1/drivers/:id/reject
func (h *DriverHandler) Reject(c *gin.Context) {
	h.adminStatusAction(c, h.driverService.Reject)
}

// ReassignVehicle handles POST /v1/drivers/:id/vehicle
func (h *DriverHandler) ReassignVehicle(c *gin.Context) {
	var req ReassignVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.driverService.ReassignVehicle(c.Request.Context(), c.Param("id"), req.VehicleID, req.AdminID); err != nil {
		respondError(c, err)
		return
	}

	driver, err := h.driverService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}

// GetDriver handles GET /v1/drivers/:id
func (h *DriverHandler) GetDriver(c *gin.Context) {
	driver, err := h.driverService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}

// GetAll handles GET /v1/drivers
func (h *DriverHandler) GetAll(c *gin.Context) {
	drivers, err := h.driverService.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DriverResponse, 0, len(drivers))
	for _, d := range drivers {
		response = append(response, toDriverResponse(d))
	}

	respondJSON(c, http.StatusOK, response)
}

func (h *DriverHandler) adminStatusAction(c *gin.Context, fn func(ctx context.Context, driverID, adminID string) error) {
	var req AdminActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := fn(c.Request.Context(), c.Param("id"), req.AdminID); err != nil {
		respondError(c, err)
		return
	}

	driver, err := h.driverService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}
