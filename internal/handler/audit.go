package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"trike/internal/service"
)

// AuditHandler handles HTTP requests for the admin audit trail.
type AuditHandler struct {
	auditService *service.AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// AuditRecordResponse is the HTTP representation of one audit entry.
type AuditRecordResponse struct {
	ID        string `json:"id"`
	Module    string `json:"module"`
	Action    string `json:"action"`
	AdminID   string `json:"admin_id"`
	TargetID  string `json:"target_id"`
	Before    string `json:"before,omitempty"`
	After     string `json:"after,omitempty"`
	CreatedAt string `json:"created_at"`
}

// List handles GET /v1/audit
func (h *AuditHandler) List(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	records, err := h.auditService.List(c.Request.Context(), c.Query("module"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]AuditRecordResponse, 0, len(records))
	for _, r := range records {
		response = append(response, AuditRecordResponse{
			ID:        r.ID,
			Module:    r.Module,
			Action:    r.Action,
			AdminID:   r.AdminID,
			TargetID:  r.TargetID,
			Before:    r.Before,
			After:     r.After,
			CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	respondJSON(c, http.StatusOK, response)
}
