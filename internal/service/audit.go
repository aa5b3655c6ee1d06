package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"trike/internal/domain"
	"trike/internal/repository"
)

// AuditService appends immutable records for every admin-facing mutation.
// Appends are best-effort relative to the mutation itself: a failed write
// is logged, never propagated, and the trail records attempts regardless
// of whether the underlying mutation was accepted.
type AuditService struct {
	auditRepo repository.AuditRepository
	logger    *slog.Logger
}

// NewAuditService creates a new AuditService.
func NewAuditService(auditRepo repository.AuditRepository, logger *slog.Logger) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Record appends one audit record. Before and after are snapshotted as
// JSON; marshal failures fall back to an empty object.
func (s *AuditService) Record(ctx context.Context, module, action, adminID, targetID string, before, after any) {
	record := &domain.AuditRecord{
		ID:        uuid.New().String(),
		Module:    module,
		Action:    action,
		AdminID:   adminID,
		TargetID:  targetID,
		Before:    marshalSnapshot(before),
		After:     marshalSnapshot(after),
		CreatedAt: time.Now(),
	}

	if err := s.auditRepo.Append(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "audit append failed",
			"module", module,
			"action", action,
			"target_id", targetID,
			"error", err,
		)
	}
}

// List returns recent audit records, newest first.
func (s *AuditService) List(ctx context.Context, module string, limit int) ([]*domain.AuditRecord, error) {
	return s.auditRepo.List(ctx, module, limit)
}

func marshalSnapshot(v any) string {
	if v == nil {
		return "{}"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}
