package repository

import (
	"context"

	"trike/internal/domain"
)

// AuditRepository defines the append-only admin audit trail.
type AuditRepository interface {
	// Append stores one immutable audit record.
	Append(ctx context.Context, record *domain.AuditRecord) error

	// List returns recent records, newest first. An empty module matches
	// all modules.
	List(ctx context.Context, module string, limit int) ([]*domain.AuditRecord, error)
}
