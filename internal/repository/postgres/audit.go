package postgres

import (
	"context"
	"database/sql"

	"trike/internal/domain"
)

// AuditRepository is a PostgreSQL implementation of repository.AuditRepository.
type AuditRepository struct {
	q Querier
}

// NewAuditRepository creates a new PostgreSQL audit repository.
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{q: db}
}

// Append stores one immutable audit record.
func (r *AuditRepository) Append(ctx context.Context, record *domain.AuditRecord) error {
	query := `
		INSERT INTO audit_records (id, module, action, admin_id, target_id, before, after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		record.ID,
		record.Module,
		record.Action,
		record.AdminID,
		record.TargetID,
		record.Before,
		record.After,
		record.CreatedAt,
	)

	return err
}

// List returns recent records, newest first. An empty module matches all.
func (r *AuditRepository) List(ctx context.Context, module string, limit int) ([]*domain.AuditRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, module, action, admin_id, target_id, before, after, created_at
		FROM audit_records
		WHERE ($1 = '' OR module = $1)
		ORDER BY created_at DESC LIMIT $2
	`

	rows, err := r.q.QueryContext(ctx, query, module, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.AuditRecord
	for rows.Next() {
		var rec domain.AuditRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Module,
			&rec.Action,
			&rec.AdminID,
			&rec.TargetID,
			&rec.Before,
			&rec.After,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
