package domain

import "time"

// AuditRecord is one immutable entry in the admin audit trail.
type AuditRecord struct {
	ID        string
	Module    string // e.g. "fares", "drivers"
	Action    string // e.g. "tariff_update", "approve"
	AdminID   string
	TargetID  string
	Before    string // JSON snapshot prior to the mutation
	After     string // JSON snapshot after the mutation
	CreatedAt time.Time
}
