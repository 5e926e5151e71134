package repository

import (
	"context"

	"github.com/vincent-24/GlassBallots-sub001/internal/audit/domain"
)

// Repository persists audit logs. Entries are append-only.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
}
