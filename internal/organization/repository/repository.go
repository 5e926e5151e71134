package repository

import (
	"context"

	"github.com/vincent-24/GlassBallots-sub001/internal/organization/domain"
)

// Repository defines persistence for organizations.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.Org, error)
	Create(ctx context.Context, o *domain.Org) error
}
