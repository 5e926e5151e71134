package repository

import (
	"context"

	"github.com/vincent-24/GlassBallots-sub001/internal/proposal/domain"
)

// Repository defines persistence for proposals.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.Proposal, error)
	// List returns proposals newest first. A nil orgID lists only proposals without an organization.
	List(ctx context.Context, orgID *int64) ([]*domain.Proposal, error)
	Create(ctx context.Context, p *domain.Proposal) error
	UpdateStatus(ctx context.Context, id int64, status domain.Status) error
}
