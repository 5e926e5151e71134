package repository

import (
	"context"

	"github.com/vincent-24/GlassBallots-sub001/internal/membership/domain"
)

// Repository defines persistence for memberships.
type Repository interface {
	GetByUserAndOrg(ctx context.Context, userID, orgID int64) (*domain.Membership, error)
	// GetApprovedMembership returns the membership only when it exists and is approved; nil otherwise.
	GetApprovedMembership(ctx context.Context, userID, orgID int64) (*domain.Membership, error)
	Create(ctx context.Context, m *domain.Membership) error
}
