// Package service answers the membership questions other bounded contexts consume.
package service

import (
	"context"

	"github.com/vincent-24/GlassBallots-sub001/internal/membership/domain"
)

// MembershipRepo is the persistence the service needs.
type MembershipRepo interface {
	GetByUserAndOrg(ctx context.Context, userID, orgID int64) (*domain.Membership, error)
	GetApprovedMembership(ctx context.Context, userID, orgID int64) (*domain.Membership, error)
}

// MembershipService exposes eligibility and management checks over memberships.
type MembershipService struct {
	repo MembershipRepo
}

// NewMembershipService returns a MembershipService backed by repo.
func NewMembershipService(repo MembershipRepo) *MembershipService {
	return &MembershipService{repo: repo}
}

// GetApprovedMembership returns the user's approved membership in the org, or nil.
func (s *MembershipService) GetApprovedMembership(ctx context.Context, userID, orgID int64) (*domain.Membership, error) {
	return s.repo.GetApprovedMembership(ctx, userID, orgID)
}

// IsOwnerOrAdmin reports whether the user holds an approved owner or admin membership in the org.
func (s *MembershipService) IsOwnerOrAdmin(ctx context.Context, orgID, userID int64) (bool, error) {
	m, err := s.repo.GetByUserAndOrg(ctx, userID, orgID)
	if err != nil {
		return false, err
	}
	return m.CanManage(), nil
}
