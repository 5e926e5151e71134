// Package rbac holds the caller and organization-role checks shared by gRPC handlers.
package rbac

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vincent-24/GlassBallots-sub001/internal/membership/domain"
	"github.com/vincent-24/GlassBallots-sub001/internal/server/interceptors"
)

// AdminChecker reports whether a user manages an organization. Implemented by membership service.
type AdminChecker interface {
	IsOwnerOrAdmin(ctx context.Context, orgID, userID int64) (bool, error)
}

// ApprovedMembershipGetter returns a user's approved membership in an org, or nil.
type ApprovedMembershipGetter interface {
	GetApprovedMembership(ctx context.Context, userID, orgID int64) (*domain.Membership, error)
}

// RequireUser returns the authenticated caller's user id, or Unauthenticated.
func RequireUser(ctx context.Context) (int64, error) {
	userID, ok := interceptors.CallerUserID(ctx)
	if !ok {
		return 0, status.Error(codes.Unauthenticated, "user context required")
	}
	return userID, nil
}

// RequireOrgAdmin ensures the caller is an approved owner or admin of orgID.
func RequireOrgAdmin(ctx context.Context, checker AdminChecker, orgID int64) (int64, error) {
	userID, err := RequireUser(ctx)
	if err != nil {
		return 0, err
	}
	ok, err := checker.IsOwnerOrAdmin(ctx, orgID, userID)
	if err != nil {
		return 0, status.Error(codes.Internal, "failed to resolve membership")
	}
	if !ok {
		return 0, status.Error(codes.PermissionDenied, "organization admin or owner required")
	}
	return userID, nil
}

// RequireOrgMember ensures the caller holds an approved membership in orgID, any role.
func RequireOrgMember(ctx context.Context, getter ApprovedMembershipGetter, orgID int64) (int64, error) {
	userID, err := RequireUser(ctx)
	if err != nil {
		return 0, err
	}
	m, err := getter.GetApprovedMembership(ctx, userID, orgID)
	if err != nil {
		return 0, status.Error(codes.Internal, "failed to resolve membership")
	}
	if m == nil {
		return 0, status.Error(codes.PermissionDenied, "not a member of this organization")
	}
	return userID, nil
}
