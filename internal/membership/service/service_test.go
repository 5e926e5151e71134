package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/vincent-24/GlassBallots-sub001/internal/membership/domain"
)

// mockMembershipRepo keys memberships by "userID:orgID".
type mockMembershipRepo struct {
	memberships map[string]*domain.Membership
	err         error
}

func (m *mockMembershipRepo) GetByUserAndOrg(ctx context.Context, userID, orgID int64) (*domain.Membership, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.memberships[fmt.Sprintf("%d:%d", userID, orgID)], nil
}

func (m *mockMembershipRepo) GetApprovedMembership(ctx context.Context, userID, orgID int64) (*domain.Membership, error) {
	ms, err := m.GetByUserAndOrg(ctx, userID, orgID)
	if err != nil || !ms.Approved() {
		return nil, err
	}
	return ms, nil
}

func TestMembershipService_IsOwnerOrAdmin(t *testing.T) {
	repo := &mockMembershipRepo{memberships: map[string]*domain.Membership{
		"1:10": {UserID: 1, OrgID: 10, Role: domain.RoleOwner, Status: domain.StatusApproved},
		"2:10": {UserID: 2, OrgID: 10, Role: domain.RoleAdmin, Status: domain.StatusPending},
		"3:10": {UserID: 3, OrgID: 10, Role: domain.RoleMember, Status: domain.StatusApproved},
	}}
	svc := NewMembershipService(repo)
	ctx := context.Background()

	tests := []struct {
		userID int64
		want   bool
	}{
		{1, true},
		{2, false},
		{3, false},
		{4, false},
	}
	for _, tt := range tests {
		got, err := svc.IsOwnerOrAdmin(ctx, 10, tt.userID)
		if err != nil {
			t.Fatalf("IsOwnerOrAdmin(%d): %v", tt.userID, err)
		}
		if got != tt.want {
			t.Errorf("IsOwnerOrAdmin(10, %d) = %v, want %v", tt.userID, got, tt.want)
		}
	}
}

func TestMembershipService_GetApprovedMembership(t *testing.T) {
	repo := &mockMembershipRepo{memberships: map[string]*domain.Membership{
		"1:10": {UserID: 1, OrgID: 10, Role: domain.RoleMember, Status: domain.StatusApproved},
		"2:10": {UserID: 2, OrgID: 10, Role: domain.RoleMember, Status: domain.StatusPending},
	}}
	svc := NewMembershipService(repo)
	ctx := context.Background()

	if m, _ := svc.GetApprovedMembership(ctx, 1, 10); m == nil {
		t.Error("approved membership should be returned")
	}
	if m, _ := svc.GetApprovedMembership(ctx, 2, 10); m != nil {
		t.Error("pending membership should not be returned")
	}
}

func TestMembershipService_RepoError(t *testing.T) {
	svc := NewMembershipService(&mockMembershipRepo{err: errors.New("db down")})
	if _, err := svc.IsOwnerOrAdmin(context.Background(), 10, 1); err == nil {
		t.Error("IsOwnerOrAdmin should propagate repository errors")
	}
}
