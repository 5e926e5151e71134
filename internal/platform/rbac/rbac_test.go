package rbac

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vincent-24/GlassBallots-sub001/internal/membership/domain"
	"github.com/vincent-24/GlassBallots-sub001/internal/server/interceptors"
)

// mockMemberships implements AdminChecker and ApprovedMembershipGetter keyed by "userID:orgID".
type mockMemberships struct {
	memberships map[string]*domain.Membership
	err         error
}

func (m *mockMemberships) get(userID, orgID int64) *domain.Membership {
	return m.memberships[fmt.Sprintf("%d:%d", userID, orgID)]
}

func (m *mockMemberships) IsOwnerOrAdmin(ctx context.Context, orgID, userID int64) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.get(userID, orgID).CanManage(), nil
}

func (m *mockMemberships) GetApprovedMembership(ctx context.Context, userID, orgID int64) (*domain.Membership, error) {
	if m.err != nil {
		return nil, m.err
	}
	if mb := m.get(userID, orgID); mb.Approved() {
		return mb, nil
	}
	return nil, nil
}

func newMemberships() *mockMemberships {
	return &mockMemberships{memberships: map[string]*domain.Membership{
		"1:10": {UserID: 1, OrgID: 10, Role: domain.RoleOwner, Status: domain.StatusApproved},
		"2:10": {UserID: 2, OrgID: 10, Role: domain.RoleAdmin, Status: domain.StatusApproved},
		"3:10": {UserID: 3, OrgID: 10, Role: domain.RoleMember, Status: domain.StatusApproved},
		"4:10": {UserID: 4, OrgID: 10, Role: domain.RoleAdmin, Status: domain.StatusPending},
	}}
}

func caller(userID string) context.Context {
	return interceptors.WithIdentity(context.Background(), userID, "", "")
}

func TestRequireUser(t *testing.T) {
	if id, err := RequireUser(caller("5")); err != nil || id != 5 {
		t.Errorf("RequireUser = %d, %v", id, err)
	}
	for _, ctx := range []context.Context{context.Background(), caller("abc")} {
		if _, err := RequireUser(ctx); status.Code(err) != codes.Unauthenticated {
			t.Errorf("code = %v, want Unauthenticated", status.Code(err))
		}
	}
}

func TestRequireOrgAdmin(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		orgID    int64
		wantCode codes.Code
	}{
		{"owner", caller("1"), 10, codes.OK},
		{"admin", caller("2"), 10, codes.OK},
		{"member", caller("3"), 10, codes.PermissionDenied},
		{"pending admin", caller("4"), 10, codes.PermissionDenied},
		{"other org", caller("1"), 11, codes.PermissionDenied},
		{"anonymous", context.Background(), 10, codes.Unauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RequireOrgAdmin(tt.ctx, newMemberships(), tt.orgID)
			if status.Code(err) != tt.wantCode {
				t.Errorf("code = %v, want %v", status.Code(err), tt.wantCode)
			}
		})
	}
	failing := &mockMemberships{err: errors.New("db down")}
	if _, err := RequireOrgAdmin(caller("1"), failing, 10); status.Code(err) != codes.Internal {
		t.Errorf("code = %v, want Internal", status.Code(err))
	}
}

func TestRequireOrgMember(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		wantCode codes.Code
	}{
		{"member", caller("3"), codes.OK},
		{"owner", caller("1"), codes.OK},
		{"pending", caller("4"), codes.PermissionDenied},
		{"stranger", caller("9"), codes.PermissionDenied},
		{"anonymous", context.Background(), codes.Unauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RequireOrgMember(tt.ctx, newMemberships(), 10)
			if status.Code(err) != tt.wantCode {
				t.Errorf("code = %v, want %v", status.Code(err), tt.wantCode)
			}
		})
	}
	if _, err := RequireOrgMember(caller("3"), &mockMemberships{err: errors.New("db down")}, 10); status.Code(err) != codes.Internal {
		t.Errorf("code = %v, want Internal", status.Code(err))
	}
}
