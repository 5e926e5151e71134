package domain

import (
	"time"
)

// Membership links a user to an organization with a role. Only approved memberships confer voting eligibility.
type Membership struct {
	ID        int64
	UserID    int64
	OrgID     int64
	Role      Role
	Status    Status
	CreatedAt time.Time
}

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

// Approved reports whether m is non-nil and approved.
func (m *Membership) Approved() bool {
	return m != nil && m.Status == StatusApproved
}

// CanManage reports whether m is an approved owner or admin membership.
func (m *Membership) CanManage() bool {
	return m.Approved() && (m.Role == RoleOwner || m.Role == RoleAdmin)
}
