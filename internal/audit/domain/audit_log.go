package domain

import "time"

// AuditLog is one audited action: a vote submission, a status change, or a gRPC call.
type AuditLog struct {
	ID        string
	OrgID     string
	UserID    string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
