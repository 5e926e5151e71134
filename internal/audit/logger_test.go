package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vincent-24/GlassBallots-sub001/internal/audit/domain"
)

type mockAuditRepo struct {
	entries   []*domain.AuditLog
	createErr error
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func TestLogger_LogEvent(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo, func(context.Context) string { return "192.168.1.1" })
	fixed := time.Date(2026, 5, 1, 9, 0, 0, 0, time.FixedZone("X", 3600))
	logger.now = func() time.Time { return fixed }

	logger.LogEvent(context.Background(), "10", "7", "vote_recorded", "proposal", `{"proposal_id":3}`)

	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	e := repo.entries[0]
	if e.OrgID != "10" || e.UserID != "7" || e.Action != "vote_recorded" || e.Resource != "proposal" {
		t.Errorf("entry = %+v", e)
	}
	if e.IP != "192.168.1.1" {
		t.Errorf("ip = %q, want %q", e.IP, "192.168.1.1")
	}
	if e.Metadata != `{"proposal_id":3}` {
		t.Errorf("metadata = %q", e.Metadata)
	}
	if e.ID == "" {
		t.Error("entry ID should be set")
	}
	if !e.CreatedAt.Equal(fixed) || e.CreatedAt.Location() != time.UTC {
		t.Errorf("created_at = %v, want %v in UTC", e.CreatedAt, fixed)
	}
}

func TestLogger_LogEvent_Defaults(t *testing.T) {
	tests := []struct {
		name    string
		extract IPExtractor
		wantIP  string
	}{
		{"nil extractor", nil, "unknown"},
		{"empty extraction", func(context.Context) string { return "" }, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockAuditRepo{}
			NewLogger(repo, tt.extract).LogEvent(context.Background(), "", "7", "a", "r", "")
			if len(repo.entries) != 1 {
				t.Fatalf("entries = %d, want 1", len(repo.entries))
			}
			if repo.entries[0].IP != tt.wantIP {
				t.Errorf("ip = %q, want %q", repo.entries[0].IP, tt.wantIP)
			}
			if repo.entries[0].OrgID != SentinelOrgID {
				t.Errorf("org_id = %q, want %q", repo.entries[0].OrgID, SentinelOrgID)
			}
		})
	}
}

func TestLogger_LogEvent_BestEffort(t *testing.T) {
	// Neither a failing repo nor a nil repo or logger may panic.
	NewLogger(&mockAuditRepo{createErr: errors.New("database error")}, nil).LogEvent(context.Background(), "1", "2", "a", "r", "")
	NewLogger(nil, nil).LogEvent(context.Background(), "1", "2", "a", "r", "")
	var l *Logger
	l.LogEvent(context.Background(), "1", "2", "a", "r", "")
}
