package engine

import (
	"context"
	"testing"
)

func newTestEvaluator(t *testing.T) *OPAEvaluator {
	t.Helper()
	e, err := NewOPAEvaluator(context.Background())
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	return e
}

func TestOPAEvaluator_HealthCheck(t *testing.T) {
	e := newTestEvaluator(t)
	if err := e.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestOPAEvaluator_EvaluateEligibility(t *testing.T) {
	e := newTestEvaluator(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		in          EligibilityInput
		wantAllowed bool
		wantCode    string
	}{
		{
			name:        "unscoped open proposal",
			in:          EligibilityInput{UserID: 7},
			wantAllowed: true,
		},
		{
			name:     "already voted",
			in:       EligibilityInput{UserID: 7, AlreadyVoted: true},
			wantCode: CodeAlreadyVoted,
		},
		{
			name:     "already voted wins over non-membership and restriction",
			in:       EligibilityInput{UserID: 9, AlreadyVoted: true, OrgScoped: true, Restricted: true, AllowedVoters: []int64{7}},
			wantCode: CodeAlreadyVoted,
		},
		{
			name:     "org scoped without approved membership",
			in:       EligibilityInput{UserID: 7, OrgScoped: true},
			wantCode: CodeNotOrgMember,
		},
		{
			name:     "non-membership wins over restriction",
			in:       EligibilityInput{UserID: 9, OrgScoped: true, Restricted: true, AllowedVoters: []int64{7}},
			wantCode: CodeNotOrgMember,
		},
		{
			name:        "org scoped approved member",
			in:          EligibilityInput{UserID: 7, OrgScoped: true, ApprovedMember: true},
			wantAllowed: true,
		},
		{
			name:     "restricted and not listed",
			in:       EligibilityInput{UserID: 9, Restricted: true, AllowedVoters: []int64{7}},
			wantCode: CodeNotAuthorized,
		},
		{
			name:        "restricted and listed",
			in:          EligibilityInput{UserID: 7, Restricted: true, AllowedVoters: []int64{7}},
			wantAllowed: true,
		},
		{
			name:     "restricted with empty list",
			in:       EligibilityInput{UserID: 7, Restricted: true},
			wantCode: CodeNotAuthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.EvaluateEligibility(ctx, tt.in)
			if err != nil {
				t.Fatalf("EvaluateEligibility: %v", err)
			}
			if res.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", res.Allowed, tt.wantAllowed)
			}
			if res.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", res.Code, tt.wantCode)
			}
			if !res.Allowed && res.Reason == "" {
				t.Error("Reason should be set when not allowed")
			}
		})
	}
}
