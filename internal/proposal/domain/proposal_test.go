package domain

import (
	"encoding/json"
	"testing"
)

func TestAllowedVoters_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		raw            string
		wantRestricted bool
		wantIDs        []int64
		wantErr        bool
	}{
		{raw: `null`},
		{raw: `"ALL"`},
		{raw: `"all"`},
		{raw: `[7]`, wantRestricted: true, wantIDs: []int64{7}},
		{raw: `[]`, wantRestricted: true},
		{raw: `"SOME"`, wantErr: true},
		{raw: `{"ids":[1]}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var a AllowedVoters
			err := json.Unmarshal([]byte(tt.raw), &a)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if a.Restricted() != tt.wantRestricted {
				t.Errorf("Restricted = %v, want %v", a.Restricted(), tt.wantRestricted)
			}
			if len(a.UserIDs) != len(tt.wantIDs) {
				t.Errorf("UserIDs = %v, want %v", a.UserIDs, tt.wantIDs)
			}
		})
	}
}

func TestAllowedVoters_Contains(t *testing.T) {
	restricted := OnlyVoters(7)
	if !restricted.Contains(7) {
		t.Error("listed user 7 should be allowed")
	}
	if restricted.Contains(9) {
		t.Error("unlisted user 9 should not be allowed")
	}
	if !AllVoters().Contains(9) {
		t.Error("ALL should contain every user")
	}
}

func TestAllowedVoters_ZeroValueAllowsEveryone(t *testing.T) {
	var a AllowedVoters
	if a.Restricted() || !a.Contains(42) {
		t.Errorf("zero value: Restricted = %v, Contains(42) = %v, want false and true", a.Restricted(), a.Contains(42))
	}
	b, err := json.Marshal(Proposal{Title: "x"}.AllowedVoters)
	if err != nil || string(b) != `"ALL"` {
		t.Errorf("Marshal(unset) = %s, %v, want \"ALL\"", b, err)
	}
}

func TestAllowedVoters_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(AllVoters())
	if err != nil || string(b) != `"ALL"` {
		t.Errorf("Marshal(All) = %s, %v", b, err)
	}
	b, err = json.Marshal(OnlyVoters())
	if err != nil || string(b) != `[]` {
		t.Errorf("Marshal(empty restriction) = %s, %v", b, err)
	}
}

func TestProposal_Validate(t *testing.T) {
	p := &Proposal{}
	if err := p.Validate(); err == nil {
		t.Error("Validate should require a title")
	}
	p = &Proposal{Title: "Extend library hours"}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if p.Status != StatusActive {
		t.Errorf("Status = %q, want %q", p.Status, StatusActive)
	}
	p = &Proposal{Title: "x", Status: "approved"}
	if err := p.Validate(); err == nil {
		t.Error("Validate should reject a vote disposition as lifecycle status")
	}
}
