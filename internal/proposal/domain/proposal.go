package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Proposal is a motion members vote on. Its vote disposition is derived from live tallies and is not a field here.
type Proposal struct {
	ID             int64
	Title          string
	Body           string
	CreatedBy      int64  // 0 when unknown
	OrganizationID *int64 // nil for unscoped proposals
	DecisionDate   *time.Time
	Status         Status
	AllowedVoters  AllowedVoters
	CreatedAt      time.Time
}

// Status is the administrative lifecycle of a proposal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusClosed   Status = "closed"
	StatusArchived Status = "archived"
)

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusClosed, StatusArchived:
		return true
	}
	return false
}

// OrgScoped reports whether the proposal belongs to an organization.
func (p *Proposal) OrgScoped() bool {
	return p.OrganizationID != nil
}

// Validate validates the proposal for persistence. Returns an error describing the first validation failure.
func (p *Proposal) Validate() error {
	if p.Title == "" {
		return errors.New("title is required")
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	if !p.Status.Valid() {
		return fmt.Errorf("unknown status %q", p.Status)
	}
	return nil
}

const allVotersSentinel = "ALL"

// AllowedVoters is either every eligible member or an explicit list of user ids. The zero value allows
// every member; only OnlyVoters restricts.
type AllowedVoters struct {
	restricted bool
	UserIDs    []int64
}

// AllVoters is the unrestricted voter set.
func AllVoters() AllowedVoters { return AllowedVoters{} }

// OnlyVoters restricts voting to ids. With no ids nobody may vote.
func OnlyVoters(ids ...int64) AllowedVoters { return AllowedVoters{restricted: true, UserIDs: ids} }

// Restricted reports whether only listed users may vote.
func (a AllowedVoters) Restricted() bool { return a.restricted }

// Contains reports whether userID may vote under a. Always true when unrestricted.
func (a AllowedVoters) Contains(userID int64) bool {
	if !a.restricted {
		return true
	}
	for _, id := range a.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// MarshalJSON encodes the unrestricted set as "ALL" and a restriction as an array of ids.
func (a AllowedVoters) MarshalJSON() ([]byte, error) {
	if !a.restricted {
		return json.Marshal(allVotersSentinel)
	}
	ids := a.UserIDs
	if ids == nil {
		ids = []int64{}
	}
	return json.Marshal(ids)
}

// UnmarshalJSON accepts null or "ALL" (case-insensitive) for the unrestricted set and an array of ids for a restriction.
func (a *AllowedVoters) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = AllVoters()
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if !bytes.EqualFold([]byte(s), []byte(allVotersSentinel)) {
			return fmt.Errorf("allowed_voters: unknown sentinel %q", s)
		}
		*a = AllVoters()
		return nil
	}
	var ids []int64
	if err := json.Unmarshal(b, &ids); err != nil {
		return fmt.Errorf("allowed_voters: %w", err)
	}
	*a = OnlyVoters(ids...)
	return nil
}
