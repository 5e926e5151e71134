// Package eligibility decides whether a user may vote on a proposal. It is read-only.
package eligibility

import (
	"context"
	"fmt"

	membershipdomain "github.com/vincent-24/GlassBallots-sub001/internal/membership/domain"
	"github.com/vincent-24/GlassBallots-sub001/internal/policy/engine"
	proposaldomain "github.com/vincent-24/GlassBallots-sub001/internal/proposal/domain"
	votedomain "github.com/vincent-24/GlassBallots-sub001/internal/vote/domain"
)

// Code is a machine-checkable ineligibility reason.
type Code string

const (
	CodeAlreadyVoted     Code = engine.CodeAlreadyVoted
	CodeNotOrgMember     Code = engine.CodeNotOrgMember
	CodeNotAuthorized    Code = engine.CodeNotAuthorized
	CodeProposalNotFound Code = "PROPOSAL_NOT_FOUND"
)

// Decision is the outcome of CanVote. Code and Reason are empty when Allowed is true.
type Decision struct {
	Allowed      bool
	Code         Code
	Reason       string
	AlreadyVoted bool
	Restricted   bool
}

// Err converts a negative decision into an *Error, or returns nil when allowed.
func (d *Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &Error{Code: d.Code, Reason: d.Reason}
}

// Error is a terminal eligibility failure.
type Error struct {
	Code   Code
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("not eligible: %s", e.Reason)
}

// ProposalGetter loads proposals.
type ProposalGetter interface {
	GetByID(ctx context.Context, id int64) (*proposaldomain.Proposal, error)
}

// MembershipGetter returns a user's approved membership in an org, or nil.
type MembershipGetter interface {
	GetApprovedMembership(ctx context.Context, userID, orgID int64) (*membershipdomain.Membership, error)
}

// VoteLookup finds an existing vote.
type VoteLookup interface {
	GetByUserAndProposal(ctx context.Context, userID, proposalID int64) (*votedomain.Vote, error)
}

// Resolver gathers eligibility facts and evaluates them with the policy engine.
type Resolver struct {
	proposals   ProposalGetter
	memberships MembershipGetter
	votes       VoteLookup
	policy      engine.Evaluator
}

// NewResolver returns a Resolver.
func NewResolver(proposals ProposalGetter, memberships MembershipGetter, votes VoteLookup, policy engine.Evaluator) *Resolver {
	return &Resolver{proposals: proposals, memberships: memberships, votes: votes, policy: policy}
}

// CanVote evaluates, in order: prior vote, organization membership, voter restriction.
// A missing proposal yields a negative decision with CodeProposalNotFound. Errors are store or policy failures.
func (r *Resolver) CanVote(ctx context.Context, userID, proposalID int64) (*Decision, error) {
	p, err := r.proposals.GetByID(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("load proposal: %w", err)
	}
	if p == nil {
		return &Decision{Code: CodeProposalNotFound, Reason: "proposal not found"}, nil
	}

	existing, err := r.votes.GetByUserAndProposal(ctx, userID, proposalID)
	if err != nil {
		return nil, fmt.Errorf("load vote: %w", err)
	}
	in := engine.EligibilityInput{
		UserID:        userID,
		AlreadyVoted:  existing != nil,
		OrgScoped:     p.OrgScoped(),
		Restricted:    p.AllowedVoters.Restricted(),
		AllowedVoters: p.AllowedVoters.UserIDs,
	}
	if in.OrgScoped && !in.AlreadyVoted {
		m, err := r.memberships.GetApprovedMembership(ctx, userID, *p.OrganizationID)
		if err != nil {
			return nil, fmt.Errorf("load membership: %w", err)
		}
		in.ApprovedMember = m.Approved()
	}

	res, err := r.policy.EvaluateEligibility(ctx, in)
	if err != nil {
		return nil, err
	}
	d := &Decision{
		Allowed:      res.Allowed,
		Code:         Code(res.Code),
		Reason:       res.Reason,
		AlreadyVoted: Code(res.Code) == CodeAlreadyVoted,
		Restricted:   Code(res.Code) == CodeNotAuthorized,
	}
	return d, nil
}
