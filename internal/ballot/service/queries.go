package service

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vincent-24/GlassBallots-sub001/internal/eligibility"
	proposaldomain "github.com/vincent-24/GlassBallots-sub001/internal/proposal/domain"
	"github.com/vincent-24/GlassBallots-sub001/internal/tally"
	"github.com/vincent-24/GlassBallots-sub001/internal/verification"
)

// GetTallies returns the live tally and derived vote status of a proposal.
func (s *BallotService) GetTallies(ctx context.Context, proposalID int64) (*TallyView, error) {
	ctx, span := s.tracer.Start(ctx, "ballot.GetTallies")
	defer span.End()
	span.SetAttributes(attribute.Int64("proposal.id", proposalID))

	p, err := s.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	view, err := s.tallyView(ctx, p)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ListProposals returns proposals, newest first, each with its live tally. A nil orgID lists only
// unscoped proposals; org-scoped ones are listed per organization.
// Tallies come from one batched count.
func (s *BallotService) ListProposals(ctx context.Context, orgID *int64) ([]ProposalView, error) {
	ctx, span := s.tracer.Start(ctx, "ballot.ListProposals")
	defer span.End()

	proposals, err := s.Proposals.List(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	ids := make([]int64, len(proposals))
	for i, p := range proposals {
		ids[i] = p.ID
	}
	tallies, err := s.Tallies.ForProposals(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("tally proposals: %w", err)
	}
	now := s.now()
	out := make([]ProposalView, len(proposals))
	for i, p := range proposals {
		t := tallies[p.ID]
		out[i] = ProposalView{Proposal: p, Tally: t, VoteStatus: tally.DeriveStatus(t, p.DecisionDate, now)}
	}
	span.SetAttributes(attribute.Int("proposals.count", len(out)))
	return out, nil
}

// CheckEligibility reports whether the user may vote on the proposal, without recording anything.
func (s *BallotService) CheckEligibility(ctx context.Context, userID, proposalID int64) (*eligibility.Decision, error) {
	if userID <= 0 {
		return nil, &verification.InputError{Field: "user_id", Message: "must be positive"}
	}
	if proposalID <= 0 {
		return nil, &verification.InputError{Field: "proposal_id", Message: "must be positive"}
	}
	return s.Eligibility.CanVote(ctx, userID, proposalID)
}

// UpdateProposalStatus moves a proposal through its administrative lifecycle. Authorization is the caller's job.
// The administrative status does not affect the derived vote status.
func (s *BallotService) UpdateProposalStatus(ctx context.Context, proposalID int64, status string) (*proposaldomain.Proposal, error) {
	st := proposaldomain.Status(strings.ToLower(strings.TrimSpace(status)))
	if !st.Valid() {
		return nil, &verification.InputError{Field: "status", Message: "must be one of pending, active, closed, archived"}
	}
	p, err := s.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if err := s.Proposals.UpdateStatus(ctx, p.ID, st); err != nil {
		return nil, fmt.Errorf("update proposal %d status: %w", p.ID, err)
	}
	p.Status = st
	return p, nil
}
