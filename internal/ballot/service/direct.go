package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/vincent-24/GlassBallots-sub001/internal/verification"
)

// SubmitDirectVote records an off-chain vote for an authenticated user and returns the updated tallies.
// Ineligibility is an *eligibility.Error; a prior vote, including one that won a concurrent race, is
// vote/domain.ErrDuplicateVote.
func (s *BallotService) SubmitDirectVote(ctx context.Context, userID, proposalID int64, supports bool) (*VoteResult, error) {
	ctx, span := s.tracer.Start(ctx, "ballot.SubmitDirectVote")
	defer span.End()
	span.SetAttributes(attribute.Int64("proposal.id", proposalID), attribute.Int64("user.id", userID))

	if userID <= 0 {
		return nil, &verification.InputError{Field: "user_id", Message: "must be positive"}
	}
	if proposalID <= 0 {
		return nil, &verification.InputError{Field: "proposal_id", Message: "must be positive"}
	}
	p, err := s.getProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	v, err := s.Recorder.Record(ctx, userID, proposalID, supports, nil)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.rejected(ctx, p, userID, supports, pathDirect, "", rejectionReason(err))
		return nil, err
	}
	s.recorded(ctx, p, v, pathDirect)
	return s.voteResult(ctx, p, v, 0), nil
}
