package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	ballot "github.com/vincent-24/GlassBallots-sub001/internal/ballot/service"
	"github.com/vincent-24/GlassBallots-sub001/internal/eligibility"
	"github.com/vincent-24/GlassBallots-sub001/internal/platform/rbac"
	proposaldomain "github.com/vincent-24/GlassBallots-sub001/internal/proposal/domain"
	"github.com/vincent-24/GlassBallots-sub001/internal/server/interceptors"
)

// Ballot is the service the handler delegates to. *ballot.BallotService implements it.
type Ballot interface {
	SubmitDirectVote(ctx context.Context, userID, proposalID int64, supports bool) (*ballot.VoteResult, error)
	SubmitVerifiedVote(ctx context.Context, req ballot.VerifiedVoteRequest) (*ballot.VoteResult, error)
	RetryRecording(ctx context.Context, transactionHash string, userID *int64) (*ballot.VoteResult, error)
	GetProposal(ctx context.Context, id int64) (*proposaldomain.Proposal, error)
	GetTallies(ctx context.Context, proposalID int64) (*ballot.TallyView, error)
	ListProposals(ctx context.Context, orgID *int64) ([]ballot.ProposalView, error)
	CheckEligibility(ctx context.Context, userID, proposalID int64) (*eligibility.Decision, error)
	UpdateProposalStatus(ctx context.Context, proposalID int64, status string) (*proposaldomain.Proposal, error)
}

// Memberships answers the org role checks.
type Memberships interface {
	rbac.AdminChecker
	rbac.ApprovedMembershipGetter
}

// Server implements BallotServer.
type Server struct {
	svc         Ballot
	memberships Memberships
}

// NewServer returns a new BallotService server.
func NewServer(svc Ballot, memberships Memberships) *Server {
	return &Server{svc: svc, memberships: memberships}
}

func (s *Server) requireBackend() error {
	if s.svc == nil {
		return status.Error(codes.Unimplemented, "ballot service not configured")
	}
	return nil
}

// SubmitDirectVote records an authenticated vote with no ledger transaction.
// Request: proposal_id, supports. The voter is the caller.
func (s *Server) SubmitDirectVote(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.requireBackend(); err != nil {
		return nil, err
	}
	userID, err := rbac.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	proposalID, err := requiredID(req, "proposal_id")
	if err != nil {
		return nil, err
	}
	supports, err := requiredBool(req, "supports")
	if err != nil {
		return nil, err
	}
	res, err := s.svc.SubmitDirectVote(ctx, userID, proposalID, supports)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(voteResultMap(res))
}

// SubmitVerifiedVote verifies a ledger transaction and records the vote it carries.
// Request: transaction_hash, proposal_id, supports, wallet_address. Authentication is optional; an
// authenticated caller votes as themselves, an anonymous one as the wallet's user.
func (s *Server) SubmitVerifiedVote(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.requireBackend(); err != nil {
		return nil, err
	}
	hash, err := requiredString(req, "transaction_hash")
	if err != nil {
		return nil, err
	}
	proposalID, err := requiredID(req, "proposal_id")
	if err != nil {
		return nil, err
	}
	supports, err := requiredBool(req, "supports")
	if err != nil {
		return nil, err
	}
	wallet, err := requiredString(req, "wallet_address")
	if err != nil {
		return nil, err
	}
	vr := ballot.VerifiedVoteRequest{
		TransactionHash: hash,
		ProposalID:      proposalID,
		Supports:        supports,
		WalletAddress:   wallet,
	}
	if uid, ok := interceptors.CallerUserID(ctx); ok {
		vr.UserID = &uid
	}
	res, err := s.svc.SubmitVerifiedVote(ctx, vr)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(voteResultMap(res))
}

// RetryRecording records a vote whose transaction verified earlier but whose recording failed.
// Request: transaction_hash.
func (s *Server) RetryRecording(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.requireBackend(); err != nil {
		return nil, err
	}
	hash, err := requiredString(req, "transaction_hash")
	if err != nil {
		return nil, err
	}
	var userID *int64
	if uid, ok := interceptors.CallerUserID(ctx); ok {
		userID = &uid
	}
	res, err := s.svc.RetryRecording(ctx, hash, userID)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(voteResultMap(res))
}

// GetTallies returns the live tally of a proposal. Org-scoped proposals require approved membership.
func (s *Server) GetTallies(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.requireBackend(); err != nil {
		return nil, err
	}
	proposalID, err := requiredID(req, "proposal_id")
	if err != nil {
		return nil, err
	}
	p, err := s.svc.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, toStatus(err)
	}
	if p.OrgScoped() {
		if _, err := rbac.RequireOrgMember(ctx, s.memberships, *p.OrganizationID); err != nil {
			return nil, err
		}
	}
	view, err := s.svc.GetTallies(ctx, proposalID)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(tallyMap(*view))
}

// ListProposals lists proposals with live tallies. Without org_id only unscoped proposals are returned;
// with org_id the caller must be an approved member of that org.
func (s *Server) ListProposals(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.requireBackend(); err != nil {
		return nil, err
	}
	orgID, scoped, err := optionalID(req, "org_id")
	if err != nil {
		return nil, err
	}
	var filter *int64
	if scoped {
		if _, err := rbac.RequireOrgMember(ctx, s.memberships, orgID); err != nil {
			return nil, err
		}
		filter = &orgID
	}
	views, err := s.svc.ListProposals(ctx, filter)
	if err != nil {
		return nil, toStatus(err)
	}
	items := make([]interface{}, len(views))
	for i, v := range views {
		items[i] = proposalViewMap(v)
	}
	return newStruct(map[string]interface{}{"proposals": items})
}

// CheckEligibility reports whether the caller may vote on proposal_id.
func (s *Server) CheckEligibility(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.requireBackend(); err != nil {
		return nil, err
	}
	userID, err := rbac.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	proposalID, err := requiredID(req, "proposal_id")
	if err != nil {
		return nil, err
	}
	d, err := s.svc.CheckEligibility(ctx, userID, proposalID)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(decisionMap(d))
}

// UpdateProposalStatus sets the administrative status. Org-scoped proposals require org owner or admin;
// unscoped proposals may only be changed by their creator.
func (s *Server) UpdateProposalStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.requireBackend(); err != nil {
		return nil, err
	}
	proposalID, err := requiredID(req, "proposal_id")
	if err != nil {
		return nil, err
	}
	st, err := requiredString(req, "status")
	if err != nil {
		return nil, err
	}
	p, err := s.svc.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, toStatus(err)
	}
	if p.OrgScoped() {
		if _, err := rbac.RequireOrgAdmin(ctx, s.memberships, *p.OrganizationID); err != nil {
			return nil, err
		}
	} else {
		userID, err := rbac.RequireUser(ctx)
		if err != nil {
			return nil, err
		}
		if p.CreatedBy == 0 || p.CreatedBy != userID {
			return nil, status.Error(codes.PermissionDenied, "only the proposal creator can change its status")
		}
	}
	updated, err := s.svc.UpdateProposalStatus(ctx, proposalID, st)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]interface{}{"proposal": proposalMap(updated)})
}
