// Package service implements the ballot operations: the direct and hybrid vote paths, recording
// retries, and the tally and eligibility reads that feed dashboards.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/vincent-24/GlassBallots-sub001/internal/audit"
	"github.com/vincent-24/GlassBallots-sub001/internal/eligibility"
	proposaldomain "github.com/vincent-24/GlassBallots-sub001/internal/proposal/domain"
	"github.com/vincent-24/GlassBallots-sub001/internal/tally"
	"github.com/vincent-24/GlassBallots-sub001/internal/telemetry"
	userdomain "github.com/vincent-24/GlassBallots-sub001/internal/user/domain"
	"github.com/vincent-24/GlassBallots-sub001/internal/verification"
	"github.com/vincent-24/GlassBallots-sub001/internal/verification/cache"
	votedomain "github.com/vincent-24/GlassBallots-sub001/internal/vote/domain"
)

const instrumentationName = "github.com/vincent-24/GlassBallots-sub001/internal/ballot"

var (
	// ErrProposalNotFound is returned when the proposal does not exist.
	ErrProposalNotFound = errors.New("proposal not found")
	// ErrVerificationNotCached is returned by RetryRecording when no verified claim is held for the hash.
	// The client should resubmit through SubmitVerifiedVote; the signed transaction can be reused.
	ErrVerificationNotCached = errors.New("no verified claim cached for transaction")
	// ErrCacheUnavailable wraps verified-transaction cache failures.
	ErrCacheUnavailable = errors.New("verified-transaction cache unavailable")
)

// PartialFailureError reports a transaction that verified on the ledger but whose local recording failed.
// Recording alone can be retried with RetryRecording(TransactionHash).
type PartialFailureError struct {
	TransactionHash string
	BlockNumber     uint64
	Cause           error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("transaction %s verified at block %d but recording failed: %v", e.TransactionHash, e.BlockNumber, e.Cause)
}

func (e *PartialFailureError) Unwrap() error { return e.Cause }

// ProposalRepo is the proposal persistence the service needs.
type ProposalRepo interface {
	GetByID(ctx context.Context, id int64) (*proposaldomain.Proposal, error)
	List(ctx context.Context, orgID *int64) ([]*proposaldomain.Proposal, error)
	UpdateStatus(ctx context.Context, id int64, status proposaldomain.Status) error
}

// UserGetter loads users by id or wallet.
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*userdomain.User, error)
	GetByWallet(ctx context.Context, address string) (*userdomain.User, error)
}

// VoteRecorder records votes and binds wallets to users. Implemented by vote/service.Recorder.
type VoteRecorder interface {
	Record(ctx context.Context, userID, proposalID int64, supports bool, prov *votedomain.Provenance) (*votedomain.Vote, error)
	ResolveWalletUser(ctx context.Context, wallet string) (int64, error)
	ClaimWallet(ctx context.Context, userID int64, wallet string) error
}

// VoteLookup finds the vote backed by a transaction.
type VoteLookup interface {
	GetByTransactionHash(ctx context.Context, hash string) (*votedomain.Vote, error)
}

// ClaimVerifier checks a hybrid claim against the ledger.
type ClaimVerifier interface {
	Verify(ctx context.Context, c verification.Claim) (*verification.Result, error)
}

// EligibilityChecker answers CanVote.
type EligibilityChecker interface {
	CanVote(ctx context.Context, userID, proposalID int64) (*eligibility.Decision, error)
}

// TallyReader aggregates live counts.
type TallyReader interface {
	ForProposal(ctx context.Context, proposalID int64) (tally.Tally, error)
	ForProposals(ctx context.Context, proposalIDs []int64) (map[int64]tally.Tally, error)
}

// VerifiedClaims stores claims that passed verification. *cache.Cache implements it.
type VerifiedClaims interface {
	Put(ctx context.Context, e cache.Entry) error
	Get(ctx context.Context, hash string) (*cache.Entry, error)
}

// Deps are the collaborators of BallotService. Events, Audit and Claims may be nil.
type Deps struct {
	Proposals   ProposalRepo
	Users       UserGetter
	Recorder    VoteRecorder
	Votes       VoteLookup
	Verifier    ClaimVerifier
	Eligibility EligibilityChecker
	Tallies     TallyReader
	Claims      VerifiedClaims
	Events      telemetry.EventEmitter
	Audit       audit.AuditLogger
}

// BallotService orchestrates the vote paths over the engine components.
type BallotService struct {
	Deps
	now    func() time.Time
	tracer trace.Tracer

	votesRecorded   metric.Int64Counter
	votesRejected   metric.Int64Counter
	partialFailures metric.Int64Counter
}

// NewBallotService returns a BallotService. Spans and counters go to the global OTel providers.
func NewBallotService(d Deps) *BallotService {
	meter := otel.Meter(instrumentationName)
	return &BallotService{
		Deps:            d,
		now:             time.Now,
		tracer:          otel.Tracer(instrumentationName),
		votesRecorded:   counter(meter, "ballot.votes.recorded", "Votes recorded, by path"),
		votesRejected:   counter(meter, "ballot.verification.rejected", "Hybrid claims rejected by verification, by reason"),
		partialFailures: counter(meter, "ballot.partial_failures", "Verified transactions whose recording failed"),
	}
}

func counter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		log.Printf("ballot: counter %s: %v", name, err)
		return noop.Int64Counter{}
	}
	return c
}

// TallyView is a live tally with its derived disposition.
type TallyView struct {
	ProposalID int64
	Tally      tally.Tally
	VoteStatus tally.Status
}

// VoteResult is the outcome of a successful submission. TalliesUnavailable is set when the vote was
// recorded but the tally could not be read; Tallies then holds only the proposal id.
type VoteResult struct {
	Vote               *votedomain.Vote
	BlockNumber        uint64 // zero for direct votes
	Tallies            TallyView
	TalliesUnavailable bool
}

// ProposalView is a proposal with its live tally, as listed on dashboards.
type ProposalView struct {
	Proposal   *proposaldomain.Proposal
	Tally      tally.Tally
	VoteStatus tally.Status
}

func (s *BallotService) getProposal(ctx context.Context, id int64) (*proposaldomain.Proposal, error) {
	p, err := s.Proposals.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load proposal %d: %w", id, err)
	}
	if p == nil {
		return nil, ErrProposalNotFound
	}
	return p, nil
}

// GetProposal returns the proposal or ErrProposalNotFound.
func (s *BallotService) GetProposal(ctx context.Context, id int64) (*proposaldomain.Proposal, error) {
	if id <= 0 {
		return nil, &verification.InputError{Field: "proposal_id", Message: "must be positive"}
	}
	return s.getProposal(ctx, id)
}

func (s *BallotService) tallyView(ctx context.Context, p *proposaldomain.Proposal) (TallyView, error) {
	t, err := s.Tallies.ForProposal(ctx, p.ID)
	if err != nil {
		return TallyView{}, fmt.Errorf("tally proposal %d: %w", p.ID, err)
	}
	return TallyView{ProposalID: p.ID, Tally: t, VoteStatus: tally.DeriveStatus(t, p.DecisionDate, s.now())}, nil
}

// voteResult pairs a committed vote with its proposal's tally. A failed tally read is logged and flagged
// on the result, never returned, since the vote itself is already stored.
func (s *BallotService) voteResult(ctx context.Context, p *proposaldomain.Proposal, v *votedomain.Vote, block uint64) *VoteResult {
	res := &VoteResult{Vote: v, BlockNumber: block}
	view, err := s.tallyView(ctx, p)
	if err != nil {
		log.Printf("ballot: vote %d recorded, %v", v.ID, err)
		res.Tallies = TallyView{ProposalID: p.ID}
		res.TalliesUnavailable = true
		return res
	}
	res.Tallies = view
	return res
}
