package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/vincent-24/GlassBallots-sub001/internal/eligibility"
	"github.com/vincent-24/GlassBallots-sub001/internal/ledger"
	proposaldomain "github.com/vincent-24/GlassBallots-sub001/internal/proposal/domain"
	userdomain "github.com/vincent-24/GlassBallots-sub001/internal/user/domain"
	"github.com/vincent-24/GlassBallots-sub001/internal/verification"
	"github.com/vincent-24/GlassBallots-sub001/internal/verification/cache"
	votedomain "github.com/vincent-24/GlassBallots-sub001/internal/vote/domain"
)

// VerifiedVoteRequest is a hybrid submission. The vote always belongs to the owner of WalletAddress. UserID
// is set when the caller is authenticated and must be that owner; an unowned wallet is linked to a caller
// that has none. Anonymous votes go to the wallet's owner, provisioned on first use.
type VerifiedVoteRequest struct {
	TransactionHash string
	ProposalID      int64
	Supports        bool
	WalletAddress   string
	UserID          *int64
}

// SubmitVerifiedVote verifies the ledger transaction behind a claim and records the vote.
//
// Syntax errors are *verification.InputError and are reported before any ledger call. A claim that does
// not match its transaction is a *verification.Error. Ledger outages and slow confirmations pass through
// as retryable ledger errors. Once verified, a recording failure other than a duplicate or ineligibility
// becomes a *PartialFailureError carrying the transaction hash.
func (s *BallotService) SubmitVerifiedVote(ctx context.Context, req VerifiedVoteRequest) (*VoteResult, error) {
	ctx, span := s.tracer.Start(ctx, "ballot.SubmitVerifiedVote")
	defer span.End()
	span.SetAttributes(attribute.Int64("proposal.id", req.ProposalID), attribute.String("tx.hash", req.TransactionHash))

	claim := verification.Claim{
		TransactionHash: req.TransactionHash,
		ProposalID:      req.ProposalID,
		Supports:        req.Supports,
		WalletAddress:   req.WalletAddress,
	}
	if err := verification.ValidateClaim(claim); err != nil {
		return nil, err
	}
	hash := ledger.NormalizeHash(req.TransactionHash)
	wallet := ledger.NormalizeAddress(req.WalletAddress)

	p, err := s.getProposal(ctx, req.ProposalID)
	if err != nil {
		return nil, err
	}
	if req.UserID != nil {
		if err := s.checkWalletOwner(ctx, *req.UserID, wallet); err != nil {
			return nil, err
		}
	}

	res, err := s.Verifier.Verify(ctx, claim)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		var verr *verification.Error
		if errors.As(err, &verr) {
			s.votesRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", string(verr.Reason))))
			s.rejected(ctx, p, 0, req.Supports, pathHybrid, hash, string(verr.Reason))
		}
		return nil, err
	}
	span.SetAttributes(attribute.Int64("tx.block", int64(res.BlockNumber)))

	entry := cache.Entry{
		TransactionHash: hash,
		ProposalID:      req.ProposalID,
		Supports:        req.Supports,
		WalletAddress:   wallet,
		BlockNumber:     res.BlockNumber,
		VerifiedAt:      s.now().UTC(),
	}
	if s.Claims != nil {
		if err := s.Claims.Put(ctx, entry); err != nil {
			log.Printf("ballot: cache verified claim %s: %v", hash, err)
		}
	}
	return s.recordVerified(ctx, p, entry, req.UserID)
}

// RetryRecording re-runs provisioning and recording for a transaction that already verified, using the
// cached claim. A vote already recorded for the transaction is returned as success.
func (s *BallotService) RetryRecording(ctx context.Context, transactionHash string, userID *int64) (*VoteResult, error) {
	ctx, span := s.tracer.Start(ctx, "ballot.RetryRecording")
	defer span.End()

	if !ledger.IsTxHash(transactionHash) {
		return nil, &verification.InputError{Field: "transaction_hash", Message: "must be 0x followed by 64 hex characters"}
	}
	hash := ledger.NormalizeHash(transactionHash)
	span.SetAttributes(attribute.String("tx.hash", hash))
	if s.Claims == nil {
		return nil, ErrVerificationNotCached
	}
	entry, err := s.Claims.Get(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	if entry == nil {
		return nil, ErrVerificationNotCached
	}
	p, err := s.getProposal(ctx, entry.ProposalID)
	if err != nil {
		return nil, err
	}

	existing, err := s.Votes.GetByTransactionHash(ctx, hash)
	if err != nil {
		return nil, s.partial(ctx, *entry, fmt.Errorf("lookup vote by transaction: %w", err))
	}
	if existing != nil {
		if userID != nil && existing.UserID != *userID {
			return nil, votedomain.ErrTransactionAlreadyUsed
		}
		return s.voteResult(ctx, p, existing, entry.BlockNumber), nil
	}

	if userID != nil {
		if err := s.checkWalletOwner(ctx, *userID, entry.WalletAddress); err != nil {
			return nil, err
		}
	}
	return s.recordVerified(ctx, p, *entry, userID)
}

func (s *BallotService) recordVerified(ctx context.Context, p *proposaldomain.Proposal, entry cache.Entry, userID *int64) (*VoteResult, error) {
	var uid int64
	if userID != nil {
		if err := s.Recorder.ClaimWallet(ctx, *userID, entry.WalletAddress); err != nil {
			if errors.Is(err, userdomain.ErrWalletConflict) {
				return nil, errWalletNotOwned()
			}
			return nil, s.partial(ctx, entry, err)
		}
		uid = *userID
	} else {
		var err error
		if uid, err = s.Recorder.ResolveWalletUser(ctx, entry.WalletAddress); err != nil {
			return nil, s.partial(ctx, entry, err)
		}
	}
	prov := &votedomain.Provenance{
		WalletAddress:   entry.WalletAddress,
		TransactionHash: entry.TransactionHash,
		BlockNumber:     entry.BlockNumber,
	}
	v, err := s.Recorder.Record(ctx, uid, p.ID, entry.Supports, prov)
	if err != nil {
		if reason := rejectionReason(err); reason != "" {
			s.rejected(ctx, p, uid, entry.Supports, pathHybrid, entry.TransactionHash, reason)
			return nil, err
		}
		return nil, s.partial(ctx, entry, err)
	}
	s.recorded(ctx, p, v, pathHybrid)
	return s.voteResult(ctx, p, v, entry.BlockNumber), nil
}

func (s *BallotService) partial(ctx context.Context, entry cache.Entry, cause error) error {
	s.partialFailures.Add(ctx, 1)
	log.Printf("ballot: recording verified transaction %s failed: %v", entry.TransactionHash, cause)
	return &PartialFailureError{TransactionHash: entry.TransactionHash, BlockNumber: entry.BlockNumber, Cause: cause}
}

// checkWalletOwner rejects an authenticated caller whose claimed wallet belongs to another user or differs
// from the wallet already linked to the caller. It runs before the ledger call; recordVerified makes the
// binding itself through ClaimWallet.
func (s *BallotService) checkWalletOwner(ctx context.Context, userID int64, wallet string) error {
	if userID <= 0 {
		return &verification.InputError{Field: "user_id", Message: "must be positive"}
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user %d: %w", userID, err)
	}
	if u == nil {
		return &verification.InputError{Field: "user_id", Message: "unknown user"}
	}
	if u.WalletAddress != "" && !strings.EqualFold(u.WalletAddress, wallet) {
		return errWalletNotOwned()
	}
	owner, err := s.Users.GetByWallet(ctx, wallet)
	if err != nil {
		return fmt.Errorf("lookup wallet %s: %w", wallet, err)
	}
	if owner != nil && owner.ID != userID {
		return errWalletNotOwned()
	}
	return nil
}

func errWalletNotOwned() error {
	return &verification.InputError{Field: "wallet_address", Message: "does not belong to the authenticated user"}
}

// rejectionReason names terminal recording failures; it is empty for infrastructure errors.
func rejectionReason(err error) string {
	var eerr *eligibility.Error
	switch {
	case errors.Is(err, votedomain.ErrDuplicateVote):
		return "DUPLICATE_VOTE"
	case errors.Is(err, votedomain.ErrTransactionAlreadyUsed):
		return "TRANSACTION_ALREADY_USED"
	case errors.As(err, &eerr):
		return string(eerr.Code)
	}
	return ""
}
