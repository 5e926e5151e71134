// Package service records votes. The store's uniqueness constraint is the correctness guarantee;
// the eligibility pre-check only avoids doomed inserts.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vincent-24/GlassBallots-sub001/internal/eligibility"
	userdomain "github.com/vincent-24/GlassBallots-sub001/internal/user/domain"
	"github.com/vincent-24/GlassBallots-sub001/internal/vote/domain"
)

// VoteRepo is the vote persistence the recorder needs.
type VoteRepo interface {
	Insert(ctx context.Context, v *domain.Vote) error
	GetByUserAndProposal(ctx context.Context, userID, proposalID int64) (*domain.Vote, error)
}

// UserRepo is the user persistence the recorder needs for wallet provisioning and binding.
type UserRepo interface {
	GetByWallet(ctx context.Context, address string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	LinkWallet(ctx context.Context, userID int64, address string) error
}

// EligibilityChecker decides whether a user may vote.
type EligibilityChecker interface {
	CanVote(ctx context.Context, userID, proposalID int64) (*eligibility.Decision, error)
}

// Recorder writes votes exactly once per (user, proposal).
type Recorder struct {
	votes       VoteRepo
	users       UserRepo
	eligibility EligibilityChecker
	now         func() time.Time
}

// NewRecorder returns a Recorder.
func NewRecorder(votes VoteRepo, users UserRepo, eligibility EligibilityChecker) *Recorder {
	return &Recorder{votes: votes, users: users, eligibility: eligibility, now: time.Now}
}

// Record re-checks eligibility and inserts the vote. A prior vote, found either by the check or by
// losing the insert race, is reported as domain.ErrDuplicateVote. Other ineligibility is an *eligibility.Error.
func (r *Recorder) Record(ctx context.Context, userID, proposalID int64, supports bool, prov *domain.Provenance) (*domain.Vote, error) {
	d, err := r.eligibility.CanVote(ctx, userID, proposalID)
	if err != nil {
		return nil, err
	}
	if !d.Allowed {
		if d.AlreadyVoted {
			return nil, domain.ErrDuplicateVote
		}
		return nil, d.Err()
	}
	v := &domain.Vote{UserID: userID, ProposalID: proposalID, Supports: supports, Provenance: prov}
	if err := r.votes.Insert(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// ResolveWalletUser returns the id of the user owning wallet, provisioning a minimal user when none exists.
// When two requests provision the same wallet concurrently, the loser adopts the winner's id.
func (r *Recorder) ResolveWalletUser(ctx context.Context, wallet string) (int64, error) {
	u, err := r.users.GetByWallet(ctx, wallet)
	if err != nil {
		return 0, fmt.Errorf("lookup wallet user: %w", err)
	}
	if u != nil {
		return u.ID, nil
	}
	nu := userdomain.NewWalletUser(wallet, r.now().UTC())
	err = r.users.Create(ctx, nu)
	if err == nil {
		return nu.ID, nil
	}
	if !errors.Is(err, userdomain.ErrUserAlreadyExists) {
		return 0, fmt.Errorf("provision wallet user: %w", err)
	}
	u, err = r.users.GetByWallet(ctx, wallet)
	if err != nil {
		return 0, fmt.Errorf("lookup wallet user after conflict: %w", err)
	}
	if u == nil {
		return 0, errors.New("provision wallet user: conflicting user vanished")
	}
	return u.ID, nil
}

// ClaimWallet binds wallet to userID unless it already is. It returns userdomain.ErrWalletConflict when the
// wallet belongs to another user or the user already holds a different wallet. The binding relies on the
// store's uniqueness of wallet addresses, so two users racing for one wallet cannot both win.
func (r *Recorder) ClaimWallet(ctx context.Context, userID int64, wallet string) error {
	owner, err := r.users.GetByWallet(ctx, wallet)
	if err != nil {
		return fmt.Errorf("lookup wallet user: %w", err)
	}
	if owner != nil {
		if owner.ID != userID {
			return userdomain.ErrWalletConflict
		}
		return nil
	}
	err = r.users.LinkWallet(ctx, userID, wallet)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, userdomain.ErrWalletConflict):
		return err
	case errors.Is(err, userdomain.ErrUserAlreadyExists):
		owner, err = r.users.GetByWallet(ctx, wallet)
		if err != nil {
			return fmt.Errorf("lookup wallet user after conflict: %w", err)
		}
		if owner != nil && owner.ID == userID {
			return nil
		}
		return userdomain.ErrWalletConflict
	default:
		return fmt.Errorf("link wallet to user %d: %w", userID, err)
	}
}
