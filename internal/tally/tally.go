// Package tally aggregates vote rows into per-proposal counts and derives the proposal's vote disposition.
// Nothing here is cached; every read recomputes from the store.
package tally

import (
	"context"
	"time"

	votedomain "github.com/vincent-24/GlassBallots-sub001/internal/vote/domain"
)

// Status is the derived vote disposition of a proposal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
	StatusRecast   Status = "recast"
)

// Tally is a live aggregation. TotalVotes always equals YesCount + NoCount.
type Tally struct {
	YesCount   int64
	NoCount    int64
	TotalVotes int64
}

// FromCounts builds a Tally from raw counts.
func FromCounts(c votedomain.Counts) Tally {
	return Tally{YesCount: c.Yes, NoCount: c.No, TotalVotes: c.Total()}
}

// DeriveStatus maps a tally to a disposition. It depends only on its arguments.
//
// A proposal with no votes is recast once its decision date has passed and pending otherwise.
// With votes, the majority decides and a tie is recast.
func DeriveStatus(t Tally, decisionDate *time.Time, now time.Time) Status {
	switch {
	case t.TotalVotes == 0 && decisionDate != nil && datePassed(*decisionDate, now):
		return StatusRecast
	case t.TotalVotes == 0:
		return StatusPending
	case t.YesCount > t.NoCount:
		return StatusApproved
	case t.NoCount > t.YesCount:
		return StatusDenied
	default:
		return StatusRecast
	}
}

// datePassed compares calendar days in UTC; the decision day itself is not past.
func datePassed(decision, now time.Time) bool {
	return day(decision).Before(day(now))
}

func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CountRepo is the vote aggregation the Aggregator reads.
type CountRepo interface {
	CountByProposal(ctx context.Context, proposalID int64) (votedomain.Counts, error)
	CountByProposals(ctx context.Context, proposalIDs []int64) (map[int64]votedomain.Counts, error)
}

// Aggregator reads live tallies.
type Aggregator struct {
	repo CountRepo
}

// NewAggregator returns an Aggregator over repo.
func NewAggregator(repo CountRepo) *Aggregator {
	return &Aggregator{repo: repo}
}

// ForProposal returns the live tally for one proposal.
func (a *Aggregator) ForProposal(ctx context.Context, proposalID int64) (Tally, error) {
	c, err := a.repo.CountByProposal(ctx, proposalID)
	if err != nil {
		return Tally{}, err
	}
	return FromCounts(c), nil
}

// ForProposals returns live tallies for many proposals; every requested id is present in the result.
func (a *Aggregator) ForProposals(ctx context.Context, proposalIDs []int64) (map[int64]Tally, error) {
	counts, err := a.repo.CountByProposals(ctx, proposalIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]Tally, len(proposalIDs))
	for _, id := range proposalIDs {
		out[id] = FromCounts(counts[id])
	}
	return out, nil
}
