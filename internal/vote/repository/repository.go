package repository

import (
	"context"

	"github.com/vincent-24/GlassBallots-sub001/internal/vote/domain"
)

// Repository defines persistence for votes.
type Repository interface {
	// Insert records v and sets v.ID and v.CreatedAt. It returns domain.ErrDuplicateVote or
	// domain.ErrTransactionAlreadyUsed when a uniqueness constraint rejects the row.
	Insert(ctx context.Context, v *domain.Vote) error
	GetByUserAndProposal(ctx context.Context, userID, proposalID int64) (*domain.Vote, error)
	GetByTransactionHash(ctx context.Context, hash string) (*domain.Vote, error)
	CountByProposal(ctx context.Context, proposalID int64) (domain.Counts, error)
	// CountByProposals returns counts for each id; ids without votes map to zero counts.
	CountByProposals(ctx context.Context, proposalIDs []int64) (map[int64]domain.Counts, error)
}
