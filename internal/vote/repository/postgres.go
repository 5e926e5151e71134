package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vincent-24/GlassBallots-sub001/internal/db"
	"github.com/vincent-24/GlassBallots-sub001/internal/vote/domain"
)

const (
	constraintUserProposal = "votes_user_proposal_key"
	constraintTxHash       = "votes_transaction_hash_key"

	voteColumns = "id, user_id, proposal_id, supports, wallet_address, transaction_hash, block_number, created_at"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a vote repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert writes one vote row. Uniqueness is enforced by the table constraints, so concurrent inserts for the
// same (user, proposal) yield exactly one success.
func (r *PostgresRepository) Insert(ctx context.Context, v *domain.Vote) error {
	var wallet, hash sql.NullString
	var block sql.NullInt64
	if p := v.Provenance; p != nil {
		wallet = sql.NullString{String: p.WalletAddress, Valid: p.WalletAddress != ""}
		hash = sql.NullString{String: p.TransactionHash, Valid: p.TransactionHash != ""}
		block = sql.NullInt64{Int64: int64(p.BlockNumber), Valid: p.BlockNumber != 0}
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO votes (user_id, proposal_id, supports, wallet_address, transaction_hash, block_number)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`,
		v.UserID, v.ProposalID, v.Supports, wallet, hash, block,
	).Scan(&v.ID, &v.CreatedAt)
	if constraint, ok := db.UniqueViolation(err); ok {
		switch constraint {
		case constraintTxHash:
			return domain.ErrTransactionAlreadyUsed
		default:
			return domain.ErrDuplicateVote
		}
	}
	if err != nil {
		return fmt.Errorf("insert vote: %w", err)
	}
	return nil
}

// GetByUserAndProposal returns the user's vote on the proposal, or nil if none.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByUserAndProposal(ctx context.Context, userID, proposalID int64) (*domain.Vote, error) {
	return scanVote(r.db.QueryRowContext(ctx, "SELECT "+voteColumns+" FROM votes WHERE user_id = $1 AND proposal_id = $2", userID, proposalID))
}

// GetByTransactionHash returns the vote backed by hash, or nil if none.
func (r *PostgresRepository) GetByTransactionHash(ctx context.Context, hash string) (*domain.Vote, error) {
	return scanVote(r.db.QueryRowContext(ctx, "SELECT "+voteColumns+" FROM votes WHERE transaction_hash = $1", hash))
}

// CountByProposal aggregates the proposal's votes by choice.
func (r *PostgresRepository) CountByProposal(ctx context.Context, proposalID int64) (domain.Counts, error) {
	var c domain.Counts
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FILTER (WHERE supports), COUNT(*) FILTER (WHERE NOT supports)
		 FROM votes WHERE proposal_id = $1`, proposalID,
	).Scan(&c.Yes, &c.No)
	return c, err
}

// CountByProposals aggregates votes for several proposals in one grouped query.
func (r *PostgresRepository) CountByProposals(ctx context.Context, proposalIDs []int64) (map[int64]domain.Counts, error) {
	out := make(map[int64]domain.Counts, len(proposalIDs))
	if len(proposalIDs) == 0 {
		return out, nil
	}
	for _, id := range proposalIDs {
		out[id] = domain.Counts{}
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT proposal_id, COUNT(*) FILTER (WHERE supports), COUNT(*) FILTER (WHERE NOT supports)
		 FROM votes WHERE proposal_id = ANY($1) GROUP BY proposal_id`, proposalIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id int64
			c  domain.Counts
		)
		if err := rows.Scan(&id, &c.Yes, &c.No); err != nil {
			return nil, err
		}
		out[id] = c
	}
	return out, rows.Err()
}

func scanVote(row *sql.Row) (*domain.Vote, error) {
	var (
		v            domain.Vote
		wallet, hash sql.NullString
		block        sql.NullInt64
	)
	err := row.Scan(&v.ID, &v.UserID, &v.ProposalID, &v.Supports, &wallet, &hash, &block, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if wallet.Valid || hash.Valid {
		v.Provenance = &domain.Provenance{
			WalletAddress:   wallet.String,
			TransactionHash: hash.String,
			BlockNumber:     uint64(block.Int64),
		}
	}
	return &v, nil
}
