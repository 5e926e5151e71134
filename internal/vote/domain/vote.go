package domain

import (
	"errors"
	"time"
)

var (
	// ErrDuplicateVote is returned when the user already has a vote on the proposal,
	// whether detected up front or by losing the insert race.
	ErrDuplicateVote = errors.New("vote already recorded for this user and proposal")
	// ErrTransactionAlreadyUsed is returned when a ledger transaction already backs another vote.
	ErrTransactionAlreadyUsed = errors.New("transaction already backs a recorded vote")
)

// Vote is an immutable ballot. At most one exists per (UserID, ProposalID).
type Vote struct {
	ID         int64
	UserID     int64
	ProposalID int64
	Supports   bool
	Provenance *Provenance // nil for direct votes
	CreatedAt  time.Time
}

// Provenance links a vote to the ledger transaction that carried it.
type Provenance struct {
	WalletAddress   string
	TransactionHash string
	BlockNumber     uint64
}

// Counts is the raw per-proposal aggregation of vote rows.
type Counts struct {
	Yes int64
	No  int64
}

// Total returns Yes + No.
func (c Counts) Total() int64 { return c.Yes + c.No }
