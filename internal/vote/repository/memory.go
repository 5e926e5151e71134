package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vincent-24/GlassBallots-sub001/internal/vote/domain"
)

// MemoryRepository is an in-process Repository that enforces the same uniqueness rules as the votes table.
// It backs tests and local tooling.
type MemoryRepository struct {
	mu     sync.Mutex
	nextID int64
	byPair map[string]*domain.Vote
	byHash map[string]*domain.Vote
	// FailInsert, when set, is returned by every Insert.
	FailInsert error
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byPair: map[string]*domain.Vote{}, byHash: map[string]*domain.Vote{}}
}

func pairKey(userID, proposalID int64) string {
	return fmt.Sprintf("%d:%d", userID, proposalID)
}

// Insert records v atomically with respect to other Inserts.
func (m *MemoryRepository) Insert(ctx context.Context, v *domain.Vote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailInsert != nil {
		return m.FailInsert
	}
	key := pairKey(v.UserID, v.ProposalID)
	if _, ok := m.byPair[key]; ok {
		return domain.ErrDuplicateVote
	}
	var hash string
	if v.Provenance != nil {
		hash = v.Provenance.TransactionHash
	}
	if hash != "" {
		if _, ok := m.byHash[hash]; ok {
			return domain.ErrTransactionAlreadyUsed
		}
	}
	m.nextID++
	v.ID = m.nextID
	v.CreatedAt = time.Now().UTC()
	stored := *v
	m.byPair[key] = &stored
	if hash != "" {
		m.byHash[hash] = &stored
	}
	return nil
}

// GetByUserAndProposal returns the vote or nil.
func (m *MemoryRepository) GetByUserAndProposal(ctx context.Context, userID, proposalID int64) (*domain.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyVote(m.byPair[pairKey(userID, proposalID)]), nil
}

// GetByTransactionHash returns the vote backed by hash or nil.
func (m *MemoryRepository) GetByTransactionHash(ctx context.Context, hash string) (*domain.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyVote(m.byHash[hash]), nil
}

// CountByProposal counts stored rows for the proposal.
func (m *MemoryRepository) CountByProposal(ctx context.Context, proposalID int64) (domain.Counts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var c domain.Counts
	for _, v := range m.byPair {
		if v.ProposalID != proposalID {
			continue
		}
		if v.Supports {
			c.Yes++
		} else {
			c.No++
		}
	}
	return c, nil
}

// CountByProposals counts stored rows for each proposal.
func (m *MemoryRepository) CountByProposals(ctx context.Context, proposalIDs []int64) (map[int64]domain.Counts, error) {
	out := make(map[int64]domain.Counts, len(proposalIDs))
	for _, id := range proposalIDs {
		c, _ := m.CountByProposal(ctx, id)
		out[id] = c
	}
	return out, nil
}

// Len returns the number of stored votes.
func (m *MemoryRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byPair)
}

func copyVote(v *domain.Vote) *domain.Vote {
	if v == nil {
		return nil
	}
	c := *v
	if v.Provenance != nil {
		p := *v.Provenance
		c.Provenance = &p
	}
	return &c
}
