package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/vincent-24/GlassBallots-sub001/internal/eligibility"
	membershipdomain "github.com/vincent-24/GlassBallots-sub001/internal/membership/domain"
	"github.com/vincent-24/GlassBallots-sub001/internal/policy/engine"
	proposaldomain "github.com/vincent-24/GlassBallots-sub001/internal/proposal/domain"
	userdomain "github.com/vincent-24/GlassBallots-sub001/internal/user/domain"
	"github.com/vincent-24/GlassBallots-sub001/internal/vote/domain"
	"github.com/vincent-24/GlassBallots-sub001/internal/vote/repository"
)

type mockProposals map[int64]*proposaldomain.Proposal

func (m mockProposals) GetByID(ctx context.Context, id int64) (*proposaldomain.Proposal, error) {
	return m[id], nil
}

type membershipGetter struct{}

func (membershipGetter) GetApprovedMembership(ctx context.Context, userID, orgID int64) (*membershipdomain.Membership, error) {
	return nil, nil
}

// allowAll approves every vote so that only the store decides.
type allowAll struct{}

func (allowAll) CanVote(ctx context.Context, userID, proposalID int64) (*eligibility.Decision, error) {
	return &eligibility.Decision{Allowed: true}, nil
}

// mockUserRepo simulates a concurrent provisioner winning the race on the first Create.
type mockUserRepo struct {
	mu        sync.Mutex
	byWallet  map[string]*userdomain.User
	nextID    int64
	loseRace  bool
	createErr error
}

func (m *mockUserRepo) GetByWallet(ctx context.Context, address string) (*userdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byWallet[address], nil
}

func (m *mockUserRepo) Create(ctx context.Context, u *userdomain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if m.loseRace {
		m.loseRace = false
		m.nextID++
		m.byWallet[u.WalletAddress] = &userdomain.User{ID: m.nextID, WalletAddress: u.WalletAddress}
		return userdomain.ErrUserAlreadyExists
	}
	if _, ok := m.byWallet[u.WalletAddress]; ok {
		return userdomain.ErrUserAlreadyExists
	}
	m.nextID++
	u.ID = m.nextID
	m.byWallet[u.WalletAddress] = u
	return nil
}

func (m *mockUserRepo) LinkWallet(ctx context.Context, userID int64, address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loseRace {
		m.loseRace = false
		m.byWallet[address] = &userdomain.User{ID: 99, WalletAddress: address}
		return userdomain.ErrUserAlreadyExists
	}
	if _, ok := m.byWallet[address]; ok {
		return userdomain.ErrUserAlreadyExists
	}
	for w, u := range m.byWallet {
		if u.ID == userID && w != address {
			return userdomain.ErrWalletConflict
		}
	}
	m.byWallet[address] = &userdomain.User{ID: userID, WalletAddress: address}
	return nil
}

func newResolver(t *testing.T, proposals mockProposals, votes eligibility.VoteLookup) *eligibility.Resolver {
	t.Helper()
	policy, err := engine.NewOPAEvaluator(context.Background())
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	return eligibility.NewResolver(proposals, membershipGetter{}, votes, policy)
}

func TestRecorder_Record(t *testing.T) {
	votes := repository.NewMemoryRepository()
	proposals := mockProposals{
		1: {ID: 1, Title: "open", AllowedVoters: proposaldomain.AllVoters()},
		2: {ID: 2, Title: "restricted", AllowedVoters: proposaldomain.OnlyVoters(7)},
	}
	rec := NewRecorder(votes, &mockUserRepo{byWallet: map[string]*userdomain.User{}}, newResolver(t, proposals, votes))
	ctx := context.Background()

	v, err := rec.Record(ctx, 7, 1, true, nil)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if v.ID == 0 || v.UserID != 7 || !v.Supports {
		t.Errorf("vote = %+v", v)
	}

	if _, err := rec.Record(ctx, 7, 1, false, nil); !errors.Is(err, domain.ErrDuplicateVote) {
		t.Errorf("second Record err = %v, want ErrDuplicateVote", err)
	}

	_, err = rec.Record(ctx, 9, 2, true, nil)
	var ee *eligibility.Error
	if !errors.As(err, &ee) || ee.Code != eligibility.CodeNotAuthorized {
		t.Errorf("restricted Record err = %v, want NOT_AUTHORIZED", err)
	}
	if _, err := rec.Record(ctx, 7, 2, true, nil); err != nil {
		t.Errorf("listed Record: %v", err)
	}
	if votes.Len() != 2 {
		t.Errorf("stored votes = %d, want 2", votes.Len())
	}
}

func TestRecorder_Record_ConcurrentExactlyOnce(t *testing.T) {
	const n = 64
	for _, tc := range []struct {
		name  string
		check func(*testing.T, *repository.MemoryRepository) EligibilityChecker
	}{
		{"with eligibility fast path", func(t *testing.T, votes *repository.MemoryRepository) EligibilityChecker {
			return newResolver(t, mockProposals{1: {ID: 1, Title: "open", AllowedVoters: proposaldomain.AllVoters()}}, votes)
		}},
		{"store constraint only", func(t *testing.T, votes *repository.MemoryRepository) EligibilityChecker {
			return allowAll{}
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			votes := repository.NewMemoryRepository()
			rec := NewRecorder(votes, &mockUserRepo{byWallet: map[string]*userdomain.User{}}, tc.check(t, votes))

			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				successes int
				dupes     int
				others    []error
			)
			start := make(chan struct{})
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					<-start
					_, err := rec.Record(context.Background(), 42, 1, i%2 == 0, nil)
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						successes++
					case errors.Is(err, domain.ErrDuplicateVote):
						dupes++
					default:
						others = append(others, err)
					}
				}(i)
			}
			close(start)
			wg.Wait()

			if successes != 1 {
				t.Errorf("successes = %d, want 1", successes)
			}
			if dupes != n-1 {
				t.Errorf("duplicates = %d, want %d", dupes, n-1)
			}
			if len(others) != 0 {
				t.Errorf("unexpected errors: %v", others)
			}
			if votes.Len() != 1 {
				t.Errorf("stored votes = %d, want 1", votes.Len())
			}
		})
	}
}

func TestRecorder_ResolveWalletUser(t *testing.T) {
	const wallet = "0x1111111111111111111111111111111111111111"
	ctx := context.Background()

	t.Run("existing", func(t *testing.T) {
		users := &mockUserRepo{byWallet: map[string]*userdomain.User{wallet: {ID: 5, WalletAddress: wallet}}}
		id, err := NewRecorder(nil, users, allowAll{}).ResolveWalletUser(ctx, wallet)
		if err != nil || id != 5 {
			t.Errorf("ResolveWalletUser = (%d, %v), want (5, nil)", id, err)
		}
	})

	t.Run("provisioned", func(t *testing.T) {
		users := &mockUserRepo{byWallet: map[string]*userdomain.User{}}
		id, err := NewRecorder(nil, users, allowAll{}).ResolveWalletUser(ctx, wallet)
		if err != nil || id == 0 {
			t.Fatalf("ResolveWalletUser = (%d, %v)", id, err)
		}
		if u := users.byWallet[wallet]; u == nil || u.Username != "" || u.Email != "" {
			t.Errorf("provisioned user = %+v, want wallet-only user", u)
		}
	})

	t.Run("lost provisioning race", func(t *testing.T) {
		users := &mockUserRepo{byWallet: map[string]*userdomain.User{}, loseRace: true}
		id, err := NewRecorder(nil, users, allowAll{}).ResolveWalletUser(ctx, wallet)
		if err != nil {
			t.Fatalf("ResolveWalletUser: %v", err)
		}
		if winner := users.byWallet[wallet]; winner == nil || winner.ID != id {
			t.Errorf("id = %d, want winner's id", id)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		users := &mockUserRepo{byWallet: map[string]*userdomain.User{}, createErr: errors.New("db down")}
		if _, err := NewRecorder(nil, users, allowAll{}).ResolveWalletUser(ctx, wallet); err == nil {
			t.Error("ResolveWalletUser should propagate store errors")
		}
	})
}

func TestRecorder_ClaimWallet(t *testing.T) {
	const (
		wallet = "0x1111111111111111111111111111111111111111"
		other  = "0x2222222222222222222222222222222222222222"
	)
	tests := []struct {
		name      string
		owners    map[string]*userdomain.User
		loseRace  bool
		userID    int64
		wantErr   error
		wantOwner int64
	}{
		{"already linked to caller", map[string]*userdomain.User{wallet: {ID: 5, WalletAddress: wallet}}, false, 5, nil, 5},
		{"linked to another user", map[string]*userdomain.User{wallet: {ID: 5, WalletAddress: wallet}}, false, 6, userdomain.ErrWalletConflict, 5},
		{"unowned wallet is linked", map[string]*userdomain.User{}, false, 6, nil, 6},
		{"caller holds another wallet", map[string]*userdomain.User{other: {ID: 6, WalletAddress: other}}, false, 6, userdomain.ErrWalletConflict, 0},
		{"lost link race", map[string]*userdomain.User{}, true, 6, userdomain.ErrWalletConflict, 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &mockUserRepo{byWallet: tt.owners, loseRace: tt.loseRace}
			err := NewRecorder(nil, users, allowAll{}).ClaimWallet(context.Background(), tt.userID, wallet)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ClaimWallet err = %v, want %v", err, tt.wantErr)
			}
			var got int64
			if u := users.byWallet[wallet]; u != nil {
				got = u.ID
			}
			if got != tt.wantOwner {
				t.Errorf("wallet owner = %d, want %d", got, tt.wantOwner)
			}
		})
	}
}
