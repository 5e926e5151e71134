// seed inserts development data for local testing: an organization with an owner and an approved member,
// an unscoped proposal whose decision date has passed, and an org proposal restricted to the member.
// Idempotent: skips inserts if the dev owner wallet already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/vincent-24/GlassBallots-sub001/internal/config"
	"github.com/vincent-24/GlassBallots-sub001/internal/db"
	"github.com/vincent-24/GlassBallots-sub001/internal/ledger"
	membershipdomain "github.com/vincent-24/GlassBallots-sub001/internal/membership/domain"
	membershiprepo "github.com/vincent-24/GlassBallots-sub001/internal/membership/repository"
	orgdomain "github.com/vincent-24/GlassBallots-sub001/internal/organization/domain"
	orgrepo "github.com/vincent-24/GlassBallots-sub001/internal/organization/repository"
	proposaldomain "github.com/vincent-24/GlassBallots-sub001/internal/proposal/domain"
	proposalrepo "github.com/vincent-24/GlassBallots-sub001/internal/proposal/repository"
	"github.com/vincent-24/GlassBallots-sub001/internal/security"
	userdomain "github.com/vincent-24/GlassBallots-sub001/internal/user/domain"
	userrepo "github.com/vincent-24/GlassBallots-sub001/internal/user/repository"
)

const (
	ownerWallet  = "0x90f8bf6a479f320ead074411a4b0e7944ea8c9c1"
	memberWallet = "0xffcf8fdee72ac11b5c542428b35eef5769c409f0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	users := userrepo.NewPostgresRepository(conn)
	orgs := orgrepo.NewPostgresRepository(conn)
	memberships := membershiprepo.NewPostgresRepository(conn)
	proposals := proposalrepo.NewPostgresRepository(conn)

	existing, err := users.GetByWallet(ctx, ownerWallet)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Printf("Seed already applied (owner wallet %s exists). Skipping.", ownerWallet)
		os.Exit(0)
	}

	now := time.Now().UTC()

	owner := &userdomain.User{WalletAddress: ownerWallet, Username: "dev-owner", Email: "owner@example.com", Role: userdomain.RoleAdmin, CreatedAt: now, UpdatedAt: now}
	if err := users.Create(ctx, owner); err != nil {
		log.Fatalf("create owner: %v", err)
	}
	member := &userdomain.User{WalletAddress: memberWallet, Username: "dev-member", Email: "member@example.com", CreatedAt: now, UpdatedAt: now}
	if err := users.Create(ctx, member); err != nil {
		log.Fatalf("create member: %v", err)
	}

	org := &orgdomain.Org{Name: "GlassBallots Dev Council", CreatedAt: now}
	if err := orgs.Create(ctx, org); err != nil {
		log.Fatalf("create org: %v", err)
	}
	for _, m := range []*membershipdomain.Membership{
		{UserID: owner.ID, OrgID: org.ID, Role: membershipdomain.RoleOwner, Status: membershipdomain.StatusApproved, CreatedAt: now},
		{UserID: member.ID, OrgID: org.ID, Role: membershipdomain.RoleMember, Status: membershipdomain.StatusApproved, CreatedAt: now},
	} {
		if err := memberships.Create(ctx, m); err != nil {
			log.Fatalf("create membership for user %d: %v", m.UserID, err)
		}
	}

	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 0, 14)
	open := &proposaldomain.Proposal{
		Title:         "Extend library hours",
		Body:          "Keep the campus library open until midnight during exam weeks.",
		CreatedBy:     owner.ID,
		DecisionDate:  &past,
		Status:        proposaldomain.StatusActive,
		AllowedVoters: proposaldomain.AllVoters(),
		CreatedAt:     now,
	}
	if err := proposals.Create(ctx, open); err != nil {
		log.Fatalf("create unscoped proposal: %v", err)
	}
	orgID := org.ID
	restricted := &proposaldomain.Proposal{
		Title:          "Approve council budget",
		Body:           "Approve the quarterly council budget.",
		CreatedBy:      owner.ID,
		OrganizationID: &orgID,
		DecisionDate:   &future,
		Status:         proposaldomain.StatusActive,
		AllowedVoters:  proposaldomain.OnlyVoters(member.ID),
		CreatedAt:      now,
	}
	if err := proposals.Create(ctx, restricted); err != nil {
		log.Fatalf("create restricted proposal: %v", err)
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Owner: user %d wallet %s\n", owner.ID, ownerWallet)
	fmt.Printf("Member: user %d wallet %s\n", member.ID, memberWallet)
	fmt.Printf("Proposals: %d (unscoped, past decision date), %d (org %d, member only)\n", open.ID, restricted.ID, org.ID)

	calldata, err := ledger.EncodeVoteCall(big.NewInt(open.ID), true)
	if err != nil {
		log.Fatalf("encode calldata: %v", err)
	}
	fmt.Printf("vote(%d, true) calldata: %s\n", open.ID, hexutil.Encode(calldata))

	if cfg.JWTPrivateKey == "" || cfg.JWTPublicKey == "" {
		fmt.Println("JWT keys not set; no dev access token issued")
		return
	}
	tokens, err := security.LoadVerifier(cfg.JWTPrivateKey, cfg.JWTPublicKey, cfg.JWTIssuer, cfg.JWTAudience, security.TokenTTL{Access: cfg.AccessTTL()})
	if err != nil {
		log.Fatalf("jwt keys: %v", err)
	}
	token, expiresAt, err := tokens.IssueAccess(security.Identity{
		UserID:    strconv.FormatInt(member.ID, 10),
		OrgID:     strconv.FormatInt(org.ID, 10),
		SessionID: "seed",
	})
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	fmt.Printf("Member access token (expires %s):\n%s\n", expiresAt.Format(time.RFC3339), token)
}
