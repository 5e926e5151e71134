package server

import (
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	ballothandler "github.com/vincent-24/GlassBallots-sub001/internal/ballot/handler"
	healthhandler "github.com/vincent-24/GlassBallots-sub001/internal/health/handler"
)

// Deps holds service dependencies for gRPC handlers.
type Deps struct {
	// Ballot is the vote engine. If nil, ballot RPCs return Unimplemented.
	Ballot ballothandler.Ballot
	// Memberships answers org role checks for proposal reads and status changes.
	Memberships ballothandler.Memberships
	// Health holds readiness probes (DB, cache, ledger, policy). Nil probes are skipped.
	Health healthhandler.Checks
}

// PublicMethods may be called without a Bearer token. The hybrid path authenticates by ledger
// signature, and unscoped proposals are readable by anyone; handlers enforce org membership.
func PublicMethods() map[string]bool {
	return map[string]bool{
		"/grpc.health.v1.Health/Check":        true,
		"/grpc.health.v1.Health/Watch":        true,
		ballothandler.MethodSubmitVerifiedVote: true,
		ballothandler.MethodRetryRecording:     true,
		ballothandler.MethodGetTallies:         true,
		ballothandler.MethodListProposals:      true,
	}
}

// SkipMethods are not audited or reported as telemetry.
func SkipMethods() map[string]bool {
	return map[string]bool{
		"/grpc.health.v1.Health/Check": true,
		"/grpc.health.v1.Health/Watch": true,
	}
}

// RegisterServices registers all gRPC services with the given server.
//
// Service → handler mapping:
//   - ballot.v1.BallotService → internal/ballot/handler
//   - grpc.health.v1.Health   → internal/health/handler
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) {
	ballothandler.RegisterBallotServer(s, ballothandler.NewServer(deps.Ballot, deps.Memberships))
	healthpb.RegisterHealthServer(s, healthhandler.NewServer(deps.Health, ballothandler.ServiceName))
}
