package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"github.com/vincent-24/GlassBallots-sub001/internal/audit"
	auditrepo "github.com/vincent-24/GlassBallots-sub001/internal/audit/repository"
	ballot "github.com/vincent-24/GlassBallots-sub001/internal/ballot/service"
	"github.com/vincent-24/GlassBallots-sub001/internal/config"
	"github.com/vincent-24/GlassBallots-sub001/internal/db"
	"github.com/vincent-24/GlassBallots-sub001/internal/eligibility"
	healthhandler "github.com/vincent-24/GlassBallots-sub001/internal/health/handler"
	"github.com/vincent-24/GlassBallots-sub001/internal/ledger"
	"github.com/vincent-24/GlassBallots-sub001/internal/ledger/ethrpc"
	membershiprepo "github.com/vincent-24/GlassBallots-sub001/internal/membership/repository"
	membershipsvc "github.com/vincent-24/GlassBallots-sub001/internal/membership/service"
	"github.com/vincent-24/GlassBallots-sub001/internal/policy/engine"
	proposalrepo "github.com/vincent-24/GlassBallots-sub001/internal/proposal/repository"
	"github.com/vincent-24/GlassBallots-sub001/internal/security"
	"github.com/vincent-24/GlassBallots-sub001/internal/server"
	"github.com/vincent-24/GlassBallots-sub001/internal/server/interceptors"
	"github.com/vincent-24/GlassBallots-sub001/internal/tally"
	"github.com/vincent-24/GlassBallots-sub001/internal/telemetry"
	telemetryotel "github.com/vincent-24/GlassBallots-sub001/internal/telemetry/otel"
	"github.com/vincent-24/GlassBallots-sub001/internal/telemetry/producer"
	userrepo "github.com/vincent-24/GlassBallots-sub001/internal/user/repository"
	"github.com/vincent-24/GlassBallots-sub001/internal/verification"
	"github.com/vincent-24/GlassBallots-sub001/internal/verification/cache"
	voterepo "github.com/vincent-24/GlassBallots-sub001/internal/vote/repository"
	votesvc "github.com/vincent-24/GlassBallots-sub001/internal/vote/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.LedgerRPCURL == "" || cfg.BallotContractAddress == "" {
		log.Fatal("LEDGER_RPC_URL and BALLOT_CONTRACT_ADDRESS are required")
	}

	ctx := context.Background()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	chain, err := ethrpc.Dial(ctx, cfg.LedgerRPCURL, cfg.LedgerChainID)
	if err != nil {
		log.Fatalf("ledger: %v", err)
	}
	defer chain.Close()

	policy, err := engine.NewOPAEvaluator(ctx)
	if err != nil {
		log.Fatalf("policy: %v", err)
	}

	var claims *cache.Cache
	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		claims = cache.New(rdb, cfg.VerifiedTTL())
	} else {
		log.Println("REDIS_URL not set; RetryRecording will report claims as not cached")
	}

	kafkaProducer := producer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.VoteEventsTopic)
	events := eventEmitter(providers, kafkaProducer)
	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(database), interceptors.ClientIP)

	memberships := membershipsvc.NewMembershipService(membershiprepo.NewPostgresRepository(database))
	svc := newBallotService(cfg, database, chain, policy, memberships, claims, events, auditLogger)

	checks := healthhandler.Checks{DB: database, Policy: policy, Ledger: chain}
	if claims != nil {
		checks.Cache = claims
	}

	var tokens interceptors.AccessValidator
	if cfg.JWTPublicKey != "" {
		tp, err := security.LoadVerifier(cfg.JWTPrivateKey, cfg.JWTPublicKey, cfg.JWTIssuer, cfg.JWTAudience, security.TokenTTL{Access: cfg.AccessTTL()})
		if err != nil {
			log.Fatalf("jwt keys: %v", err)
		}
		tokens = tp
	} else {
		log.Println("JWT_PUBLIC_KEY not set; only public methods are callable")
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptors.AuthUnary(tokens, server.PublicMethods()),
			interceptors.AuditUnary(auditLogger, server.SkipMethods()),
			interceptors.TelemetryUnary(events, server.SkipMethods()),
		),
	)
	server.RegisterServices(s, server.Deps{
		Ballot:      svc,
		Memberships: memberships,
		Health:      checks,
	})

	go func() {
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
		if err := s.Serve(lis); err != nil {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down gRPC server...")
	drain := cfg.ShutdownDrainDuration()
	stopped := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(drain):
		log.Println("graceful stop timed out; forcing")
		s.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()
	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			log.Printf("kafka producer close: %v", err)
		}
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("otel shutdown: %v", err)
	}
	log.Println("gRPC server stopped")
}

func eventEmitter(providers *telemetryotel.Providers, kafkaProducer *producer.KafkaProducer) telemetry.EventEmitter {
	emitters := []telemetry.EventEmitter{telemetryotel.NewEventEmitter(providers.LoggerProvider)}
	if kafkaProducer != nil {
		emitters = append(emitters, kafkaProducer)
	}
	return telemetry.Fanout(emitters...)
}

func newBallotService(
	cfg *config.Config,
	database *sql.DB,
	chain ledger.Client,
	policy engine.Evaluator,
	memberships eligibility.MembershipGetter,
	claims *cache.Cache,
	events telemetry.EventEmitter,
	auditLogger audit.AuditLogger,
) *ballot.BallotService {
	proposals := proposalrepo.NewPostgresRepository(database)
	users := userrepo.NewPostgresRepository(database)
	votes := voterepo.NewPostgresRepository(database)

	resolver := eligibility.NewResolver(proposals, memberships, votes, policy)
	waiter := ledger.NewWaiter(chain, cfg.LedgerConfirmations, cfg.ConfirmationTimeout(), cfg.PollInterval())

	deps := ballot.Deps{
		Proposals:   proposals,
		Users:       users,
		Recorder:    votesvc.NewRecorder(votes, users, resolver),
		Votes:       votes,
		Verifier:    verification.NewVerifier(waiter, cfg.BallotContractAddress),
		Eligibility: resolver,
		Tallies:     tally.NewAggregator(votes),
		Events:      events,
		Audit:       auditLogger,
	}
	if claims != nil {
		deps.Claims = claims
	}
	return ballot.NewBallotService(deps)
}
