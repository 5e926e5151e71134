package handler

import (
	"context"
	"log"

	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// Pinger checks database connectivity. *sql.DB implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker checks that the eligibility policy still evaluates. *engine.OPAEvaluator implements it.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// CachePinger checks the verified-transaction cache. *cache.Cache implements it.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// LedgerHead reads the current block height. *ethrpc.Client implements it.
type LedgerHead interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// Checks are the readiness probes. Nil fields are skipped.
type Checks struct {
	DB     Pinger
	Policy PolicyChecker
	Cache  CachePinger
	Ledger LedgerHead
}

// Server implements grpc.health.v1.Health. Check reports NOT_SERVING when any configured probe fails;
// the RPC itself only fails for unknown service names.
type Server struct {
	healthpb.UnimplementedHealthServer
	checks   Checks
	services map[string]bool
}

// NewServer returns a health server answering for the overall server ("") and the named services.
func NewServer(checks Checks, services ...string) *Server {
	known := map[string]bool{"": true}
	for _, s := range services {
		known[s] = true
	}
	return &Server{checks: checks, services: known}
}

// Check runs every probe.
func (s *Server) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if !s.services[req.GetService()] {
		return nil, status.Error(codes.NotFound, "unknown service")
	}
	if err := s.probe(ctx); err != nil {
		log.Printf("health: %v", err)
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}

func (s *Server) probe(ctx context.Context) error {
	c := s.checks
	if c.DB != nil {
		if err := c.DB.PingContext(ctx); err != nil {
			return probeError("database", err)
		}
	}
	if c.Cache != nil {
		if err := c.Cache.Ping(ctx); err != nil {
			return probeError("cache", err)
		}
	}
	if c.Ledger != nil {
		if _, err := c.Ledger.BlockNumber(ctx); err != nil {
			return probeError("ledger", err)
		}
	}
	if c.Policy != nil {
		if err := c.Policy.HealthCheck(ctx); err != nil {
			return probeError("policy", err)
		}
	}
	return nil
}

type checkError struct {
	probe string
	err   error
}

func (e *checkError) Error() string { return e.probe + " check failed: " + e.err.Error() }
func (e *checkError) Unwrap() error { return e.err }

func probeError(probe string, err error) error {
	return &checkError{probe: probe, err: err}
}
