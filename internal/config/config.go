// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// GRPCAddr is the address the gRPC server listens on (e.g. :8080).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// RedisURL is the verified-transaction cache (redis://host:6379/0). Empty disables the cache.
	RedisURL string `mapstructure:"REDIS_URL"`

	// LedgerRPCURL is the JSON-RPC endpoint of the chain carrying hybrid votes.
	LedgerRPCURL  string `mapstructure:"LEDGER_RPC_URL"`
	LedgerChainID int64  `mapstructure:"LEDGER_CHAIN_ID"`
	// BallotContractAddress is the voting contract hybrid transactions must target.
	BallotContractAddress string `mapstructure:"BALLOT_CONTRACT_ADDRESS"`
	// LedgerConfirmations is the block depth required before a transaction counts as confirmed.
	LedgerConfirmations       uint64 `mapstructure:"LEDGER_CONFIRMATIONS"`
	LedgerConfirmationTimeout string `mapstructure:"LEDGER_CONFIRMATION_TIMEOUT"`
	LedgerPollInterval        string `mapstructure:"LEDGER_POLL_INTERVAL"`
	// VerifiedTxTTL is how long a verified claim stays retryable (e.g. "24h").
	VerifiedTxTTL string `mapstructure:"VERIFIED_TX_TTL"`

	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA). Optional; only cmd/seed signs tokens.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key used to verify access tokens. Empty disables authentication.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	JWTIssuer    string `mapstructure:"JWT_ISSUER"`
	JWTAudience  string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`

	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// KafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092"). When set,
	// vote events are published to VoteEventsTopic.
	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"`
	VoteEventsTopic string `mapstructure:"VOTE_EVENTS_TOPIC"`

	// Worker-only: Loki URL for the event worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the event worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`

	// OTLPEndpoint is the OTel collector gRPC endpoint. Empty keeps telemetry in-process.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	ServiceName  string `mapstructure:"OTEL_SERVICE_NAME"`
	// ShutdownDrain bounds graceful stop and the telemetry flush that follows it (e.g. "10s").
	ShutdownDrain string `mapstructure:"SHUTDOWN_DRAIN"`
}

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("GRPC_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("LEDGER_RPC_URL", "")
	v.SetDefault("LEDGER_CHAIN_ID", 1)
	v.SetDefault("BALLOT_CONTRACT_ADDRESS", "")
	v.SetDefault("LEDGER_CONFIRMATIONS", 1)
	v.SetDefault("LEDGER_CONFIRMATION_TIMEOUT", "2m")
	v.SetDefault("LEDGER_POLL_INTERVAL", "2s")
	v.SetDefault("VERIFIED_TX_TTL", "24h")
	v.SetDefault("JWT_PRIVATE_KEY", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("JWT_ISSUER", "glassballots-auth")
	v.SetDefault("JWT_AUDIENCE", "glassballots-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("VOTE_EVENTS_TOPIC", "glassballots-votes")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "glassballots-event-worker")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "glassballots")
	v.SetDefault("SHUTDOWN_DRAIN", "10s")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.GRPCAddr == "" {
		return errors.New("config: GRPC_ADDR must be set")
	}
	if c.LedgerChainID <= 0 {
		return errors.New("config: LEDGER_CHAIN_ID must be positive")
	}
	if c.LedgerConfirmations < 1 {
		return errors.New("config: LEDGER_CONFIRMATIONS must be at least 1")
	}
	if c.BallotContractAddress != "" && !addressPattern.MatchString(c.BallotContractAddress) {
		return fmt.Errorf("config: BALLOT_CONTRACT_ADDRESS %q is not a 0x-prefixed 20-byte hex address", c.BallotContractAddress)
	}
	if c.Env == "production" && c.JWTPublicKey == "" {
		return errors.New("config: JWT_PUBLIC_KEY must be set when APP_ENV=production")
	}
	return nil
}

func duration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	return duration(c.JWTAccessTTL, 15*time.Minute)
}

// ConfirmationTimeout returns the ledger confirmation wait. Returns 2m if unset or invalid.
func (c *Config) ConfirmationTimeout() time.Duration {
	return duration(c.LedgerConfirmationTimeout, 2*time.Minute)
}

// PollInterval returns the ledger polling interval. Returns 2s if unset or invalid.
func (c *Config) PollInterval() time.Duration {
	return duration(c.LedgerPollInterval, 2*time.Second)
}

// VerifiedTTL returns how long verified claims are cached. Returns 24h if unset or invalid.
func (c *Config) VerifiedTTL() time.Duration {
	return duration(c.VerifiedTxTTL, 24*time.Hour)
}

// ShutdownDrainDuration returns the graceful-stop budget. Returns 10s if unset or invalid.
func (c *Config) ShutdownDrainDuration() time.Duration {
	return duration(c.ShutdownDrain, 10*time.Second)
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if event publishing is enabled (non-empty list) and to create the producer.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
