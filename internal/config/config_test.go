package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("GRPC_ADDR", ":8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.GRPCAddr != ":8080" {
		t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, ":8080")
	}
	if cfg.LedgerChainID != 1 {
		t.Errorf("LedgerChainID = %d, want 1", cfg.LedgerChainID)
	}
	if cfg.LedgerConfirmations != 1 {
		t.Errorf("LedgerConfirmations = %d, want 1", cfg.LedgerConfirmations)
	}
	if cfg.VoteEventsTopic != "glassballots-votes" {
		t.Errorf("VoteEventsTopic = %q, want %q", cfg.VoteEventsTopic, "glassballots-votes")
	}
	if cfg.JWTIssuer != "glassballots-auth" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "glassballots-auth")
	}
	if cfg.ServiceName != "glassballots" {
		t.Errorf("ServiceName = %q, want %q", cfg.ServiceName, "glassballots")
	}
	if cfg.RedisURL != "" {
		t.Errorf("RedisURL = %q, want empty", cfg.RedisURL)
	}
	if got := cfg.ConfirmationTimeout(); got != 2*time.Minute {
		t.Errorf("ConfirmationTimeout() = %v, want 2m", got)
	}
	if got := cfg.PollInterval(); got != 2*time.Second {
		t.Errorf("PollInterval() = %v, want 2s", got)
	}
	if got := cfg.VerifiedTTL(); got != 24*time.Hour {
		t.Errorf("VerifiedTTL() = %v, want 24h", got)
	}
	if got := cfg.ShutdownDrainDuration(); got != 10*time.Second {
		t.Errorf("ShutdownDrainDuration() = %v, want 10s", got)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("GRPC_ADDR", ":9090")
	os.Setenv("LEDGER_CHAIN_ID", "11155111")
	os.Setenv("LEDGER_CONFIRMATIONS", "3")
	os.Setenv("BALLOT_CONTRACT_ADDRESS", "0x5FbDB2315678afecb367f032d93F642f64180aa3")
	os.Setenv("VERIFIED_TX_TTL", "1h")
	os.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GRPCAddr != ":9090" {
		t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, ":9090")
	}
	if cfg.LedgerChainID != 11155111 {
		t.Errorf("LedgerChainID = %d, want 11155111", cfg.LedgerChainID)
	}
	if cfg.LedgerConfirmations != 3 {
		t.Errorf("LedgerConfirmations = %d, want 3", cfg.LedgerConfirmations)
	}
	if got := cfg.VerifiedTTL(); got != time.Hour {
		t.Errorf("VerifiedTTL() = %v, want 1h", got)
	}
	if !cfg.OTLPInsecure {
		t.Error("OTLPInsecure should be true")
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"zero confirmations", map[string]string{"LEDGER_CONFIRMATIONS": "0"}},
		{"negative chain id", map[string]string{"LEDGER_CHAIN_ID": "-1"}},
		{"short contract address", map[string]string{"BALLOT_CONTRACT_ADDRESS": "0x1234"}},
		{"contract address without prefix", map[string]string{"BALLOT_CONTRACT_ADDRESS": "5FbDB2315678afecb367f032d93F642f64180aa3"}},
		{"production without public key", map[string]string{"APP_ENV": "production"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("GRPC_ADDR", ":8080")
			for k, v := range tt.env {
				os.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Load should fail")
			}
		})
	}
}

func TestDurationAccessors_Fallbacks(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"30m", 30 * time.Minute},
		{"invalid", 15 * time.Minute},
		{"0s", 15 * time.Minute},
		{"-1h", 15 * time.Minute},
		{"", 15 * time.Minute},
	}
	for _, tt := range tests {
		cfg := &Config{JWTAccessTTL: tt.value}
		if got := cfg.AccessTTL(); got != tt.want {
			t.Errorf("AccessTTL(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
	cfg := &Config{LedgerPollInterval: "500ms", LedgerConfirmationTimeout: "bogus", ShutdownDrain: "3s"}
	if got := cfg.PollInterval(); got != 500*time.Millisecond {
		t.Errorf("PollInterval() = %v, want 500ms", got)
	}
	if got := cfg.ConfirmationTimeout(); got != 2*time.Minute {
		t.Errorf("ConfirmationTimeout() = %v, want 2m", got)
	}
	if got := cfg.ShutdownDrainDuration(); got != 3*time.Second {
		t.Errorf("ShutdownDrainDuration() = %v, want 3s", got)
	}
}

func TestKafkaBrokersList(t *testing.T) {
	var nilCfg *Config
	if got := nilCfg.KafkaBrokersList(); got != nil {
		t.Errorf("nil config = %v, want nil", got)
	}
	cfg := &Config{KafkaBrokers: " kafka-1:9092, ,kafka-2:9092 "}
	got := cfg.KafkaBrokersList()
	if len(got) != 2 || got[0] != "kafka-1:9092" || got[1] != "kafka-2:9092" {
		t.Errorf("KafkaBrokersList() = %v", got)
	}
}
