package otel

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestNewProviders_EmptyEndpoint(t *testing.T) {
	ctx := context.Background()
	for _, endpoint := range []string{"", "   "} {
		p, err := NewProviders(ctx, endpoint, "glassballots-test", false)
		if err != nil {
			t.Fatalf("NewProviders(%q): %v", endpoint, err)
		}
		if p.TracerProvider == nil || p.MeterProvider == nil || p.LoggerProvider == nil {
			t.Error("all providers should be set")
		}
		if err := p.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown: %v", err)
		}
	}
}

func TestNewProviders_InvalidEndpoint(t *testing.T) {
	for _, endpoint := range []string{"http://", "http://[invalid"} {
		if _, err := NewProviders(context.Background(), endpoint, "glassballots-test", false); err == nil {
			t.Errorf("NewProviders(%q) should return error", endpoint)
		}
	}
}

func TestOTLPTarget(t *testing.T) {
	tests := []struct {
		endpoint      string
		wantTarget    string
		wantPlaintext bool
	}{
		{"localhost:4317", "localhost:4317", true},
		{"http://collector:4317", "collector:4317", true},
		{"https://collector:4317/v1/traces", "collector:4317", false},
	}
	for _, tt := range tests {
		target, plaintext, err := otlpTarget(tt.endpoint)
		if err != nil {
			t.Fatalf("otlpTarget(%q): %v", tt.endpoint, err)
		}
		if target != tt.wantTarget || plaintext != tt.wantPlaintext {
			t.Errorf("otlpTarget(%q) = (%q, %v), want (%q, %v)", tt.endpoint, target, plaintext, tt.wantTarget, tt.wantPlaintext)
		}
	}
}

func TestSetGlobal(t *testing.T) {
	p, err := NewProviders(context.Background(), "", "glassballots-test", false)
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	old := otel.GetTracerProvider()
	defer otel.SetTracerProvider(old)
	p.SetGlobal()
	if otel.GetTracerProvider() != p.TracerProvider {
		t.Error("global TracerProvider should be the new provider")
	}
}
