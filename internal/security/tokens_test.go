package security

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"testing"
	"time"
)

func TestTokenProvider_IssueAndValidate(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	token, exp, err := p.IssueAccess(Identity{UserID: "7", OrgID: "10", SessionID: "s-1"})
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if time.Until(exp) <= 0 || time.Until(exp) > 15*time.Minute {
		t.Errorf("expiresAt = %v, want within access TTL", exp)
	}
	id, err := p.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	want := Identity{UserID: "7", OrgID: "10", SessionID: "s-1"}
	if id != want {
		t.Errorf("identity = %+v, want %+v", id, want)
	}
}

func TestTokenProvider_SessionFallsBackToJTI(t *testing.T) {
	p, _ := NewTestTokenProvider()
	token, _, err := p.IssueAccess(Identity{UserID: "7"})
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	id, err := p.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if id.SessionID == "" || id.OrgID != "" {
		t.Errorf("identity = %+v, want jti session and no org", id)
	}
}

func TestTokenProvider_ValidateAccessInvalid(t *testing.T) {
	p, _ := NewTestTokenProvider()
	good, _, _ := p.IssueAccess(Identity{UserID: "7"})

	otherAudience := NewTokenProvider(p.privateKey, p.publicKey, "test-issuer", "other", time.Minute)
	otherIssuer := NewTokenProvider(p.privateKey, p.publicKey, "other", "test-audience", time.Minute)
	noSubject, _, _ := p.IssueAccess(Identity{})

	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	foreign := NewTokenProvider(ecKey, &ecKey.PublicKey, "test-issuer", "test-audience", time.Minute)
	foreignToken, _, err := foreign.IssueAccess(Identity{UserID: "7"})
	if err != nil {
		t.Fatalf("IssueAccess ES256: %v", err)
	}

	tests := []struct {
		name     string
		provider *TokenProvider
		token    string
	}{
		{"garbage", p, "not-a-jwt"},
		{"empty", p, ""},
		{"wrong audience", otherAudience, good},
		{"wrong issuer", otherIssuer, good},
		{"missing subject", p, noSubject},
		{"signed by another key", p, foreignToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.provider.ValidateAccess(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ValidateAccess err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestTokenProvider_ES256RoundTrip(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	p := NewTokenProvider(key, &key.PublicKey, "iss", "aud", 0)
	token, _, err := p.IssueAccess(Identity{UserID: "42"})
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	id, err := p.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if id.UserID != "42" {
		t.Errorf("user_id = %q, want 42", id.UserID)
	}
}

func TestTokenProvider_ValidateOnly(t *testing.T) {
	p, _ := NewTestTokenProvider()
	verifier := NewTokenProvider(nil, p.publicKey, "test-issuer", "test-audience", time.Minute)
	if _, _, err := verifier.IssueAccess(Identity{UserID: "7"}); !errors.Is(err, ErrSigningDisabled) {
		t.Errorf("IssueAccess err = %v, want ErrSigningDisabled", err)
	}
	token, _, _ := p.IssueAccess(Identity{UserID: "7"})
	if _, err := verifier.ValidateAccess(token); err != nil {
		t.Errorf("ValidateAccess: %v", err)
	}
}
