package domain

import (
	"testing"
	"time"
)

func TestUser_Validate(t *testing.T) {
	u := &User{}
	if err := u.Validate(); err == nil {
		t.Error("Validate should fail without any identifier")
	}

	u = &User{WalletAddress: " 0xABCdef0000000000000000000000000000000001 "}
	if err := u.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if u.WalletAddress != "0xabcdef0000000000000000000000000000000001" {
		t.Errorf("WalletAddress = %q, want lowercase trimmed", u.WalletAddress)
	}
	if u.Role != RoleUser {
		t.Errorf("Role = %q, want %q", u.Role, RoleUser)
	}
}

func TestNewWalletUser(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	u := NewWalletUser("0xABCDEF0000000000000000000000000000000001", now)
	if u.WalletAddress != "0xabcdef0000000000000000000000000000000001" {
		t.Errorf("WalletAddress = %q", u.WalletAddress)
	}
	if u.Username != "" || u.Email != "" {
		t.Error("wallet user should carry no username or email")
	}
	if !u.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", u.CreatedAt, now)
	}
}
