package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrUserAlreadyExists is returned by Create when the wallet address, username or email is already taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned by writes addressed to a user id that does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrWalletConflict is returned when a user claims a wallet owned by someone else, or a second wallet.
	ErrWalletConflict = errors.New("wallet address is linked to another user")
)

// User is a voter account. Wallet-only users are provisioned lazily on their first verified vote.
type User struct {
	ID            int64
	WalletAddress string // optional, lowercase hex
	Username      string // optional
	Email         string // optional
	Role          Role
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	u.WalletAddress = strings.ToLower(strings.TrimSpace(u.WalletAddress))
	if u.WalletAddress == "" && u.Username == "" && u.Email == "" {
		return errors.New("one of wallet address, username or email is required")
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// NewWalletUser returns a minimal user keyed only by its wallet address.
func NewWalletUser(wallet string, now time.Time) *User {
	return &User{
		WalletAddress: strings.ToLower(strings.TrimSpace(wallet)),
		Role:          RoleUser,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
