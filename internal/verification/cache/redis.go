// Package cache keeps verified hybrid-vote claims in Redis so a failed recording can be retried
// without asking the ledger again.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "verified_tx:"

// Entry is a claim that passed verification.
type Entry struct {
	TransactionHash string    `json:"transaction_hash"`
	ProposalID      int64     `json:"proposal_id"`
	Supports        bool      `json:"supports"`
	WalletAddress   string    `json:"wallet_address"`
	BlockNumber     uint64    `json:"block_number"`
	VerifiedAt      time.Time `json:"verified_at"`
}

// Cache stores entries with a TTL. A nil *Cache is valid and stores nothing.
type Cache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// Connect parses a redis:// URL and returns a client. The connection is established lazily.
func Connect(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return redis.NewClient(opt), nil
}

// New returns a Cache over rdb. Entries expire after ttl.
func New(rdb redis.Cmdable, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

// Key returns the Redis key for a transaction hash.
func Key(hash string) string {
	return keyPrefix + strings.ToLower(hash)
}

// Put stores e under its transaction hash, replacing any previous entry.
func (c *Cache) Put(ctx context.Context, e Entry) error {
	if c == nil {
		return nil
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, Key(e.TransactionHash), b, c.ttl).Err()
}

// Get returns the entry for hash, or nil if absent or expired.
// It returns an error only for Redis failures.
func (c *Cache) Get(ctx context.Context, hash string) (*Entry, error) {
	if c == nil {
		return nil, nil
	}
	b, err := c.rdb.Get(ctx, Key(hash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decode cached claim %s: %w", hash, err)
	}
	return &e, nil
}

// Ping checks Redis connectivity. A nil cache is always healthy.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}
