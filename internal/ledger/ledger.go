// Package ledger is the provider-facing side of the hybrid voting path: it fetches transactions and
// receipts from an external ledger and decodes contract calldata. It knows nothing about voting.
package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	// ErrTransactionNotFound means the provider has no record of the transaction, mined or pending.
	ErrTransactionNotFound = errors.New("ledger: transaction not found")
	// ErrLedgerUnavailable means the provider could not be reached or answered with a transport error.
	ErrLedgerUnavailable = errors.New("ledger: provider unavailable")
	// ErrTransactionPending means the transaction exists but did not reach the required confirmations in time.
	ErrTransactionPending = errors.New("ledger: transaction pending")
)

// Receipt execution status values.
const (
	ReceiptStatusFailed     uint64 = 0
	ReceiptStatusSuccessful uint64 = 1
)

// Transaction is a ledger transaction as seen by the engine.
// From and To are lowercase 0x-prefixed hex; To is empty for contract creation.
type Transaction struct {
	Hash    string
	From    string
	To      string
	Input   []byte
	Pending bool
}

// Receipt is the execution result of a mined transaction.
type Receipt struct {
	Status      uint64
	BlockNumber uint64
}

// Client fetches ledger state. Implementations return ErrTransactionNotFound for unknown hashes
// (and for receipts of transactions that are not mined yet) and wrap transport failures with ErrLedgerUnavailable.
type Client interface {
	TransactionByHash(ctx context.Context, hash string) (*Transaction, error)
	TransactionReceipt(ctx context.Context, hash string) (*Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// IsTxHash reports whether s is a 0x-prefixed 32-byte hex hash.
func IsTxHash(s string) bool {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return false
	}
	b, err := hexutil.Decode("0x" + s[2:])
	return err == nil && len(b) == common.HashLength
}

// IsAddress reports whether s is a 0x-prefixed 20-byte hex address. Checksum casing is not enforced.
func IsAddress(s string) bool {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return false
	}
	return common.IsHexAddress(s)
}

// NormalizeAddress lowercases a hex address for comparison and storage.
func NormalizeAddress(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeHash lowercases a hex hash for comparison and storage.
func NormalizeHash(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
