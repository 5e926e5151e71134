// Package verification checks that a claimed hybrid vote matches the ledger transaction that carries it.
// It never writes state.
package verification

import (
	"context"
	"errors"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/vincent-24/GlassBallots-sub001/internal/ledger"
)

// Claim is what the client says its transaction did.
type Claim struct {
	TransactionHash string
	ProposalID      int64
	Supports        bool
	WalletAddress   string
}

// Result is a successful verification.
type Result struct {
	BlockNumber uint64
	Verified    bool
}

// Awaiter waits for a transaction to reach a final state. *ledger.Waiter implements it.
type Awaiter interface {
	Await(ctx context.Context, hash string) (*ledger.Observation, error)
}

// Verifier validates claims against one ballot contract.
type Verifier struct {
	awaiter  Awaiter
	contract string
}

// NewVerifier returns a Verifier for the ballot contract at contractAddress.
func NewVerifier(awaiter Awaiter, contractAddress string) *Verifier {
	return &Verifier{awaiter: awaiter, contract: ledger.NormalizeAddress(contractAddress)}
}

// ValidateClaim checks field syntax only. It returns an *InputError naming the first bad field.
func ValidateClaim(c Claim) error {
	if !ledger.IsTxHash(c.TransactionHash) {
		return &InputError{Field: "transaction_hash", Message: "must be 0x followed by 64 hex characters"}
	}
	if !ledger.IsAddress(c.WalletAddress) {
		return &InputError{Field: "wallet_address", Message: "must be 0x followed by 40 hex characters"}
	}
	if c.ProposalID <= 0 {
		return &InputError{Field: "proposal_id", Message: "must be positive"}
	}
	return nil
}

// Verify runs the checks in order and fails on the first mismatch with an *Error.
// Ledger outages surface as ledger.ErrLedgerUnavailable and slow confirmations as ledger.ErrTransactionPending.
func (v *Verifier) Verify(ctx context.Context, c Claim) (*Result, error) {
	if err := ValidateClaim(c); err != nil {
		return nil, err
	}
	hash := ledger.NormalizeHash(c.TransactionHash)

	obs, err := v.awaiter.Await(ctx, hash)
	if err != nil {
		return nil, err
	}
	switch obs.State {
	case ledger.StateNotFound:
		return nil, &Error{Reason: ReasonTransactionNotFound, Actual: hash}
	case ledger.StateReverted:
		return nil, &Error{Reason: ReasonTransactionReverted, Expected: "status 1", Actual: "status 0"}
	case ledger.StateConfirmed:
	default:
		return nil, ledger.ErrTransactionPending
	}
	tx := obs.Tx

	wallet := ledger.NormalizeAddress(c.WalletAddress)
	if !strings.EqualFold(tx.From, wallet) {
		return nil, &Error{Reason: ReasonSenderMismatch, Expected: wallet, Actual: tx.From}
	}
	if !strings.EqualFold(tx.To, v.contract) {
		return nil, &Error{Reason: ReasonWrongContract, Expected: v.contract, Actual: tx.To}
	}
	if !ledger.HasSelector(ledger.VoteSignature, tx.Input) {
		return nil, &Error{
			Reason:   ReasonWrongFunction,
			Expected: hexutil.Encode(ledger.Selector(ledger.VoteSignature)),
			Actual:   selectorOf(tx.Input),
		}
	}

	call, err := ledger.DecodeCall(ledger.VoteSignature, tx.Input)
	if err != nil {
		return nil, &Error{Reason: ReasonDecodeError, Actual: err.Error()}
	}
	proposalID, ok := call.Args[0].(*big.Int)
	if !ok {
		return nil, &Error{Reason: ReasonDecodeError, Expected: "uint256", Actual: "unexpected type"}
	}
	supports, ok := call.Args[1].(bool)
	if !ok {
		return nil, &Error{Reason: ReasonDecodeError, Expected: "bool", Actual: "unexpected type"}
	}

	if proposalID.Cmp(big.NewInt(c.ProposalID)) != 0 {
		return nil, &Error{Reason: ReasonProposalIDMismatch, Expected: strconv.FormatInt(c.ProposalID, 10), Actual: proposalID.String()}
	}
	if supports != c.Supports {
		return nil, &Error{Reason: ReasonVoteValueMismatch, Expected: strconv.FormatBool(c.Supports), Actual: strconv.FormatBool(supports)}
	}

	return &Result{BlockNumber: obs.Receipt.BlockNumber, Verified: true}, nil
}

func selectorOf(input []byte) string {
	if len(input) < 4 {
		return hexutil.Encode(input)
	}
	return hexutil.Encode(input[:4])
}

// IsRetryable reports whether err is an infrastructure failure the caller may retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ledger.ErrLedgerUnavailable) || errors.Is(err, ledger.ErrTransactionPending)
}
