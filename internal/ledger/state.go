package ledger

import (
	"context"
	"errors"
)

// TxState is the engine's view of a transaction's progress towards finality.
type TxState int

const (
	StateNotFound TxState = iota
	StatePending
	StateMined
	StateReverted
	StateConfirmed
)

func (s TxState) String() string {
	switch s {
	case StateNotFound:
		return "not_found"
	case StatePending:
		return "pending"
	case StateMined:
		return "mined"
	case StateReverted:
		return "reverted"
	case StateConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// Final reports whether no further observation can change the state.
// NotFound is treated as final: a hash the provider does not know is rejected, not awaited.
func (s TxState) Final() bool {
	return s == StateNotFound || s == StateReverted || s == StateConfirmed
}

// Observation is one snapshot of a transaction. Tx is nil for StateNotFound, Receipt is nil until mined.
type Observation struct {
	State         TxState
	Tx            *Transaction
	Receipt       *Receipt
	Confirmations uint64
}

// Observe classifies hash against the current ledger head. A mined transaction stays StateMined until it has
// at least required confirmations (the including block counts as one); only then is it Reverted or Confirmed.
func Observe(ctx context.Context, c Client, hash string, required uint64) (*Observation, error) {
	tx, err := c.TransactionByHash(ctx, hash)
	if errors.Is(err, ErrTransactionNotFound) {
		return &Observation{State: StateNotFound}, nil
	}
	if err != nil {
		return nil, err
	}
	if tx.Pending {
		return &Observation{State: StatePending, Tx: tx}, nil
	}
	rcpt, err := c.TransactionReceipt(ctx, hash)
	if errors.Is(err, ErrTransactionNotFound) {
		// Provider knows the transaction but has not indexed its receipt yet.
		return &Observation{State: StatePending, Tx: tx}, nil
	}
	if err != nil {
		return nil, err
	}
	head, err := c.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}
	obs := &Observation{State: StateMined, Tx: tx, Receipt: rcpt}
	if head >= rcpt.BlockNumber {
		obs.Confirmations = head - rcpt.BlockNumber + 1
	}
	if required == 0 {
		required = 1
	}
	if obs.Confirmations < required {
		return obs, nil
	}
	if rcpt.Status == ReceiptStatusFailed {
		obs.State = StateReverted
	} else {
		obs.State = StateConfirmed
	}
	return obs, nil
}
