package ledger

import (
	"context"
	"time"
)

const (
	defaultConfirmationTimeout = 2 * time.Minute
	defaultPollInterval        = 2 * time.Second
)

// Waiter polls a Client until a transaction reaches a final state.
type Waiter struct {
	client        Client
	confirmations uint64
	timeout       time.Duration
	interval      time.Duration
}

// NewWaiter returns a Waiter requiring confirmations blocks. Zero timeout or interval uses the defaults.
func NewWaiter(client Client, confirmations uint64, timeout, interval time.Duration) *Waiter {
	if confirmations == 0 {
		confirmations = 1
	}
	if timeout <= 0 {
		timeout = defaultConfirmationTimeout
	}
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Waiter{client: client, confirmations: confirmations, timeout: timeout, interval: interval}
}

// Await observes hash until its state is final. It returns ErrTransactionPending when the confirmation timeout
// elapses first, and ctx.Err() when the caller goes away. Provider errors are returned as-is.
func (w *Waiter) Await(ctx context.Context, hash string) (*Observation, error) {
	obs, err := Observe(ctx, w.client, hash, w.confirmations)
	if err != nil {
		return nil, err
	}
	if obs.State.Final() {
		return obs, nil
	}

	deadline := time.NewTimer(w.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return obs, ErrTransactionPending
		case <-ticker.C:
			next, err := Observe(ctx, w.client, hash, w.confirmations)
			if err != nil {
				return nil, err
			}
			obs = next
			if obs.State.Final() {
				return obs, nil
			}
		}
	}
}
