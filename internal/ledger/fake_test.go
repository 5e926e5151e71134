package ledger

import (
	"context"
	"sync"
)

// fakeClient serves scripted ledger state. Each TransactionByHash call advances step,
// so a test can describe how a transaction progresses between polls.
type fakeClient struct {
	mu       sync.Mutex
	steps    []fakeStep
	step     int
	txCalls  int
	fixedErr error
}

type fakeStep struct {
	tx      *Transaction
	receipt *Receipt
	head    uint64
}

func (f *fakeClient) current() fakeStep {
	if f.step >= len(f.steps) {
		return f.steps[len(f.steps)-1]
	}
	return f.steps[f.step]
}

func (f *fakeClient) TransactionByHash(ctx context.Context, hash string) (*Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txCalls++
	if f.fixedErr != nil {
		return nil, f.fixedErr
	}
	if f.txCalls > 1 && f.step < len(f.steps)-1 {
		f.step++
	}
	s := f.current()
	if s.tx == nil {
		return nil, ErrTransactionNotFound
	}
	return s.tx, nil
}

func (f *fakeClient) TransactionReceipt(ctx context.Context, hash string) (*Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.current()
	if s.receipt == nil {
		return nil, ErrTransactionNotFound
	}
	return s.receipt, nil
}

func (f *fakeClient) BlockNumber(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current().head, nil
}
