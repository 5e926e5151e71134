// Package ethrpc implements ledger.Client over an Ethereum JSON-RPC endpoint using go-ethereum's ethclient.
package ethrpc

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/vincent-24/GlassBallots-sub001/internal/ledger"
)

// backend is the subset of *ethclient.Client used here.
type backend interface {
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// Client adapts an Ethereum node to ledger.Client.
type Client struct {
	eth    backend
	signer types.Signer
	closer func()
}

var _ ledger.Client = (*Client)(nil)

// Dial connects to rawURL. chainID selects the signer used to recover transaction senders.
func Dial(ctx context.Context, rawURL string, chainID int64) (*Client, error) {
	ec, err := ethclient.DialContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: dial: %v", ledger.ErrLedgerUnavailable, err)
	}
	c := newClient(ec, big.NewInt(chainID))
	c.closer = ec.Close
	return c, nil
}

func newClient(eth backend, chainID *big.Int) *Client {
	return &Client{eth: eth, signer: types.LatestSignerForChainID(chainID)}
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// TransactionByHash returns the transaction with its sender recovered. A sender that cannot be recovered
// under the configured chain (e.g. a transaction signed for another chain) is reported as an empty From.
func (c *Client) TransactionByHash(ctx context.Context, hash string) (*ledger.Transaction, error) {
	tx, pending, err := c.eth.TransactionByHash(ctx, common.HexToHash(hash))
	if err != nil {
		return nil, mapErr(err)
	}
	out := &ledger.Transaction{
		Hash:    ledger.NormalizeHash(tx.Hash().Hex()),
		Input:   tx.Data(),
		Pending: pending,
	}
	if to := tx.To(); to != nil {
		out.To = ledger.NormalizeAddress(to.Hex())
	}
	if from, err := types.Sender(c.signer, tx); err == nil {
		out.From = ledger.NormalizeAddress(from.Hex())
	}
	return out, nil
}

// TransactionReceipt returns ledger.ErrTransactionNotFound while the transaction is unmined.
func (c *Client) TransactionReceipt(ctx context.Context, hash string) (*ledger.Receipt, error) {
	r, err := c.eth.TransactionReceipt(ctx, common.HexToHash(hash))
	if err != nil {
		return nil, mapErr(err)
	}
	out := &ledger.Receipt{Status: r.Status}
	if r.BlockNumber != nil {
		out.BlockNumber = r.BlockNumber.Uint64()
	}
	return out, nil
}

// BlockNumber returns the current head.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	n, err := c.eth.BlockNumber(ctx)
	if err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}

func mapErr(err error) error {
	if errors.Is(err, ethereum.NotFound) {
		return ledger.ErrTransactionNotFound
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", ledger.ErrLedgerUnavailable, err)
}
