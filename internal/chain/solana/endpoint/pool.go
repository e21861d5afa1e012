// Package endpoint manages the set of redundant RPC connections to one
// logical Solana cluster. The pool is deliberately dumb: strict round-robin
// rotation, no health scoring. A flaky node is tolerated by fanning
// requests out across the whole pool, not by evicting it.
package endpoint

import (
	"context"
	"errors"
	"net/url"
	"sync/atomic"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// Client is the slice of the Solana RPC surface the gateway uses.
// *rpc.Client satisfies it; tests substitute fakes.
type Client interface {
	GetRecentPrioritizationFees(ctx context.Context, accounts solana.PublicKeySlice) ([]rpc.PriorizationFeeResult, error)
	GetBlockHeight(ctx context.Context, commitment rpc.CommitmentType) (uint64, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, transaction *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	GetTransaction(ctx context.Context, txSig solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error)
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetTokenAccountBalanceResult, error)
}

// Pool is a process-wide, round-robin set of RPC clients. Rotation state is
// a single atomic counter, safe under concurrent trade attempts.
type Pool struct {
	clients []Client
	logger  *zap.Logger
	index   atomic.Uint64
}

// NewPool wraps an already-constructed client set. An empty set is a
// configuration error, never a runtime condition.
func NewPool(clients []Client, logger *zap.Logger) (*Pool, error) {
	if len(clients) == 0 {
		return nil, errors.New("endpoint pool requires at least one client")
	}
	return &Pool{clients: clients, logger: logger.Named("endpoint-pool")}, nil
}

// Dial builds a pool from RPC URLs, rejecting malformed entries up front.
func Dial(urls []string, logger *zap.Logger) (*Pool, error) {
	if len(urls) == 0 {
		return nil, errors.New("empty RPC URL list")
	}

	clients := make([]Client, 0, len(urls))
	for _, rawURL := range urls {
		if _, err := url.Parse(rawURL); err != nil {
			return nil, errors.New("invalid RPC URL: " + rawURL)
		}
		clients = append(clients, rpc.New(rawURL))
		logger.Debug("Registered RPC endpoint", zap.String("url", rawURL))
	}

	return NewPool(clients, logger)
}

// Next returns the next client in strict round-robin order, wrapping.
func (p *Pool) Next() Client {
	n := p.index.Add(1) - 1
	return p.clients[n%uint64(len(p.clients))]
}

// All returns the full client set for fan-out operations. The returned
// slice must not be mutated.
func (p *Pool) All() []Client {
	return p.clients
}

// Len reports the pool size.
func (p *Pool) Len() int {
	return len(p.clients)
}
