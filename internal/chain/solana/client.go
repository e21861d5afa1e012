// Package solana wraps the endpoint pool with the read operations the
// gateway needs: recency data for transaction validity windows and wallet
// balance snapshots.
package solana

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MoonshotMechanics/gateway/internal/chain/solana/endpoint"
	"github.com/MoonshotMechanics/gateway/internal/token"
)

const (
	maxRetries      = 3
	retryDelay      = 500 * time.Millisecond
	lamportsPerSOL  = int32(9)
	nativeSymbolKey = "SOL"

	// A system transfer consumes well under this; the limit caps the
	// priority fee actually paid at escalated price levels.
	transferComputeUnits = 1_000
)

type Client struct {
	pool   *endpoint.Pool
	logger *zap.Logger
}

func NewClient(pool *endpoint.Pool, logger *zap.Logger) *Client {
	return &Client{pool: pool, logger: logger.Named("chain-client")}
}

// LatestBlockhash returns a fresh blockhash and the last block height at
// which a transaction built on it stays valid, rotating endpoints on error.
func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		out, err := c.pool.Next().GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
		if err != nil {
			lastErr = err
			c.logger.Warn("Failed to fetch latest blockhash", zap.Error(err))
			select {
			case <-ctx.Done():
				return solana.Hash{}, 0, ctx.Err()
			case <-time.After(retryDelay):
			}
			continue
		}
		return out.Value.Blockhash, out.Value.LastValidBlockHeight, nil
	}
	return solana.Hash{}, 0, lastErr
}

// BuildTransfer assembles an unsigned native transfer priced at the given
// priority fee. Each call fetches a fresh blockhash, so the escalation
// loop gets a new validity window per fee level. The compute unit limit is
// fixed: a system transfer's consumption does not vary with amount.
func (c *Client) BuildTransfer(ctx context.Context, from, to solana.PublicKey, lamports, priorityFee uint64) (*solana.Transaction, uint64, error) {
	blockhash, validityCeiling, err := c.LatestBlockhash(ctx)
	if err != nil {
		return nil, 0, err
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			computebudget.NewSetComputeUnitLimitInstruction(transferComputeUnits).Build(),
			computebudget.NewSetComputeUnitPriceInstruction(priorityFee).Build(),
			system.NewTransferInstruction(lamports, from, to).Build(),
		},
		blockhash,
		solana.TransactionPayer(from),
	)
	if err != nil {
		return nil, 0, err
	}
	return tx, validityCeiling, nil
}

// Balance reads one token balance for the owner as a human-unit decimal.
// A missing token account is an empty balance, not an error.
func (c *Client) Balance(ctx context.Context, owner solana.PublicKey, tok token.Token) (decimal.Decimal, error) {
	if tok.IsNative() {
		out, err := c.pool.Next().GetBalance(ctx, owner, rpc.CommitmentConfirmed)
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromInt(int64(out.Value)).Shift(-lamportsPerSOL), nil
	}

	mint, err := solana.PublicKeyFromBase58(tok.Address)
	if err != nil {
		return decimal.Zero, err
	}
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return decimal.Zero, err
	}

	out, err := c.pool.Next().GetTokenAccountBalance(ctx, ata, rpc.CommitmentConfirmed)
	if err != nil {
		if isAccountNotFound(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	if out == nil || out.Value == nil {
		return decimal.Zero, nil
	}

	raw, err := decimal.NewFromString(out.Value.Amount)
	if err != nil {
		return decimal.Zero, err
	}
	return raw.Shift(-int32(out.Value.Decimals)), nil
}

// Balances gathers the native balance plus every requested token balance in
// one logical snapshot. The underlying calls run concurrently without any
// ordering assumption and are merged into a single symbol-to-amount map.
func (c *Client) Balances(ctx context.Context, owner solana.PublicKey, tokens []token.Token) (map[string]decimal.Decimal, error) {
	var mu sync.Mutex
	result := make(map[string]decimal.Decimal, len(tokens)+1)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		out, err := c.pool.Next().GetBalance(gctx, owner, rpc.CommitmentConfirmed)
		if err != nil {
			return err
		}
		mu.Lock()
		result[nativeSymbolKey] = decimal.NewFromInt(int64(out.Value)).Shift(-lamportsPerSOL)
		mu.Unlock()
		return nil
	})

	for _, tok := range tokens {
		if tok.IsNative() {
			continue
		}
		g.Go(func() error {
			amount, err := c.Balance(gctx, owner, tok)
			if err != nil {
				return err
			}
			mu.Lock()
			result[tok.Symbol] = amount
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func isAccountNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, rpc.ErrNotFound) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "could not find account") ||
		strings.Contains(msg, "Invalid param: could not find account")
}
