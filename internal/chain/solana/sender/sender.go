// Package sender submits signed transactions to every endpoint of the pool
// and races confirmation polling across the same pool. Submission is
// best-effort per endpoint: a single node rejecting is tolerated, only a
// round with zero acceptances is retried.
package sender

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/MoonshotMechanics/gateway/internal/chain/solana/endpoint"
	"github.com/MoonshotMechanics/gateway/internal/gwerr"
)

// Jupiter and most aggregators emit v0 transactions.
var maxSupportedTxVersion uint64 = 0

type Sender struct {
	pool    *endpoint.Pool
	logger  *zap.Logger
	cfg     Config
	metrics *Metrics
}

func New(pool *endpoint.Pool, cfg Config, logger *zap.Logger) *Sender {
	return &Sender{
		pool:    pool,
		logger:  logger.Named("tx-sender"),
		cfg:     cfg,
		metrics: NewMetrics(),
	}
}

// Broadcast fans the transaction out to every pool endpoint until one
// consistent signature is accepted or the network height passes the
// validity ceiling (plus tolerance). Past the ceiling the same payload can
// never land; the caller must reprice and re-sign, so MaxHeightExceeded is
// a hard failure here.
func (s *Sender) Broadcast(ctx context.Context, tx *solana.Transaction, validityCeiling uint64) (solana.Signature, error) {
	for {
		if err := ctx.Err(); err != nil {
			return solana.Signature{}, err
		}

		height, err := s.pool.Next().GetBlockHeight(ctx, rpc.CommitmentConfirmed)
		if err != nil {
			// A height read failing on one endpoint is not a reason to
			// stop submitting; the window check just runs next round.
			s.logger.Warn("Failed to read block height", zap.Error(err))
		} else if height > validityCeiling+s.cfg.HeightTolerance {
			s.metrics.submitFailure.Inc()
			return solana.Signature{}, gwerr.MaxHeightExceeded(height, validityCeiling)
		}

		unique := dedupe(s.fanOut(ctx, tx))
		switch {
		case len(unique) == 1:
			s.metrics.submitSuccess.Inc()
			return unique[0], nil
		case len(unique) > 1:
			// Different signatures for the same payload means the payload
			// differs per endpoint, a signing bug rather than a network
			// fault. Treated as a retryable inconsistency; logged loudly
			// so a real double-sign does not go unnoticed.
			s.logger.Error("Endpoints returned divergent signatures",
				zap.Int("count", len(unique)),
				zap.String("first", unique[0].String()),
				zap.String("second", unique[1].String()))
		default:
			s.metrics.submitFailure.Inc()
			s.logger.Warn("No endpoint accepted the transaction, retrying")
		}

		select {
		case <-ctx.Done():
			return solana.Signature{}, ctx.Err()
		case <-time.After(s.cfg.RetryInterval):
		}
	}
}

func (s *Sender) fanOut(ctx context.Context, tx *solana.Transaction) []solana.Signature {
	var (
		mu   sync.Mutex
		sigs []solana.Signature
		wg   sync.WaitGroup
	)

	for _, client := range s.pool.All() {
		wg.Add(1)
		go func(c endpoint.Client) {
			defer wg.Done()
			sig, err := c.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
				SkipPreflight:       true,
				PreflightCommitment: rpc.CommitmentConfirmed,
			})
			if err != nil {
				s.logger.Debug("Endpoint rejected submission", zap.Error(err))
				return
			}
			mu.Lock()
			sigs = append(sigs, sig)
			mu.Unlock()
		}(client)
	}
	wg.Wait()

	return sigs
}

func dedupe(sigs []solana.Signature) []solana.Signature {
	seen := make(map[solana.Signature]struct{}, len(sigs))
	unique := sigs[:0]
	for _, sig := range sigs {
		if _, ok := seen[sig]; ok {
			continue
		}
		seen[sig] = struct{}{}
		unique = append(unique, sig)
	}
	return unique
}

// Confirm races status polling for one signature across every pool
// endpoint within the deadline. The first definitive answer wins and the
// remaining pollers are cancelled. A deadline with no definitive answer is
// Unconfirmed; the caller decides whether to keep waiting or escalate.
func (s *Sender) Confirm(ctx context.Context, sig solana.Signature, deadline time.Duration) Confirmation {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	results := make(chan Confirmation, s.pool.Len())
	for _, client := range s.pool.All() {
		go s.pollStatus(ctx, client, sig, results)
	}

	select {
	case res := <-results:
		return res
	case <-ctx.Done():
		return Confirmation{State: Unconfirmed}
	}
}

// pollStatus reports at most one definitive result per endpoint. The query
// always scans transaction history: under load an already-landed signature
// routinely falls out of the recent-status window, and a "recent only"
// lookup would report it as unknown forever.
func (s *Sender) pollStatus(ctx context.Context, client endpoint.Client, sig solana.Signature, results chan<- Confirmation) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if res, done := s.checkStatus(ctx, client, sig); done {
			results <- res
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Sender) checkStatus(ctx context.Context, client endpoint.Client, sig solana.Signature) (Confirmation, bool) {
	out, err := client.GetSignatureStatuses(ctx, true, sig)
	if err != nil || out == nil || len(out.Value) == 0 || out.Value[0] == nil {
		return Confirmation{}, false
	}

	status := out.Value[0]
	if status.Err != nil {
		return Confirmation{State: Failed, ChainError: fmt.Sprintf("%v", status.Err)}, true
	}

	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
		receipt, err := s.fetchReceipt(ctx, client, sig)
		if err != nil {
			s.logger.Debug("Confirmed but detail fetch failed, retrying", zap.Error(err))
			return Confirmation{}, false
		}
		return Confirmation{State: Confirmed, Receipt: receipt}, true
	default:
		return Confirmation{}, false
	}
}

// fetchReceipt reads the realized fee and compute units from the landed
// transaction. The receipt reflects what actually executed, never the
// pre-trade estimate.
func (s *Sender) fetchReceipt(ctx context.Context, client endpoint.Client, sig solana.Signature) (*Receipt, error) {
	detail, err := client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Commitment:                     rpc.CommitmentConfirmed,
		MaxSupportedTransactionVersion: &maxSupportedTxVersion,
	})
	if err != nil {
		return nil, err
	}
	if detail == nil || detail.Meta == nil {
		return nil, fmt.Errorf("transaction %s has no metadata yet", sig)
	}

	receipt := &Receipt{
		Signature: sig,
		Fee:       detail.Meta.Fee,
		Slot:      detail.Slot,
	}
	if detail.Meta.ComputeUnitsConsumed != nil {
		receipt.ComputeUnits = *detail.Meta.ComputeUnitsConsumed
	}
	return receipt, nil
}
