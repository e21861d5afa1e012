// Package fees computes the priority fee attached to outgoing transactions.
//
// The estimate is derived from recent prioritization-fee samples observed on
// a curated set of high-traffic accounts. Using those accounts as a
// liquidity-weighted congestion signal is a heuristic, not an exact market
// read; the percentile pick and the configured floor keep it conservative.
package fees

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/MoonshotMechanics/gateway/internal/chain/solana/endpoint"
	"github.com/MoonshotMechanics/gateway/internal/gwerr"
)

// microLamportsPerLamport converts the lamport fee floor into the
// micro-lamport-per-compute-unit scale used by compute budget instructions.
const microLamportsPerLamport = 1_000_000

// Config mirrors the fee section of the gateway configuration.
type Config struct {
	MinimumFee        uint64 // lamports for the whole transaction
	ComputeUnits      uint32
	Percentile        float64 // 0 < p <= 1
	CacheWindow       time.Duration
	ReferenceAccounts []solana.PublicKey
}

// Estimator computes micro-lamports-per-compute-unit priority fees with a
// process-wide single-slot cache. Stale-but-valid reads are the accepted
// trade-off for keeping the RPC request rate bounded.
type Estimator struct {
	pool   *endpoint.Pool
	logger *zap.Logger
	cfg    Config

	mu         sync.Mutex
	cached     uint64
	observedAt time.Time
}

func NewEstimator(pool *endpoint.Pool, cfg Config, logger *zap.Logger) *Estimator {
	return &Estimator{
		pool:   pool,
		logger: logger.Named("fee-estimator"),
		cfg:    cfg,
	}
}

// FloorFee is the minimum returned estimate: the configured lamport floor
// spread over the compute unit budget, in micro-lamports per unit.
func (e *Estimator) FloorFee() uint64 {
	return e.cfg.MinimumFee * microLamportsPerLamport / uint64(e.cfg.ComputeUnits)
}

// Estimate returns the current priority fee in micro-lamports per compute
// unit. Within the cache window the previous value is reused without a
// network call. Failures propagate as FeeEstimationFailed; callers must not
// substitute zero, chronic underpricing would follow.
func (e *Estimator) Estimate(ctx context.Context) (uint64, error) {
	e.mu.Lock()
	if !e.observedAt.IsZero() && time.Since(e.observedAt) < e.cfg.CacheWindow {
		fee := e.cached
		e.mu.Unlock()
		return fee, nil
	}
	e.mu.Unlock()

	samples, err := e.pool.Next().GetRecentPrioritizationFees(ctx, e.cfg.ReferenceAccounts)
	if err != nil {
		return 0, gwerr.FeeEstimationFailed(err)
	}

	fee := e.pick(samples)

	e.mu.Lock()
	e.cached = fee
	e.observedAt = time.Now()
	e.mu.Unlock()

	e.logger.Debug("Priority fee estimated",
		zap.Uint64("fee_micro_lamports", fee),
		zap.Int("samples", len(samples)))

	return fee, nil
}

// pick reduces raw samples to a single fee. Zero samples mean "no
// congestion data", not "free", and are discarded before the percentile.
func (e *Estimator) pick(samples []rpc.PriorizationFeeResult) uint64 {
	nonZero := make([]uint64, 0, len(samples))
	for _, s := range samples {
		if s.PrioritizationFee > 0 {
			nonZero = append(nonZero, s.PrioritizationFee)
		}
	}

	floor := e.FloorFee()
	if len(nonZero) == 0 {
		return floor
	}

	sort.Slice(nonZero, func(i, j int) bool { return nonZero[i] < nonZero[j] })

	// 1-indexed ceil(n*p), clamped to the sample range.
	idx := int(math.Ceil(float64(len(nonZero)) * e.cfg.Percentile))
	if idx < 1 {
		idx = 1
	}
	if idx > len(nonZero) {
		idx = len(nonZero)
	}

	fee := nonZero[idx-1]
	if fee < floor {
		fee = floor
	}
	return fee
}
