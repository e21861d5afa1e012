package sender

import (
	"context"
	"math"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/MoonshotMechanics/gateway/internal/gwerr"
)

// TxBuilder assembles, prices and signs the transaction for one attempt.
// It is invoked once per fee level so every escalation gets a fresh
// blockhash and validity ceiling; reusing a stale validity window is itself
// a cause of non-confirmation. It returns the signed transaction and the
// last block height at which it remains acceptable.
type TxBuilder func(ctx context.Context, priorityFee uint64) (*solana.Transaction, uint64, error)

// FeeSource provides the starting priority fee for the escalation loop.
type FeeSource interface {
	Estimate(ctx context.Context) (uint64, error)
}

// SendWithEscalation drives a transaction to a terminal outcome:
//
//	Pricing -> Submitting -> Confirming -> Done
//	                \            \
//	                 +-> Escalating (fee x multiplier, fresh window)
//
// Escalation is geometric so the fee converges quickly under sustained
// congestion; the configured ceiling is the only attempt bound. A
// definitive on-chain rejection terminates immediately and is never
// retried. The loop is explicit iteration, not recursion.
func (s *Sender) SendWithEscalation(ctx context.Context, fees FeeSource, build TxBuilder) (*Receipt, error) {
	defer s.metrics.TrackTransaction(time.Now())

	fee, err := fees.Estimate(ctx)
	if err != nil {
		return nil, err
	}

	for {
		tx, validityCeiling, err := build(ctx, fee)
		if err != nil {
			return nil, err
		}

		sig, err := s.Broadcast(ctx, tx, validityCeiling)
		switch {
		case err == nil:
		case gwerr.Is(err, gwerr.CodeMaxHeightExceeded):
			s.logger.Info("Validity window expired before inclusion, escalating fee",
				zap.Uint64("fee", fee))
			if fee, err = s.escalate(fee); err != nil {
				return nil, err
			}
			continue
		default:
			return nil, err
		}

		txLogger := s.logger.With(zap.String("signature", sig.String()), zap.Uint64("fee", fee))
		for attempt := 0; attempt < s.cfg.ConfirmRetries; attempt++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			conf := s.Confirm(ctx, sig, s.cfg.ConfirmTimeout)
			switch conf.State {
			case Confirmed:
				txLogger.Info("Transaction confirmed",
					zap.Uint64("realized_fee", conf.Receipt.Fee),
					zap.Uint64("compute_units", conf.Receipt.ComputeUnits),
					zap.Uint64("slot", conf.Receipt.Slot))
				return conf.Receipt, nil
			case Failed:
				txLogger.Warn("Transaction rejected on chain", zap.String("detail", conf.ChainError))
				return nil, gwerr.OnChainFailure(conf.ChainError)
			}
			txLogger.Debug("Still unconfirmed", zap.Int("attempt", attempt+1))
		}

		txLogger.Info("Confirmation retries exhausted at current fee, escalating")
		if fee, err = s.escalate(fee); err != nil {
			return nil, err
		}
	}
}

func (s *Sender) escalate(fee uint64) (uint64, error) {
	next := uint64(math.Ceil(float64(fee) * s.cfg.Multiplier))
	if next > s.cfg.CeilingFee {
		return 0, gwerr.FeeCeilingExceeded(next, s.cfg.CeilingFee)
	}
	s.metrics.escalations.Inc()
	return next, nil
}
