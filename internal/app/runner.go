// Package app wires the gateway components together and owns the process
// lifecycle: config, logging, RPC pool, fee estimator, sender, connectors
// and the trading orchestrator.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	solanasdk "github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/MoonshotMechanics/gateway/internal/chain/solana"
	"github.com/MoonshotMechanics/gateway/internal/chain/solana/endpoint"
	"github.com/MoonshotMechanics/gateway/internal/chain/solana/fees"
	"github.com/MoonshotMechanics/gateway/internal/chain/solana/sender"
	"github.com/MoonshotMechanics/gateway/internal/config"
	"github.com/MoonshotMechanics/gateway/internal/connector"
	"github.com/MoonshotMechanics/gateway/internal/connector/jupiter"
	"github.com/MoonshotMechanics/gateway/internal/logger"
	"github.com/MoonshotMechanics/gateway/internal/token"
	"github.com/MoonshotMechanics/gateway/internal/trading"
	"github.com/MoonshotMechanics/gateway/internal/wallet"
)

type Runner struct {
	cfg          *config.Config
	logger       *logger.Logger
	registry     *connector.Registry
	orchestrator *trading.Orchestrator
	shutdownCh   chan os.Signal
}

// NewRunner builds the full component graph from the loaded config.
func NewRunner(cfg *config.Config, log *logger.Logger) (*Runner, error) {
	pool, err := endpoint.Dial(cfg.RPCList, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("dialing RPC endpoints: %w", err)
	}

	feeCfg, err := feeConfig(&cfg.Fees)
	if err != nil {
		return nil, err
	}
	estimator := fees.NewEstimator(pool, feeCfg, log.Logger)

	txSender := sender.New(pool, sender.Config{
		Multiplier:      cfg.Fees.Multiplier,
		CeilingFee:      cfg.Fees.CeilingFee,
		ConfirmRetries:  cfg.Fees.ConfirmRetries,
		ConfirmTimeout:  time.Duration(cfg.Fees.ConfirmTimeoutMs) * time.Millisecond,
		PollInterval:    time.Duration(cfg.Fees.PollIntervalMs) * time.Millisecond,
		RetryInterval:   time.Duration(cfg.Fees.RetryIntervalMs) * time.Millisecond,
		HeightTolerance: cfg.Fees.HeightTolerance,
	}, log.Logger)

	chainClient := solana.NewClient(pool, log.Logger)

	tokens, err := token.Load(cfg.TokenListFile)
	if err != nil {
		return nil, fmt.Errorf("loading token list: %w", err)
	}

	wallets, err := wallet.LoadResolver(cfg.WalletFile)
	if err != nil {
		return nil, err
	}

	registry := connector.NewRegistry(log.Logger)
	jup := jupiter.New(jupiter.Config{
		QuoteURL:       cfg.Connector.QuoteURL,
		SwapURL:        cfg.Connector.SwapURL,
		RequestTimeout: time.Duration(cfg.Connector.RequestTimeoutMs) * time.Millisecond,
	}, txSender, estimator, log.Logger)
	if err := registry.Register(jup); err != nil {
		return nil, err
	}

	orchestrator := trading.NewOrchestrator(trading.Config{
		Network:      cfg.Network,
		ComputeUnits: cfg.Fees.ComputeUnits,
	}, tokens, wallets, registry, chainClient, chainClient, txSender, estimator, log)

	log.Info("Gateway initialized",
		zap.String("network", cfg.Network),
		zap.Int("rpc_endpoints", pool.Len()),
		zap.Strings("connectors", registry.Names()),
		zap.Int("tokens", tokens.Len()))

	return &Runner{
		cfg:          cfg,
		logger:       log,
		registry:     registry,
		orchestrator: orchestrator,
		shutdownCh:   make(chan os.Signal, 1),
	}, nil
}

// Orchestrator exposes the trading surface to transports built on top of
// the runner.
func (r *Runner) Orchestrator() *trading.Orchestrator {
	return r.orchestrator
}

// Run checks the fee estimator once as a readiness signal, then blocks
// until the context is cancelled or a termination signal arrives.
func (r *Runner) Run(ctx context.Context) error {
	signal.Notify(r.shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	estimate, err := r.orchestrator.EstimateGas(checkCtx)
	cancel()
	if err != nil {
		r.logger.Warn("Fee estimation check failed, continuing with floor pricing", zap.Error(err))
	} else {
		r.logger.Info("Gateway ready",
			zap.Uint64("priority_fee_microlamports", estimate.PriorityFee),
			zap.String("estimated_cost_sol", estimate.Cost.String()))
	}

	select {
	case sig := <-r.shutdownCh:
		r.logger.Info("Signal received", zap.String("signal", sig.String()))
	case <-ctx.Done():
	}

	return r.Shutdown()
}

// Shutdown closes every registered connector and flushes logs.
func (r *Runner) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.registry.Shutdown(shutdownCtx); err != nil {
		r.logger.Error("Connector shutdown failed", zap.Error(err))
		return err
	}

	r.logger.Info("Gateway stopped")
	return r.logger.Sync()
}

func feeConfig(fc *config.FeeConfig) (fees.Config, error) {
	accounts := make([]solanasdk.PublicKey, 0, len(fc.ReferenceAccounts))
	for _, raw := range fc.ReferenceAccounts {
		key, err := solanasdk.PublicKeyFromBase58(raw)
		if err != nil {
			return fees.Config{}, fmt.Errorf("invalid reference account %q: %w", raw, err)
		}
		accounts = append(accounts, key)
	}
	return fees.Config{
		MinimumFee:        fc.MinimumFee,
		ComputeUnits:      fc.ComputeUnits,
		Percentile:        fc.Percentile,
		CacheWindow:       time.Duration(fc.CacheWindowMs) * time.Millisecond,
		ReferenceAccounts: accounts,
	}, nil
}
