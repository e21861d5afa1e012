// Package trading orchestrates price, trade, transfer and balance
// requests: token resolution, quote fetching, the pre-submission economic
// guards, and the hand-off to the escalating submission path. Guards run
// before any network submission so an unsafe request fails with zero side
// effects.
package trading

import (
	"context"
	"fmt"

	solanasdk "github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MoonshotMechanics/gateway/internal/chain/solana/sender"
	"github.com/MoonshotMechanics/gateway/internal/connector"
	"github.com/MoonshotMechanics/gateway/internal/gwerr"
	"github.com/MoonshotMechanics/gateway/internal/logger"
	"github.com/MoonshotMechanics/gateway/internal/token"
	"github.com/MoonshotMechanics/gateway/internal/wallet"
)

// pricePrecision bounds the division deriving quote-per-base prices.
const pricePrecision = 18

// BalanceReader reads wallet balances from the chain.
type BalanceReader interface {
	Balance(ctx context.Context, owner solanasdk.PublicKey, tok token.Token) (decimal.Decimal, error)
	Balances(ctx context.Context, owner solanasdk.PublicKey, tokens []token.Token) (map[string]decimal.Decimal, error)
}

// TransferBuilder assembles an unsigned native transfer priced at the
// given priority fee, returning it with its validity ceiling.
type TransferBuilder interface {
	BuildTransfer(ctx context.Context, from, to solanasdk.PublicKey, lamports, priorityFee uint64) (*solanasdk.Transaction, uint64, error)
}

// EscalationSender drives a builder through the fee-escalation engine to a
// terminal outcome.
type EscalationSender interface {
	SendWithEscalation(ctx context.Context, fees sender.FeeSource, build sender.TxBuilder) (*sender.Receipt, error)
}

// WalletSource resolves addresses to signing keypairs.
type WalletSource interface {
	GetWallet(addressOrName string) (*wallet.Wallet, error)
}

type Config struct {
	Network      string
	ComputeUnits uint32
}

type Orchestrator struct {
	cfg       Config
	tokens    *token.List
	wallets   WalletSource
	registry  *connector.Registry
	balances  BalanceReader
	transfers TransferBuilder
	sender    EscalationSender
	fees      sender.FeeSource
	logger    *logger.Logger
}

func NewOrchestrator(cfg Config, tokens *token.List, wallets WalletSource, registry *connector.Registry, balances BalanceReader, transfers TransferBuilder, txSender EscalationSender, fees sender.FeeSource, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		tokens:    tokens,
		wallets:   wallets,
		registry:  registry,
		balances:  balances,
		transfers: transfers,
		sender:    txSender,
		fees:      fees,
		logger:    log,
	}
}

// Price resolves both symbols and derives the expected execution price
// from a fresh quote. It is side-effect-free: nothing is submitted.
func (o *Orchestrator) Price(ctx context.Context, req PriceRequest) (*PriceResult, error) {
	base, ok := o.tokens.Resolve(req.Base)
	if !ok {
		return nil, gwerr.TokenNotFound(req.Base)
	}
	quoteTok, ok := o.tokens.Resolve(req.Quote)
	if !ok {
		return nil, gwerr.TokenNotFound(req.Quote)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive, got %s", req.Amount)
	}

	conn, err := o.registry.Get(req.Connector)
	if err != nil {
		return nil, err
	}

	rawBase := base.ToRaw(req.Amount)

	// BUY asks the router how much quote token this much base costs
	// (exact output); SELL asks what this much base brings (exact input).
	var quoteReq connector.QuoteRequest
	switch req.Side {
	case Buy:
		quoteReq = connector.QuoteRequest{
			InputMint:   quoteTok.Address,
			OutputMint:  base.Address,
			Amount:      rawBase.String(),
			SlippageBps: req.SlippageBps,
			Mode:        connector.ExactOut,
		}
	case Sell:
		quoteReq = connector.QuoteRequest{
			InputMint:   base.Address,
			OutputMint:  quoteTok.Address,
			Amount:      rawBase.String(),
			SlippageBps: req.SlippageBps,
			Mode:        connector.ExactIn,
		}
	default:
		return nil, fmt.Errorf("unknown trade side %q", req.Side)
	}

	routeQuote, err := conn.Quote(ctx, quoteReq)
	if err != nil {
		return nil, gwerr.PriceFailed(err)
	}

	quoteLeg := routeQuote.OutAmount
	if req.Side == Buy {
		quoteLeg = routeQuote.InAmount
	}
	quoteRaw, err := ParseAmount(quoteLeg)
	if err != nil {
		return nil, gwerr.PriceFailed(err)
	}

	expectedAmount := quoteTok.FromRaw(quoteRaw)
	expectedPrice := expectedAmount.DivRound(req.Amount, pricePrecision)

	return &PriceResult{
		Network:        o.cfg.Network,
		Base:           base,
		Quote:          quoteTok,
		Side:           req.Side,
		Amount:         base.FormatAmount(req.Amount),
		RawAmount:      rawBase.String(),
		ExpectedAmount: expectedAmount,
		ExpectedPrice:  expectedPrice,
		RouteQuote:     routeQuote,
	}, nil
}

// Trade re-prices the request (quotes expire; nothing is cached between
// price and trade), applies the guards in order, then submits through the
// connector's escalating swap path.
func (o *Orchestrator) Trade(ctx context.Context, req TradeRequest) (*TradeResult, error) {
	reqLogger := o.logger.WithRequest("trade").With(
		zap.String("side", string(req.Side)),
		zap.String("base", req.Base),
		zap.String("quote", req.Quote),
		zap.String("amount", req.Amount.String()))

	price, err := o.Price(ctx, req.PriceRequest)
	if err != nil {
		return nil, err
	}

	// Guard 1: limit price. A bad market must be distinguishable from an
	// unaffordable trade, so this runs before any balance read.
	if req.LimitPrice != nil {
		limit := *req.LimitPrice
		violated := (req.Side == Buy && price.ExpectedPrice.GreaterThan(limit)) ||
			(req.Side == Sell && price.ExpectedPrice.LessThan(limit))
		if violated {
			reqLogger.Info("Trade rejected by limit price guard",
				zap.String("expected_price", price.ExpectedPrice.String()),
				zap.String("limit_price", limit.String()))
			return nil, gwerr.LimitPriceViolation(string(req.Side), price.ExpectedPrice.String(), limit.String())
		}
	}

	w, err := o.wallets.GetWallet(req.Wallet)
	if err != nil {
		return nil, err
	}

	// Guard 2: balance sufficiency. SELL spends the base token; BUY
	// spends the quote token at the expected rate.
	spendToken, spendAmount := price.Base, req.Amount
	if req.Side == Buy {
		spendToken, spendAmount = price.Quote, price.ExpectedAmount
	}
	balance, err := o.balances.Balance(ctx, w.PublicKey, spendToken)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(spendAmount) {
		reqLogger.Info("Trade rejected by balance guard",
			zap.String("token", spendToken.Symbol),
			zap.String("balance", balance.String()),
			zap.String("required", spendAmount.String()))
		return nil, gwerr.InsufficientBalance(spendToken.Symbol, balance.String(), spendAmount.String())
	}

	conn, err := o.registry.Get(req.Connector)
	if err != nil {
		return nil, err
	}
	receipt, err := conn.ExecuteSwap(ctx, w, price.RouteQuote)
	if err != nil {
		return nil, err
	}

	o.logger.WithTransaction(receipt.Signature.String()).Info("Trade executed",
		zap.String("side", string(req.Side)),
		zap.String("base", req.Base),
		zap.String("quote", req.Quote),
		zap.Uint64("realized_fee", receipt.Fee),
		zap.Uint64("compute_units", receipt.ComputeUnits),
		zap.Uint64("slot", receipt.Slot))

	return &TradeResult{
		PriceResult:   *price,
		Signature:     receipt.Signature.String(),
		RealizedFee:   receipt.Fee,
		ComputeUnits:  receipt.ComputeUnits,
		ConfirmedSlot: receipt.Slot,
	}, nil
}

// Transfer moves native SOL between accounts through the same escalating
// submission path trades use: fresh blockhash and validity ceiling per fee
// level, confirmation raced across the pool.
func (o *Orchestrator) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	reqLogger := o.logger.WithRequest("transfer").With(
		zap.String("recipient", req.Recipient),
		zap.String("amount", req.Amount.String()))

	w, err := o.wallets.GetWallet(req.Wallet)
	if err != nil {
		return nil, err
	}
	recipient, err := solanasdk.PublicKeyFromBase58(req.Recipient)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", req.Recipient, err)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive, got %s", req.Amount)
	}

	native := token.Token{Symbol: nativeSymbol, Address: token.NativeMint, Decimals: nativeDecimals}
	balance, err := o.balances.Balance(ctx, w.PublicKey, native)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(req.Amount) {
		reqLogger.Info("Transfer rejected by balance guard",
			zap.String("balance", balance.String()))
		return nil, gwerr.InsufficientBalance(native.Symbol, balance.String(), req.Amount.String())
	}

	rawLamports := native.ToRaw(req.Amount).BigInt()
	if !rawLamports.IsUint64() {
		return nil, fmt.Errorf("amount %s exceeds the representable lamport range", req.Amount)
	}
	lamports := rawLamports.Uint64()

	build := func(ctx context.Context, priorityFee uint64) (*solanasdk.Transaction, uint64, error) {
		tx, ceiling, err := o.transfers.BuildTransfer(ctx, w.PublicKey, recipient, lamports, priorityFee)
		if err != nil {
			return nil, 0, err
		}
		if err := w.SignTransaction(tx); err != nil {
			return nil, 0, err
		}
		return tx, ceiling, nil
	}

	receipt, err := o.sender.SendWithEscalation(ctx, o.fees, build)
	if err != nil {
		return nil, err
	}

	o.logger.WithTransaction(receipt.Signature.String()).Info("Transfer executed",
		zap.String("recipient", req.Recipient),
		zap.Uint64("lamports", lamports),
		zap.Uint64("realized_fee", receipt.Fee),
		zap.Uint64("slot", receipt.Slot))

	return &TransferResult{
		Network:       o.cfg.Network,
		From:          w.PublicKey.String(),
		To:            req.Recipient,
		Amount:        native.FormatAmount(req.Amount),
		Signature:     receipt.Signature.String(),
		RealizedFee:   receipt.Fee,
		ConfirmedSlot: receipt.Slot,
	}, nil
}

// EstimateGas reports the current priority fee and the projected cost of
// one transaction at the configured compute budget.
func (o *Orchestrator) EstimateGas(ctx context.Context) (*GasEstimate, error) {
	fee, err := o.fees.Estimate(ctx)
	if err != nil {
		return nil, err
	}

	// fee is micro-lamports per compute unit; shift 15 = 6 (micro) + 9
	// (lamports per SOL).
	cost := decimal.NewFromInt(int64(fee)).
		Mul(decimal.NewFromInt(int64(o.cfg.ComputeUnits))).
		Shift(-15)

	return &GasEstimate{
		Network:      o.cfg.Network,
		PriorityFee:  fee,
		ComputeUnits: o.cfg.ComputeUnits,
		Cost:         cost,
	}, nil
}

// Balances resolves the requested symbols and reads one snapshot of the
// wallet's holdings. An empty symbol list reads the full token list.
func (o *Orchestrator) Balances(ctx context.Context, walletAddr string, symbols []string) (*BalanceResult, error) {
	reqLogger := o.logger.WithRequest("balances")

	w, err := o.wallets.GetWallet(walletAddr)
	if err != nil {
		return nil, err
	}

	var tokens []token.Token
	if len(symbols) == 0 {
		tokens = o.tokens.Tokens()
	} else {
		for _, symbol := range symbols {
			tok, ok := o.tokens.Resolve(symbol)
			if !ok {
				return nil, gwerr.TokenNotFound(symbol)
			}
			tokens = append(tokens, tok)
		}
	}

	balances, err := o.balances.Balances(ctx, w.PublicKey, tokens)
	if err != nil {
		return nil, err
	}
	reqLogger.Debug("Balance snapshot taken",
		zap.String("wallet", w.PublicKey.String()),
		zap.Int("tokens", len(balances)))

	return &BalanceResult{
		Network:  o.cfg.Network,
		Wallet:   w.PublicKey.String(),
		Balances: balances,
	}, nil
}
