package trading

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MoonshotMechanics/gateway/internal/chain/solana/sender"
	"github.com/MoonshotMechanics/gateway/internal/connector"
	"github.com/MoonshotMechanics/gateway/internal/gwerr"
	"github.com/MoonshotMechanics/gateway/internal/logger"
	"github.com/MoonshotMechanics/gateway/internal/token"
	"github.com/MoonshotMechanics/gateway/internal/wallet"
)

const (
	wetcMint = "WETCMintAddress1111111111111111111111111111"
	daiMint  = "DAIMintAddress11111111111111111111111111111"
	usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

// countingConnector records every call so guard tests can assert that a
// rejected trade produced zero submissions.
type countingConnector struct {
	quoteCalls   int
	buildCalls   int
	executeCalls int
	lastRequest  connector.QuoteRequest
	quoteFn      func(req connector.QuoteRequest) (*connector.Quote, error)
	receipt      *sender.Receipt
}

func (c *countingConnector) Name() string { return "jupiter" }

func (c *countingConnector) Quote(_ context.Context, req connector.QuoteRequest) (*connector.Quote, error) {
	c.quoteCalls++
	c.lastRequest = req
	return c.quoteFn(req)
}

func (c *countingConnector) BuildSwap(context.Context, *wallet.Wallet, *connector.Quote, uint64) (*solana.Transaction, uint64, error) {
	c.buildCalls++
	return nil, 0, errors.New("not used in tests")
}

func (c *countingConnector) ExecuteSwap(context.Context, *wallet.Wallet, *connector.Quote) (*sender.Receipt, error) {
	c.executeCalls++
	if c.receipt == nil {
		return nil, errors.New("no receipt configured")
	}
	return c.receipt, nil
}

// quoteEcho answers every quote with a fixed counter-leg amount, echoing
// the request's mints and mode.
func quoteEcho(inAmount, outAmount string) func(connector.QuoteRequest) (*connector.Quote, error) {
	return func(req connector.QuoteRequest) (*connector.Quote, error) {
		return &connector.Quote{
			InputMint:  req.InputMint,
			OutputMint: req.OutputMint,
			InAmount:   inAmount,
			OutAmount:  outAmount,
			Mode:       req.Mode,
			Raw:        []byte(`{"stub":true}`),
		}, nil
	}
}

type stubBalances struct {
	bySymbol map[string]decimal.Decimal
	err      error
}

func (s *stubBalances) Balance(_ context.Context, _ solana.PublicKey, tok token.Token) (decimal.Decimal, error) {
	if s.err != nil {
		return decimal.Zero, s.err
	}
	return s.bySymbol[tok.Symbol], nil
}

func (s *stubBalances) Balances(_ context.Context, _ solana.PublicKey, tokens []token.Token) (map[string]decimal.Decimal, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]decimal.Decimal, len(tokens))
	for _, tok := range tokens {
		out[tok.Symbol] = s.bySymbol[tok.Symbol]
	}
	return out, nil
}

// stubTransfers hands back a minimal signable transaction per fee level
// and records what it was asked to build.
type stubTransfers struct {
	calls        int
	lastLamports uint64
	lastFee      uint64
	err          error
}

func (s *stubTransfers) BuildTransfer(_ context.Context, from, _ solana.PublicKey, lamports, priorityFee uint64) (*solana.Transaction, uint64, error) {
	s.calls++
	s.lastLamports = lamports
	s.lastFee = priorityFee
	if s.err != nil {
		return nil, 0, s.err
	}
	tx, err := solana.NewTransaction(
		[]solana.Instruction{solana.NewInstruction(
			solana.SystemProgramID,
			[]*solana.AccountMeta{{PublicKey: from, IsSigner: true, IsWritable: true}},
			[]byte{2},
		)},
		solana.Hash{3},
		solana.TransactionPayer(from),
	)
	if err != nil {
		return nil, 0, err
	}
	return tx, 500, nil
}

// stubEscalator runs the builder once at the estimated fee and checks the
// transaction arrives signed, standing in for the escalation engine.
type stubEscalator struct {
	calls   int
	receipt *sender.Receipt
	err     error
}

func (s *stubEscalator) SendWithEscalation(ctx context.Context, fees sender.FeeSource, build sender.TxBuilder) (*sender.Receipt, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	fee, err := fees.Estimate(ctx)
	if err != nil {
		return nil, err
	}
	tx, _, err := build(ctx, fee)
	if err != nil {
		return nil, err
	}
	if err := tx.VerifySignatures(); err != nil {
		return nil, err
	}
	return s.receipt, nil
}

type stubWallets struct {
	wallet *wallet.Wallet
	err    error
}

func (s *stubWallets) GetWallet(string) (*wallet.Wallet, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.wallet, nil
}

type stubFees struct {
	fee uint64
	err error
}

func (s *stubFees) Estimate(context.Context) (uint64, error) { return s.fee, s.err }

func testTokens(t *testing.T) *token.List {
	t.Helper()
	return token.NewList([]token.Token{
		{Symbol: "SOL", Name: "Solana", Address: token.NativeMint, Decimals: 9},
		{Symbol: "WETC", Name: "Wrapped ETC", Address: wetcMint, Decimals: 18},
		{Symbol: "DAI", Name: "Dai", Address: daiMint, Decimals: 18},
		{Symbol: "USDC", Name: "USD Coin", Address: usdcMint, Decimals: 6},
	})
}

func testWallet(t *testing.T) *wallet.Wallet {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	w, err := wallet.New("trader", key.String())
	require.NoError(t, err)
	return w
}

func nopLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

// fixture bundles the orchestrator with every fake behind it.
type fixture struct {
	orch      *Orchestrator
	conn      *countingConnector
	balances  *stubBalances
	fees      *stubFees
	transfers *stubTransfers
	escalator *stubEscalator
}

func newFixture(t *testing.T, conn *countingConnector, balances *stubBalances, fees *stubFees, log *logger.Logger) *fixture {
	t.Helper()
	registry := connector.NewRegistry(zap.NewNop())
	require.NoError(t, registry.Register(conn))
	f := &fixture{
		conn:      conn,
		balances:  balances,
		fees:      fees,
		transfers: &stubTransfers{},
		escalator: &stubEscalator{},
	}
	f.orch = NewOrchestrator(
		Config{Network: "solana", ComputeUnits: 200_000},
		testTokens(t),
		&stubWallets{wallet: testWallet(t)},
		registry,
		balances,
		f.transfers,
		f.escalator,
		fees,
		log,
	)
	return f
}

func newTestOrchestrator(t *testing.T, conn *countingConnector, balances *stubBalances, fees *stubFees) *fixture {
	t.Helper()
	return newFixture(t, conn, balances, fees, nopLogger())
}

func decimalFrom(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount("10000000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, "10000000000000000000000", d.String())

	_, err = ParseAmount("ten")
	assert.Error(t, err)

	_, err = ParseAmount("")
	assert.Error(t, err)
}

func TestPriceBuyRequestsExactOut(t *testing.T) {
	// Buying 100 WETC costs 1000 DAI, so the router is asked for an
	// exact-output quote with the DAI leg as input.
	conn := &countingConnector{quoteFn: quoteEcho("1000000000000000000000", "100000000000000000000")}
	f := newTestOrchestrator(t, conn, &stubBalances{}, &stubFees{})

	price, err := f.orch.Price(context.Background(), PriceRequest{
		Connector: "jupiter",
		Base:      "WETC",
		Quote:     "DAI",
		Amount:    decimal.NewFromInt(100),
		Side:      Buy,
	})
	require.NoError(t, err)

	assert.Equal(t, connector.ExactOut, conn.lastRequest.Mode)
	assert.Equal(t, daiMint, conn.lastRequest.InputMint)
	assert.Equal(t, wetcMint, conn.lastRequest.OutputMint)
	assert.Equal(t, "100000000000000000000", conn.lastRequest.Amount)
	assert.True(t, price.ExpectedAmount.Equal(decimal.NewFromInt(1000)),
		"expected amount %s", price.ExpectedAmount)
	assert.True(t, price.ExpectedPrice.Equal(decimal.NewFromInt(10)),
		"expected price %s", price.ExpectedPrice)
}

func TestPriceHighPrecisionRoundTrip(t *testing.T) {
	// 10000 WETC at 18 decimals exceeds uint64 range as a raw amount;
	// the raw leg must survive as an exact decimal string.
	conn := &countingConnector{quoteFn: quoteEcho("", "25000000000000000000000000")}
	f := newTestOrchestrator(t, conn, &stubBalances{}, &stubFees{})

	price, err := f.orch.Price(context.Background(), PriceRequest{
		Connector: "jupiter",
		Base:      "WETC",
		Quote:     "DAI",
		Amount:    decimalFrom(t, "10000"),
		Side:      Sell,
	})
	require.NoError(t, err)

	assert.Equal(t, "10000000000000000000000", price.RawAmount)
	assert.Equal(t, "10000.000000000000000000", price.Amount)
	assert.True(t, price.ExpectedAmount.Equal(decimal.NewFromInt(25_000_000)),
		"expected amount %s", price.ExpectedAmount)
	assert.True(t, price.ExpectedPrice.Equal(decimal.NewFromInt(2500)),
		"expected price %s", price.ExpectedPrice)
}

func TestPriceUnknownToken(t *testing.T) {
	conn := &countingConnector{quoteFn: quoteEcho("1", "1")}
	f := newTestOrchestrator(t, conn, &stubBalances{}, &stubFees{})

	_, err := f.orch.Price(context.Background(), PriceRequest{
		Connector: "jupiter",
		Base:      "NOPE",
		Quote:     "DAI",
		Amount:    decimal.NewFromInt(1),
		Side:      Sell,
	})
	require.Error(t, err)
	assert.Equal(t, gwerr.CodeTokenNotFound, gwerr.CodeOf(err))
	assert.Zero(t, conn.quoteCalls)
}

func TestPriceQuoteFailureWrapped(t *testing.T) {
	conn := &countingConnector{quoteFn: func(connector.QuoteRequest) (*connector.Quote, error) {
		return nil, errors.New("router unavailable")
	}}
	f := newTestOrchestrator(t, conn, &stubBalances{}, &stubFees{})

	_, err := f.orch.Price(context.Background(), PriceRequest{
		Connector: "jupiter",
		Base:      "WETC",
		Quote:     "DAI",
		Amount:    decimal.NewFromInt(1),
		Side:      Sell,
	})
	require.Error(t, err)
	assert.Equal(t, gwerr.CodePriceFailed, gwerr.CodeOf(err))
}

func TestPriceRejectsNonNumericQuoteAmount(t *testing.T) {
	conn := &countingConnector{quoteFn: quoteEcho("", "not-a-number")}
	f := newTestOrchestrator(t, conn, &stubBalances{}, &stubFees{})

	_, err := f.orch.Price(context.Background(), PriceRequest{
		Connector: "jupiter",
		Base:      "WETC",
		Quote:     "DAI",
		Amount:    decimal.NewFromInt(1),
		Side:      Sell,
	})
	require.Error(t, err)
	assert.Equal(t, gwerr.CodePriceFailed, gwerr.CodeOf(err))
}

func TestTradeBuyLimitPriceGuard(t *testing.T) {
	// Expected price 10 DAI per WETC against a limit of 9: the trade
	// must fail before anything is built or submitted.
	conn := &countingConnector{quoteFn: quoteEcho("1000000000000000000000", "100000000000000000000")}
	f := newTestOrchestrator(t, conn, &stubBalances{
		bySymbol: map[string]decimal.Decimal{"DAI": decimal.NewFromInt(1_000_000)},
	}, &stubFees{})

	limit := decimal.NewFromInt(9)
	_, err := f.orch.Trade(context.Background(), TradeRequest{
		PriceRequest: PriceRequest{
			Connector: "jupiter",
			Base:      "WETC",
			Quote:     "DAI",
			Amount:    decimal.NewFromInt(100),
			Side:      Buy,
		},
		Wallet:     "trader",
		LimitPrice: &limit,
	})
	require.Error(t, err)
	assert.Equal(t, gwerr.CodeLimitPriceViolation, gwerr.CodeOf(err))
	assert.Zero(t, conn.buildCalls)
	assert.Zero(t, conn.executeCalls)
}

func TestTradeSellLimitPriceGuard(t *testing.T) {
	// Selling at 5 USDC per WETC against a floor of 6 is rejected.
	conn := &countingConnector{quoteFn: quoteEcho("", "50000000")}
	f := newTestOrchestrator(t, conn, &stubBalances{
		bySymbol: map[string]decimal.Decimal{"WETC": decimal.NewFromInt(100)},
	}, &stubFees{})

	limit := decimal.NewFromInt(6)
	_, err := f.orch.Trade(context.Background(), TradeRequest{
		PriceRequest: PriceRequest{
			Connector: "jupiter",
			Base:      "WETC",
			Quote:     "USDC",
			Amount:    decimal.NewFromInt(10),
			Side:      Sell,
		},
		Wallet:     "trader",
		LimitPrice: &limit,
	})
	require.Error(t, err)
	assert.Equal(t, gwerr.CodeLimitPriceViolation, gwerr.CodeOf(err))
	assert.Zero(t, conn.executeCalls)
}

func TestTradeSellLimitPriceIsAFloor(t *testing.T) {
	// The SELL limit is a minimum acceptable price: any expected price
	// below it is rejected no matter how large the limit is. An
	// arbitrarily high floor therefore blocks the trade rather than
	// waving it through.
	conn := &countingConnector{quoteFn: quoteEcho("", "100000000")}
	f := newTestOrchestrator(t, conn, &stubBalances{
		bySymbol: map[string]decimal.Decimal{"WETC": decimal.NewFromInt(100)},
	}, &stubFees{})

	limit := decimalFrom(t, "99999999999")
	_, err := f.orch.Trade(context.Background(), TradeRequest{
		PriceRequest: PriceRequest{
			Connector: "jupiter",
			Base:      "WETC",
			Quote:     "USDC",
			Amount:    decimal.NewFromInt(10), // expected price 10
			Side:      Sell,
		},
		Wallet:     "trader",
		LimitPrice: &limit,
	})
	require.Error(t, err)
	assert.Equal(t, gwerr.CodeLimitPriceViolation, gwerr.CodeOf(err))
	assert.Zero(t, conn.executeCalls)
}

func TestTradeBalanceGuard(t *testing.T) {
	conn := &countingConnector{quoteFn: quoteEcho("", "50000000000000000000000000")}
	f := newTestOrchestrator(t, conn, &stubBalances{
		bySymbol: map[string]decimal.Decimal{"WETC": decimal.NewFromInt(5000)},
	}, &stubFees{})

	_, err := f.orch.Trade(context.Background(), TradeRequest{
		PriceRequest: PriceRequest{
			Connector: "jupiter",
			Base:      "WETC",
			Quote:     "DAI",
			Amount:    decimal.NewFromInt(10_000),
			Side:      Sell,
		},
		Wallet: "trader",
	})
	require.Error(t, err)
	assert.Equal(t, gwerr.CodeInsufficientBalance, gwerr.CodeOf(err))
	assert.Zero(t, conn.buildCalls)
	assert.Zero(t, conn.executeCalls)
}

func TestTradeBuyBalanceGuardChecksQuoteToken(t *testing.T) {
	// Buying 100 WETC for 1000 DAI with only 999 DAI in the wallet.
	conn := &countingConnector{quoteFn: quoteEcho("1000000000000000000000", "100000000000000000000")}
	f := newTestOrchestrator(t, conn, &stubBalances{
		bySymbol: map[string]decimal.Decimal{
			"WETC": decimal.NewFromInt(1_000_000),
			"DAI":  decimal.NewFromInt(999),
		},
	}, &stubFees{})

	_, err := f.orch.Trade(context.Background(), TradeRequest{
		PriceRequest: PriceRequest{
			Connector: "jupiter",
			Base:      "WETC",
			Quote:     "DAI",
			Amount:    decimal.NewFromInt(100),
			Side:      Buy,
		},
		Wallet: "trader",
	})
	require.Error(t, err)
	assert.Equal(t, gwerr.CodeInsufficientBalance, gwerr.CodeOf(err))
	assert.Zero(t, conn.executeCalls)
}

func TestTradeSuccessCarriesReceipt(t *testing.T) {
	sig := solana.Signature{0xAB}
	conn := &countingConnector{
		quoteFn: quoteEcho("", "50000000"),
		receipt: &sender.Receipt{Signature: sig, Fee: 6000, ComputeUnits: 140_000, Slot: 777},
	}
	f := newTestOrchestrator(t, conn, &stubBalances{
		bySymbol: map[string]decimal.Decimal{"WETC": decimal.NewFromInt(100)},
	}, &stubFees{})

	limit := decimal.NewFromInt(4)
	result, err := f.orch.Trade(context.Background(), TradeRequest{
		PriceRequest: PriceRequest{
			Connector: "jupiter",
			Base:      "WETC",
			Quote:     "USDC",
			Amount:    decimal.NewFromInt(10),
			Side:      Sell,
		},
		Wallet:     "trader",
		LimitPrice: &limit,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, conn.executeCalls)
	assert.Equal(t, sig.String(), result.Signature)
	assert.Equal(t, uint64(6000), result.RealizedFee)
	assert.Equal(t, uint64(140_000), result.ComputeUnits)
	assert.Equal(t, uint64(777), result.ConfirmedSlot)
	assert.True(t, result.ExpectedPrice.Equal(decimal.NewFromInt(5)),
		"expected price %s", result.ExpectedPrice)
}

func TestTradeLogsCarryCorrelationID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	conn := &countingConnector{
		quoteFn: quoteEcho("", "50000000"),
		receipt: &sender.Receipt{Signature: solana.Signature{0xCD}, Fee: 6000, Slot: 42},
	}

	// A guard rejection logs through the per-request logger.
	f := newFixture(t, conn, &stubBalances{
		bySymbol: map[string]decimal.Decimal{"WETC": decimal.NewFromInt(100)},
	}, &stubFees{}, &logger.Logger{Logger: zap.New(core)})

	limit := decimal.NewFromInt(6)
	_, err := f.orch.Trade(context.Background(), TradeRequest{
		PriceRequest: PriceRequest{
			Connector: "jupiter",
			Base:      "WETC",
			Quote:     "USDC",
			Amount:    decimal.NewFromInt(10),
			Side:      Sell,
		},
		Wallet:     "trader",
		LimitPrice: &limit,
	})
	require.Error(t, err)

	rejected := logs.FilterMessage("Trade rejected by limit price guard").All()
	require.Len(t, rejected, 1)
	fields := rejected[0].ContextMap()
	assert.Equal(t, "trade", fields["operation"])
	assert.NotEmpty(t, fields["correlation_id"])

	// A completed trade is stamped with its settlement signature.
	_, err = f.orch.Trade(context.Background(), TradeRequest{
		PriceRequest: PriceRequest{
			Connector: "jupiter",
			Base:      "WETC",
			Quote:     "USDC",
			Amount:    decimal.NewFromInt(10),
			Side:      Sell,
		},
		Wallet: "trader",
	})
	require.NoError(t, err)

	executed := logs.FilterMessage("Trade executed").All()
	require.Len(t, executed, 1)
	assert.Equal(t, solana.Signature{0xCD}.String(), executed[0].ContextMap()["signature"])
}

func TestTransferSendsThroughEscalation(t *testing.T) {
	conn := &countingConnector{quoteFn: quoteEcho("1", "1")}
	f := newTestOrchestrator(t, conn, &stubBalances{
		bySymbol: map[string]decimal.Decimal{"SOL": decimalFrom(t, "2.5")},
	}, &stubFees{fee: 15_000})
	f.escalator.receipt = &sender.Receipt{Signature: solana.Signature{0xEF}, Fee: 5200, Slot: 901}

	recipient := solana.MustPublicKeyFromBase58("9aE476sH92Vz7DMPyq5WLPkrKWivxeuTKEFKd2sZZcde")
	result, err := f.orch.Transfer(context.Background(), TransferRequest{
		Wallet:    "trader",
		Recipient: recipient.String(),
		Amount:    decimalFrom(t, "1.5"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.escalator.calls)
	assert.Equal(t, 1, f.transfers.calls)
	assert.Equal(t, uint64(1_500_000_000), f.transfers.lastLamports)
	assert.Equal(t, uint64(15_000), f.transfers.lastFee)
	assert.Equal(t, "1.500000000", result.Amount)
	assert.Equal(t, recipient.String(), result.To)
	assert.Equal(t, solana.Signature{0xEF}.String(), result.Signature)
	assert.Equal(t, uint64(5200), result.RealizedFee)
	assert.Equal(t, uint64(901), result.ConfirmedSlot)
}

func TestTransferBalanceGuardBlocksSubmission(t *testing.T) {
	conn := &countingConnector{quoteFn: quoteEcho("1", "1")}
	f := newTestOrchestrator(t, conn, &stubBalances{
		bySymbol: map[string]decimal.Decimal{"SOL": decimal.NewFromInt(1)},
	}, &stubFees{fee: 15_000})

	_, err := f.orch.Transfer(context.Background(), TransferRequest{
		Wallet:    "trader",
		Recipient: "9aE476sH92Vz7DMPyq5WLPkrKWivxeuTKEFKd2sZZcde",
		Amount:    decimal.NewFromInt(2),
	})
	require.Error(t, err)
	assert.Equal(t, gwerr.CodeInsufficientBalance, gwerr.CodeOf(err))
	assert.Zero(t, f.transfers.calls)
	assert.Zero(t, f.escalator.calls)
}

func TestTransferRejectsMalformedRecipient(t *testing.T) {
	conn := &countingConnector{quoteFn: quoteEcho("1", "1")}
	f := newTestOrchestrator(t, conn, &stubBalances{
		bySymbol: map[string]decimal.Decimal{"SOL": decimal.NewFromInt(10)},
	}, &stubFees{})

	_, err := f.orch.Transfer(context.Background(), TransferRequest{
		Wallet:    "trader",
		Recipient: "not-an-address",
		Amount:    decimal.NewFromInt(1),
	})
	require.Error(t, err)
	assert.Zero(t, f.escalator.calls)
}

func TestEstimateGas(t *testing.T) {
	conn := &countingConnector{quoteFn: quoteEcho("1", "1")}
	f := newTestOrchestrator(t, conn, &stubBalances{}, &stubFees{fee: 10_000})

	estimate, err := f.orch.EstimateGas(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint64(10_000), estimate.PriorityFee)
	assert.Equal(t, uint32(200_000), estimate.ComputeUnits)
	// 10_000 micro-lamports/CU * 200_000 CU = 2e9 micro-lamports = 2000
	// lamports = 0.000002 SOL.
	assert.True(t, estimate.Cost.Equal(decimalFrom(t, "0.000002")),
		"cost %s", estimate.Cost)
}

func TestEstimateGasPropagatesFeeError(t *testing.T) {
	conn := &countingConnector{quoteFn: quoteEcho("1", "1")}
	f := newTestOrchestrator(t, conn, &stubBalances{}, &stubFees{err: gwerr.FeeEstimationFailed(errors.New("rpc down"))})

	_, err := f.orch.EstimateGas(context.Background())
	require.Error(t, err)
	assert.Equal(t, gwerr.CodeFeeEstimationFailed, gwerr.CodeOf(err))
}

func TestBalancesSelectedSymbols(t *testing.T) {
	conn := &countingConnector{quoteFn: quoteEcho("1", "1")}
	f := newTestOrchestrator(t, conn, &stubBalances{
		bySymbol: map[string]decimal.Decimal{
			"SOL":  decimalFrom(t, "2.5"),
			"USDC": decimalFrom(t, "1.25"),
			"WETC": decimal.NewFromInt(42),
		},
	}, &stubFees{})

	result, err := f.orch.Balances(context.Background(), "trader", []string{"sol", "usdc"})
	require.NoError(t, err)

	assert.Len(t, result.Balances, 2)
	assert.True(t, result.Balances["SOL"].Equal(decimalFrom(t, "2.5")))
	assert.True(t, result.Balances["USDC"].Equal(decimalFrom(t, "1.25")))
}

func TestBalancesUnknownSymbol(t *testing.T) {
	conn := &countingConnector{quoteFn: quoteEcho("1", "1")}
	f := newTestOrchestrator(t, conn, &stubBalances{}, &stubFees{})

	_, err := f.orch.Balances(context.Background(), "trader", []string{"NOPE"})
	require.Error(t, err)
	assert.Equal(t, gwerr.CodeTokenNotFound, gwerr.CodeOf(err))
}
