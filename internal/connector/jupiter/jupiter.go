// Package jupiter implements the gateway connector capability set against
// the Jupiter aggregator API. Route finding and pricing belong to the
// aggregator; this package consumes its quotes opaquely and drives swap
// submission through the fee-escalation engine.
package jupiter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/MoonshotMechanics/gateway/internal/chain/solana/sender"
	"github.com/MoonshotMechanics/gateway/internal/connector"
	"github.com/MoonshotMechanics/gateway/internal/wallet"
)

const connectorName = "jupiter"

type Config struct {
	QuoteURL       string
	SwapURL        string
	RequestTimeout time.Duration
}

type Connector struct {
	api    *apiClient
	sender *sender.Sender
	fees   sender.FeeSource
	logger *zap.Logger
}

func New(cfg Config, txSender *sender.Sender, fees sender.FeeSource, logger *zap.Logger) *Connector {
	return &Connector{
		api:    newAPIClient(cfg.QuoteURL, cfg.SwapURL, cfg.RequestTimeout),
		sender: txSender,
		fees:   fees,
		logger: logger.Named("jupiter"),
	}
}

func (c *Connector) Name() string {
	return connectorName
}

// Quote fetches a route proposal. The response body is retained verbatim
// so BuildSwap can replay it without re-quoting.
func (c *Connector) Quote(ctx context.Context, req connector.QuoteRequest) (*connector.Quote, error) {
	params := url.Values{}
	params.Set("inputMint", req.InputMint)
	params.Set("outputMint", req.OutputMint)
	params.Set("amount", req.Amount)
	params.Set("slippageBps", strconv.FormatUint(uint64(req.SlippageBps), 10))
	params.Set("swapMode", string(req.Mode))

	raw, err := c.api.fetchQuote(ctx, params)
	if err != nil {
		return nil, err
	}

	var parsed quoteResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("malformed quote response: %w", err)
	}
	if parsed.InAmount == "" || parsed.OutAmount == "" {
		return nil, fmt.Errorf("quote response missing amounts")
	}

	c.logger.Debug("Quote fetched",
		zap.String("input_mint", parsed.InputMint),
		zap.String("output_mint", parsed.OutputMint),
		zap.String("in_amount", parsed.InAmount),
		zap.String("out_amount", parsed.OutAmount))

	return &connector.Quote{
		InputMint:  parsed.InputMint,
		OutputMint: parsed.OutputMint,
		InAmount:   parsed.InAmount,
		OutAmount:  parsed.OutAmount,
		Mode:       req.Mode,
		Raw:        raw,
	}, nil
}

// BuildSwap asks the aggregator to assemble the swap at the given priority
// fee and signs the returned transaction. Each call gets a fresh blockhash
// and validity ceiling from the aggregator, which is exactly what the
// escalation loop needs between attempts.
func (c *Connector) BuildSwap(ctx context.Context, owner *wallet.Wallet, quote *connector.Quote, priorityFee uint64) (*solana.Transaction, uint64, error) {
	resp, err := c.api.postSwap(ctx, swapRequest{
		QuoteResponse:                 json.RawMessage(quote.Raw),
		UserPublicKey:                 owner.PublicKey.String(),
		WrapAndUnwrapSol:              true,
		ComputeUnitPriceMicroLamports: priorityFee,
	})
	if err != nil {
		return nil, 0, err
	}

	txBytes, err := base64.StdEncoding.DecodeString(resp.SwapTransaction)
	if err != nil {
		return nil, 0, fmt.Errorf("malformed swap transaction encoding: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(txBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode swap transaction: %w", err)
	}
	if err := owner.SignTransaction(tx); err != nil {
		return nil, 0, fmt.Errorf("failed to sign swap transaction: %w", err)
	}

	return tx, resp.LastValidBlockHeight, nil
}

// ExecuteSwap drives the quote to a terminal outcome through the
// fee-escalation engine. The receipt carries realized fee and compute-unit
// data read back from the confirmed transaction.
func (c *Connector) ExecuteSwap(ctx context.Context, owner *wallet.Wallet, quote *connector.Quote) (*sender.Receipt, error) {
	build := func(ctx context.Context, priorityFee uint64) (*solana.Transaction, uint64, error) {
		return c.BuildSwap(ctx, owner, quote, priorityFee)
	}
	return c.sender.SendWithEscalation(ctx, c.fees, build)
}
