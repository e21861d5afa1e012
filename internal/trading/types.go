package trading

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MoonshotMechanics/gateway/internal/connector"
	"github.com/MoonshotMechanics/gateway/internal/token"
)

// Side is the trade direction relative to the base token.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Native asset descriptor used by the transfer path.
const (
	nativeSymbol   = "SOL"
	nativeDecimals = 9
)

// ParseAmount converts a decimal-string request field using exact decimal
// arithmetic. Binary floats never enter a comparison or balance check.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal amount %q: %w", s, err)
	}
	return d, nil
}

// PriceRequest asks what a trade would cost right now. Amount is in human
// units of the base token.
type PriceRequest struct {
	Connector   string
	Base        string
	Quote       string
	Amount      decimal.Decimal
	Side        Side
	SlippageBps uint16
}

// PriceResult reports the resolved tokens and the quote-derived
// expectation. ExpectedPrice is quote units per base unit.
type PriceResult struct {
	Network        string
	Base           token.Token
	Quote          token.Token
	Side           Side
	Amount         string          // human base amount at the base token's precision
	RawAmount      string          // raw base units
	ExpectedAmount decimal.Decimal // human quote-token amount in or out
	ExpectedPrice  decimal.Decimal
	RouteQuote     *connector.Quote
}

// TradeRequest executes a trade. A nil LimitPrice skips the limit guard.
type TradeRequest struct {
	PriceRequest
	Wallet     string
	LimitPrice *decimal.Decimal
}

// TradeResult reflects what actually executed: realized fee and compute
// units come from the confirmed transaction, not the pre-trade estimate.
type TradeResult struct {
	PriceResult
	Signature     string
	RealizedFee   uint64 // lamports
	ComputeUnits  uint64
	ConfirmedSlot uint64
}

// TransferRequest moves native SOL from a resolved wallet to a recipient
// address. Amount is in human units.
type TransferRequest struct {
	Wallet    string
	Recipient string
	Amount    decimal.Decimal
}

// TransferResult reflects a confirmed transfer.
type TransferResult struct {
	Network       string
	From          string
	To            string
	Amount        string
	Signature     string
	RealizedFee   uint64 // lamports
	ConfirmedSlot uint64
}

// GasEstimate is the current cost of landing a transaction.
type GasEstimate struct {
	Network      string
	PriorityFee  uint64 // micro-lamports per compute unit
	ComputeUnits uint32
	Cost         decimal.Decimal // SOL
}

// BalanceResult is one wallet balance snapshot.
type BalanceResult struct {
	Network  string
	Wallet   string
	Balances map[string]decimal.Decimal // symbol -> human amount
}
