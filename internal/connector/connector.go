// Package connector defines the closed capability surface a DEX
// aggregator or venue must implement to participate in the gateway, and
// the explicit registry request handlers resolve connectors from.
package connector

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/MoonshotMechanics/gateway/internal/chain/solana/sender"
	"github.com/MoonshotMechanics/gateway/internal/wallet"
)

// SwapMode selects which leg of the quote is fixed.
type SwapMode string

const (
	// ExactIn fixes the input amount; the output floats with the market.
	ExactIn SwapMode = "ExactIn"
	// ExactOut fixes the output amount; the required input floats.
	ExactOut SwapMode = "ExactOut"
)

// QuoteRequest asks for a route proposal. Amounts are raw base-unit
// integers carried as decimal strings: token amounts routinely exceed
// uint64 at 18-decimal precision.
type QuoteRequest struct {
	InputMint   string
	OutputMint  string
	Amount      string // raw units of the fixed leg
	SlippageBps uint16
	Mode        SwapMode
}

// Quote is a connector-provided, time-limited route proposal. The route
// itself is opaque; the gateway only reads the two amounts.
type Quote struct {
	InputMint  string
	OutputMint string
	InAmount   string // raw units
	OutAmount  string // raw units
	Mode       SwapMode
	Raw        []byte // connector response, replayed verbatim into the swap build
}

// Connector is the closed capability set dispatched by connector name.
// Route finding and pricing live behind Quote; the gateway treats both as
// opaque.
type Connector interface {
	// Name is the stable registry key.
	Name() string

	// Quote fetches a route proposal for the request.
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)

	// BuildSwap assembles and signs the swap transaction for the quote at
	// the given priority fee, returning it with its validity ceiling
	// (last acceptable block height). Called once per fee level so every
	// escalation is built on a fresh recency window.
	BuildSwap(ctx context.Context, owner *wallet.Wallet, quote *Quote, priorityFee uint64) (*solana.Transaction, uint64, error)

	// ExecuteSwap drives BuildSwap through the fee-escalation engine to a
	// terminal outcome and reports realized fee and compute-unit data.
	ExecuteSwap(ctx context.Context, owner *wallet.Wallet, quote *Quote) (*sender.Receipt, error)
}
