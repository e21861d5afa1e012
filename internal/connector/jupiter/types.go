package jupiter

// quoteResponse is the subset of the aggregator quote payload the gateway
// reads. The full body is kept verbatim and replayed into the swap build,
// so unread route fields survive untouched.
type quoteResponse struct {
	InputMint  string `json:"inputMint"`
	InAmount   string `json:"inAmount"`
	OutputMint string `json:"outputMint"`
	OutAmount  string `json:"outAmount"`
	SwapMode   string `json:"swapMode"`
}

type swapRequest struct {
	QuoteResponse                 interface{} `json:"quoteResponse"`
	UserPublicKey                 string      `json:"userPublicKey"`
	WrapAndUnwrapSol              bool        `json:"wrapAndUnwrapSol"`
	ComputeUnitPriceMicroLamports uint64      `json:"computeUnitPriceMicroLamports"`
}

type swapResponse struct {
	SwapTransaction      string `json:"swapTransaction"` // base64
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}
