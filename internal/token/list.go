// Package token resolves human trading symbols to on-chain token
// descriptors. How the list file is produced (static, remote, merged) is a
// collaborator concern; this package only loads and looks up.
package token

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// NativeMint is the wrapped-SOL mint used to mark the chain's native asset.
const NativeMint = "So11111111111111111111111111111111111111112"

// Token describes one entry of the token list.
type Token struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Address  string `json:"address"` // mint
	Decimals uint8  `json:"decimals"`
}

// IsNative reports whether the token is the chain's native asset.
func (t Token) IsNative() bool {
	return t.Address == NativeMint
}

// ToRaw converts a human amount into raw base units, truncating any
// precision beyond the token's decimals.
func (t Token) ToRaw(amount decimal.Decimal) decimal.Decimal {
	return amount.Shift(int32(t.Decimals)).Truncate(0)
}

// FromRaw converts raw base units into a human amount.
func (t Token) FromRaw(raw decimal.Decimal) decimal.Decimal {
	return raw.Shift(-int32(t.Decimals))
}

// FormatAmount renders a human amount at the token's full precision.
func (t Token) FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(int32(t.Decimals))
}

// List is an immutable, ordered token list.
type List struct {
	tokens []Token
}

func NewList(tokens []Token) *List {
	return &List{tokens: tokens}
}

// Load reads a JSON token list file: either a bare array or an object with
// a "tokens" field, the two shapes token lists ship in.
func Load(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token list: %w", err)
	}

	var tokens []Token
	if err := json.Unmarshal(data, &tokens); err != nil {
		var wrapped struct {
			Tokens []Token `json:"tokens"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil {
			return nil, fmt.Errorf("failed to parse token list: %w", err)
		}
		tokens = wrapped.Tokens
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("token list %s is empty", path)
	}

	return NewList(tokens), nil
}

// Resolve finds a token by case-insensitive exact symbol match. When the
// list carries duplicate symbols the LAST matching entry wins: appending to
// the list overrides earlier entries. That tie-break is preserved behavior,
// not an endorsement; rely on it only for deliberate overrides.
func (l *List) Resolve(symbol string) (Token, bool) {
	var (
		found Token
		ok    bool
	)
	for _, t := range l.tokens {
		if strings.EqualFold(t.Symbol, symbol) {
			found = t
			ok = true
		}
	}
	return found, ok
}

// Tokens returns the list entries in order.
func (l *List) Tokens() []Token {
	return l.tokens
}

// Len reports the number of entries.
func (l *List) Len() int {
	return len(l.tokens)
}
