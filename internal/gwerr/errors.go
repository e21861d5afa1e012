// Package gwerr defines the stable error taxonomy surfaced by the gateway.
// Every user-visible failure carries a machine-readable code plus a message;
// internal causes stay attached through the error chain for logging.
package gwerr

import (
	"errors"
	"fmt"
)

// Code identifies a failure class. Codes are part of the public contract and
// must never change once clients depend on them.
type Code string

const (
	CodeTokenNotFound       Code = "TOKEN_NOT_FOUND"
	CodePriceFailed         Code = "PRICE_FAILED"
	CodeFeeEstimationFailed Code = "FEE_ESTIMATION_FAILED"
	CodeMaxHeightExceeded   Code = "MAX_HEIGHT_EXCEEDED"
	CodeFeeCeilingExceeded  Code = "FEE_CEILING_EXCEEDED"
	CodeOnChainFailure      Code = "ON_CHAIN_FAILURE"
	CodeLimitPriceViolation Code = "LIMIT_PRICE_VIOLATION"
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"
	CodeLoadWallet          Code = "LOAD_WALLET_ERROR"
)

// Error is the gateway's typed failure. It wraps an optional cause so that
// errors.Is/errors.As keep working across layers.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds a typed error with a formatted message.
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a typed error around an underlying cause.
func Wrap(code Code, cause error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// CodeOf extracts the taxonomy code from err, or "" when err is not a
// gateway error.
func CodeOf(err error) Code {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

func TokenNotFound(symbol string) *Error {
	return New(CodeTokenNotFound, "token %q is not present in the token list", symbol)
}

func PriceFailed(cause error) *Error {
	return Wrap(CodePriceFailed, cause, "failed to fetch quote")
}

func FeeEstimationFailed(cause error) *Error {
	return Wrap(CodeFeeEstimationFailed, cause, "failed to estimate priority fee")
}

func MaxHeightExceeded(height, ceiling uint64) *Error {
	return New(CodeMaxHeightExceeded, "network height %d exceeded validity ceiling %d before inclusion", height, ceiling)
}

func FeeCeilingExceeded(fee, ceiling uint64) *Error {
	return New(CodeFeeCeilingExceeded, "escalated fee %d exceeds configured ceiling %d", fee, ceiling)
}

// OnChainFailure carries the chain-reported error payload verbatim. It is a
// definitive rejection and must never be retried.
func OnChainFailure(detail string) *Error {
	return New(CodeOnChainFailure, "transaction rejected on chain: %s", detail)
}

func LimitPriceViolation(side, expected, limit string) *Error {
	return New(CodeLimitPriceViolation, "%s expected price %s violates limit price %s", side, expected, limit)
}

func InsufficientBalance(symbol, have, want string) *Error {
	return New(CodeInsufficientBalance, "insufficient %s balance: have %s, need %s", symbol, have, want)
}

func LoadWallet(cause error, address string) *Error {
	return Wrap(CodeLoadWallet, cause, "failed to load wallet %s", address)
}
