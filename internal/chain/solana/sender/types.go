package sender

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// State tags a confirmation outcome. A Confirmation is never partially
// populated: Receipt is set only for Confirmed, ChainError only for Failed.
type State int

const (
	Unconfirmed State = iota
	Confirmed
	Failed
)

func (s State) String() string {
	switch s {
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	default:
		return "unconfirmed"
	}
}

// Receipt describes a landed transaction using post-confirmation chain data,
// not pre-trade estimates.
type Receipt struct {
	Signature    solana.Signature
	Fee          uint64 // lamports actually paid
	ComputeUnits uint64 // compute units actually consumed
	Slot         uint64
}

// Confirmation is the tagged result of a confirm attempt.
type Confirmation struct {
	State      State
	Receipt    *Receipt
	ChainError string
}

// Config tunes broadcast, confirmation and escalation behavior. All values
// are injected from configuration so tests can run with deterministic
// small numbers.
type Config struct {
	Multiplier      float64 // geometric fee escalation factor, > 1
	CeilingFee      uint64  // micro-lamports per compute unit
	ConfirmRetries  int     // confirm attempts per fee level
	ConfirmTimeout  time.Duration
	PollInterval    time.Duration
	RetryInterval   time.Duration
	HeightTolerance uint64 // slots past the validity ceiling still attempted
}
