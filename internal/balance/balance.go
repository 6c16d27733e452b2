// Package balance looks up on-chain balances for derived addresses.
//
// Each chain is served by a Source. Multi routes addresses to sources,
// retries transient failures with backoff and degrades anything it cannot
// resolve to StatusUnknown, so a flaky explorer never stops a search.
package balance

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/Klingon-tech/seedrecover/internal/address"
)

var (
	// ErrTransport marks a failure to reach or parse a balance provider.
	ErrTransport = errors.New("balance transport failure")
	// ErrRateLimited is returned when a provider asks us to slow down.
	ErrRateLimited = errors.New("balance provider rate limited")
	// ErrNoSource is returned for a chain with no configured source.
	ErrNoSource = errors.New("no balance source for chain")
)

// Status says whether a balance was actually observed.
type Status int

const (
	StatusKnown Status = iota
	StatusUnknown
)

func (s Status) String() string {
	if s == StatusKnown {
		return "known"
	}
	return "unknown"
}

// Balance is one chain's balance in base units (satoshi, wei, lamports).
type Balance struct {
	Chain    address.Chain
	Address  string
	Amount   *big.Int
	Decimals int
	Status   Status
	Err      error
}

// Known reports whether the amount was observed.
func (b Balance) Known() bool {
	return b.Status == StatusKnown
}

// Positive reports whether a known, strictly positive balance was observed.
func (b Balance) Positive() bool {
	return b.Known() && b.Amount != nil && b.Amount.Sign() > 0
}

// Decimal renders the amount in whole coins, e.g. "0.00012345".
func (b Balance) Decimal() string {
	if b.Amount == nil {
		return "0"
	}
	return FormatUnits(b.Amount, b.Decimals)
}

func (b Balance) String() string {
	if !b.Known() {
		return fmt.Sprintf("? %s (unknown)", b.Chain)
	}
	return fmt.Sprintf("%s %s", b.Decimal(), b.Chain)
}

// FormatUnits converts base units to a decimal string with trailing zeros
// trimmed.
func FormatUnits(amount *big.Int, decimals int) string {
	r := new(big.Rat).SetFrac(amount, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	s := r.FloatString(decimals)
	if decimals == 0 {
		return s
	}
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}

// Report holds the per-chain balances of one candidate.
type Report map[address.Chain]Balance

// Positive reports whether any chain holds funds.
func (r Report) Positive() bool {
	for _, b := range r {
		if b.Positive() {
			return true
		}
	}
	return false
}

// Unknown reports whether any chain could not be resolved.
func (r Report) Unknown() bool {
	for _, b := range r {
		if !b.Known() {
			return true
		}
	}
	return false
}

// Source fetches the balance of one chain.
type Source interface {
	Chain() address.Chain
	Decimals() int
	Fetch(ctx context.Context, addr string) (*big.Int, error)
}

// Checker resolves the balances of a candidate's derived addresses.
type Checker interface {
	CheckAll(ctx context.Context, addrs map[address.Chain]address.Result) Report
}
