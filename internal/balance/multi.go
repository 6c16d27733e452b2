package balance

import (
	"context"
	"math/big"

	"github.com/Klingon-tech/seedrecover/internal/address"
	"github.com/Klingon-tech/seedrecover/internal/log"
)

// Multi routes each chain to its Source and degrades failures to
// StatusUnknown.
type Multi struct {
	sources map[address.Chain]Source
	retry   RetryConfig
}

// NewMulti creates a checker over the given sources. A later source for the
// same chain replaces an earlier one.
func NewMulti(retry RetryConfig, sources ...Source) *Multi {
	m := &Multi{sources: make(map[address.Chain]Source, len(sources)), retry: retry}
	for _, s := range sources {
		m.sources[s.Chain()] = s
	}
	return m
}

// Chains returns the chains this checker can resolve.
func (m *Multi) Chains() []address.Chain {
	out := make([]address.Chain, 0, len(m.sources))
	for _, c := range []address.Chain{address.BTC, address.ETH, address.SOL} {
		if _, ok := m.sources[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Check looks up one address. It never returns an error; failures are
// reported through Status and Err.
func (m *Multi) Check(ctx context.Context, chain address.Chain, addr string) Balance {
	b := Balance{Chain: chain, Address: addr, Status: StatusUnknown}
	src, ok := m.sources[chain]
	if !ok {
		b.Err = ErrNoSource
		return b
	}
	b.Decimals = src.Decimals()

	amount, err := WithRetry(ctx, m.retry, func() (*big.Int, error) {
		return src.Fetch(ctx, addr)
	})
	if err != nil {
		b.Err = err
		log.Balance.Debug().Err(err).Str("chain", string(chain)).Str("address", addr).Msg("Balance unknown")
		return b
	}
	b.Amount = amount
	b.Status = StatusKnown
	return b
}

// CheckAll looks up every successfully derived address, one chain after the
// other. Chains that failed derivation are skipped.
func (m *Multi) CheckAll(ctx context.Context, addrs map[address.Chain]address.Result) Report {
	report := make(Report, len(addrs))
	for _, chain := range address.SortedChains(addrs) {
		res := addrs[chain]
		if !res.OK() {
			continue
		}
		report[chain] = m.Check(ctx, chain, res.Address)
	}
	return report
}
