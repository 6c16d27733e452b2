// Package address derives chain-specific receive addresses from a BIP-39
// seed. Each chain is an independent Deriver; a failure on one chain is
// reported for that chain only.
package address

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Klingon-tech/seedrecover/internal/log"
	"github.com/Klingon-tech/seedrecover/internal/wallet"
)

// Chain tags a supported blockchain.
type Chain string

const (
	BTC Chain = "BTC"
	ETH Chain = "ETH"
	SOL Chain = "SOL"
)

// ParseChain converts a case-insensitive chain name into a Chain.
func ParseChain(s string) (Chain, error) {
	switch c := Chain(strings.ToUpper(strings.TrimSpace(s))); c {
	case BTC, ETH, SOL:
		return c, nil
	default:
		return "", fmt.Errorf("unsupported chain %q", s)
	}
}

// Result is the outcome of deriving one chain's address.
type Result struct {
	Chain   Chain
	Address string
	Path    wallet.DerivationPath
	Err     error
}

// OK reports whether an address was derived.
func (r Result) OK() bool {
	return r.Err == nil && r.Address != ""
}

// DeriveError records why a chain's derivation failed.
type DeriveError struct {
	Chain Chain
	Path  wallet.DerivationPath
	Err   error
}

func (e *DeriveError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Chain, e.Path, e.Err)
}

func (e *DeriveError) Unwrap() error {
	return e.Err
}

// Deriver produces one chain's address from the master keys of a seed.
type Deriver interface {
	Chain() Chain
	Path() wallet.DerivationPath
	Derive(m *Master) (string, error)
}

// Master lazily builds the BIP-32 master key for one seed so that several
// derivers share the HMAC work. Not safe for concurrent use.
type Master struct {
	seed []byte

	secp    *wallet.HDKey
	secpErr error
	secpSet bool
}

// NewMaster wraps a seed.
func NewMaster(seed []byte) *Master {
	return &Master{seed: seed}
}

// Secp256k1 returns the BIP-32 master key.
func (m *Master) Secp256k1() (*wallet.HDKey, error) {
	if !m.secpSet {
		m.secp, m.secpErr = wallet.NewMasterKey(m.seed)
		m.secpSet = true
	}
	return m.secp, m.secpErr
}

// Seed returns the seed the master was built from.
func (m *Master) Seed() []byte {
	return m.seed
}

// Default returns the BTC, ETH and SOL derivers on their standard paths.
func Default() []Deriver {
	return []Deriver{NewBitcoin(nil), NewEthereum(nil), NewSolana(nil)}
}

// ForChains returns default derivers for the given chains, in order.
func ForChains(chains []Chain) ([]Deriver, error) {
	return ForChainsScheme(chains, SolanaBIP32)
}

// ForChainsScheme is ForChains with SOL derived by scheme.
func ForChainsScheme(chains []Chain, scheme SolanaScheme) ([]Deriver, error) {
	out := make([]Deriver, 0, len(chains))
	for _, c := range chains {
		switch c {
		case BTC:
			out = append(out, NewBitcoin(nil))
		case ETH:
			out = append(out, NewEthereum(nil))
		case SOL:
			d, err := NewSolanaScheme(scheme)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		default:
			return nil, fmt.Errorf("unsupported chain %q", c)
		}
	}
	return out, nil
}

// DeriveAll runs every deriver against seed. The returned map has one entry
// per deriver whether or not it succeeded.
func DeriveAll(seed []byte, derivers []Deriver) map[Chain]Result {
	m := NewMaster(seed)
	out := make(map[Chain]Result, len(derivers))
	for _, d := range derivers {
		out[d.Chain()] = derive(m, d)
	}
	return out
}

func derive(m *Master, d Deriver) (res Result) {
	res = Result{Chain: d.Chain(), Path: d.Path()}
	defer func() {
		if r := recover(); r != nil {
			res.Address = ""
			res.Err = &DeriveError{Chain: d.Chain(), Path: d.Path(), Err: fmt.Errorf("panic: %v", r)}
			log.Derive.Error().Str("chain", string(d.Chain())).Interface("panic", r).Msg("Deriver panicked")
		}
	}()

	addr, err := d.Derive(m)
	if err != nil {
		res.Err = &DeriveError{Chain: d.Chain(), Path: d.Path(), Err: err}
		return res
	}
	res.Address = addr
	return res
}

// AnyOK reports whether at least one chain produced an address.
func AnyOK(results map[Chain]Result) bool {
	for _, r := range results {
		if r.OK() {
			return true
		}
	}
	return false
}

// SortedChains returns the chains in results in a stable order.
func SortedChains(results map[Chain]Result) []Chain {
	chains := make([]Chain, 0, len(results))
	for c := range results {
		chains = append(chains, c)
	}
	sort.Slice(chains, func(i, j int) bool { return chains[i] < chains[j] })
	return chains
}
