package wallet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tyler-smith/go-bip32"
)

// HardenedOffset marks a hardened child index.
const HardenedOffset = bip32.FirstHardenedChild

// DerivationPath is a sequence of child indices from the master key.
// Hardened indices carry HardenedOffset.
type DerivationPath []uint32

// BIP-44 purpose and SLIP-44 coin types used by the address derivers.
const (
	PurposeBIP44 = HardenedOffset + 44

	CoinTypeBitcoin  = HardenedOffset + 0
	CoinTypeEthereum = HardenedOffset + 60
	CoinTypeSolana   = HardenedOffset + 501
)

// ParseDerivationPath parses paths of the form "m/44'/0'/0'/0/0".
// Both ' and h mark hardened components.
func ParseDerivationPath(s string) (DerivationPath, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) == 0 || strings.TrimSpace(parts[0]) != "m" {
		return nil, errors.New("derivation path must start with m/")
	}
	parts = parts[1:]
	if len(parts) == 0 {
		return nil, errors.New("empty derivation path")
	}

	path := make(DerivationPath, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		var offset uint32
		if strings.HasSuffix(p, "'") || strings.HasSuffix(p, "h") || strings.HasSuffix(p, "H") {
			offset = HardenedOffset
			p = p[:len(p)-1]
		}
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid component %q: %w", p, err)
		}
		if uint32(v) >= HardenedOffset {
			return nil, fmt.Errorf("component %d out of range [0, %d]", v, HardenedOffset-1)
		}
		path = append(path, uint32(v)+offset)
	}
	return path, nil
}

// MustParsePath is ParseDerivationPath for constant paths.
func MustParsePath(s string) DerivationPath {
	p, err := ParseDerivationPath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String renders the path in canonical "m/44'/0'/0'/0/0" form.
func (p DerivationPath) String() string {
	var b strings.Builder
	b.WriteString("m")
	for _, c := range p {
		if c >= HardenedOffset {
			fmt.Fprintf(&b, "/%d'", c-HardenedOffset)
		} else {
			fmt.Fprintf(&b, "/%d", c)
		}
	}
	return b.String()
}

// HardenedOnly reports whether every component is hardened.
func (p DerivationPath) HardenedOnly() bool {
	for _, c := range p {
		if c < HardenedOffset {
			return false
		}
	}
	return true
}
