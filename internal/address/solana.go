package address

import (
	"fmt"
	"strings"

	"github.com/Klingon-tech/seedrecover/internal/wallet"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/gagliardetto/solana-go"
)

// SolanaPath is the hardened-only SOL path, m/44'/501'/0'/0'.
var SolanaPath = wallet.DerivationPath{
	wallet.PurposeBIP44, wallet.CoinTypeSolana, wallet.HardenedOffset, wallet.HardenedOffset,
}

// SolanaScheme selects how SOL keys are derived from the seed.
type SolanaScheme string

const (
	// SolanaBIP32 walks SolanaPath from the shared secp256k1 BIP-32 master
	// and encodes the compressed public key in Base58. Addresses match
	// found_wallets.json files written by earlier recovery runs.
	SolanaBIP32 SolanaScheme = "bip32"
	// SolanaSLIP10 uses SLIP-10 ed25519 keys, the layout of Phantom,
	// Solflare and the Solana CLI.
	SolanaSLIP10 SolanaScheme = "slip10"
)

// ParseSolanaScheme converts a scheme name. Empty selects SolanaBIP32.
func ParseSolanaScheme(s string) (SolanaScheme, error) {
	switch sc := SolanaScheme(strings.ToLower(strings.TrimSpace(s))); sc {
	case "":
		return SolanaBIP32, nil
	case SolanaBIP32, SolanaSLIP10:
		return sc, nil
	default:
		return "", fmt.Errorf("unknown solana derivation %q (want bip32 or slip10)", s)
	}
}

// NewSolanaScheme returns the SOL deriver for scheme on SolanaPath.
func NewSolanaScheme(scheme SolanaScheme) (Deriver, error) {
	switch scheme {
	case "", SolanaBIP32:
		return NewSolana(nil), nil
	case SolanaSLIP10:
		return NewSolanaSLIP10(nil), nil
	default:
		return nil, fmt.Errorf("unknown solana derivation %q", scheme)
	}
}

// Solana derives SOL addresses from the shared BIP-32 master key.
type Solana struct {
	path wallet.DerivationPath
}

// NewSolana creates a BIP-32 SOL deriver. A nil path selects SolanaPath.
func NewSolana(path wallet.DerivationPath) *Solana {
	if path == nil {
		path = SolanaPath
	}
	return &Solana{path: path}
}

func (s *Solana) Chain() Chain { return SOL }
func (s *Solana) Path() wallet.DerivationPath { return s.path }

// Derive returns the Base58 compressed public key of the node at the path.
func (s *Solana) Derive(m *Master) (string, error) {
	if !s.path.HardenedOnly() {
		return "", fmt.Errorf("path %s: %w", s.path, wallet.ErrNonHardened)
	}
	master, err := m.Secp256k1()
	if err != nil {
		return "", err
	}
	key, err := master.DerivePath(s.path)
	if err != nil {
		return "", err
	}
	return base58.Encode(key.PublicKeyBytes()), nil
}

// SolanaEd25519 derives SOL addresses as the Base58 of the raw ed25519
// public key at a SLIP-10 path.
type SolanaEd25519 struct {
	path wallet.DerivationPath
}

// NewSolanaSLIP10 creates a SLIP-10 SOL deriver. A nil path selects
// SolanaPath.
func NewSolanaSLIP10(path wallet.DerivationPath) *SolanaEd25519 {
	if path == nil {
		path = SolanaPath
	}
	return &SolanaEd25519{path: path}
}

func (s *SolanaEd25519) Chain() Chain { return SOL }
func (s *SolanaEd25519) Path() wallet.DerivationPath { return s.path }

// Derive returns the Base58 ed25519 public key at the path.
func (s *SolanaEd25519) Derive(m *Master) (string, error) {
	key, err := wallet.DeriveEd25519(m.Seed(), s.path)
	if err != nil {
		return "", err
	}
	return solana.PublicKeyFromBytes(key.PublicKey()).String(), nil
}
