package wallet

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/anyproto/go-slip10"
)

// ErrNonHardened is returned for a non-hardened component on a path that
// must be hardened-only. SLIP-10 ed25519 defines no public derivation.
var ErrNonHardened = errors.New("path must be hardened-only")

// Ed25519Key is the SLIP-10 ed25519 keypair at a derivation path.
type Ed25519Key struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
	path DerivationPath
}

// DeriveEd25519 derives the SLIP-10 ed25519 key at path from seed. An empty
// path yields the master key.
func DeriveEd25519(seed []byte, path DerivationPath) (*Ed25519Key, error) {
	if len(seed) < 16 || len(seed) > 64 {
		return nil, fmt.Errorf("seed must be 16-64 bytes, got %d", len(seed))
	}
	if len(path) > int(MaxDepth) {
		return nil, ErrMaxDepth
	}
	if !path.HardenedOnly() {
		return nil, fmt.Errorf("path %s: %w", path, ErrNonHardened)
	}
	node, err := slip10.DeriveForPath(path.String(), seed)
	if err != nil {
		return nil, fmt.Errorf("derive %s: %w", path, err)
	}
	pub, priv := node.Keypair()
	return &Ed25519Key{pub: pub, priv: priv, path: path}, nil
}

// PrivateKeyBytes returns the 32-byte ed25519 private seed.
func (k *Ed25519Key) PrivateKeyBytes() []byte {
	return k.priv.Seed()
}

// PublicKey returns the raw 32-byte ed25519 public key.
func (k *Ed25519Key) PublicKey() []byte {
	out := make([]byte, len(k.pub))
	copy(out, k.pub)
	return out
}

// Path returns the path the key was derived at.
func (k *Ed25519Key) Path() DerivationPath {
	return k.path
}

// Depth returns the derivation depth (0 for master).
func (k *Ed25519Key) Depth() uint8 {
	return uint8(len(k.path))
}
