package address

import (
	"encoding/hex"
	"fmt"

	"github.com/Klingon-tech/seedrecover/internal/wallet"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/sha3"
)

// EthereumPath is the BIP-44 first account path used by most wallets.
var EthereumPath = wallet.DerivationPath{
	wallet.PurposeBIP44, wallet.CoinTypeEthereum, wallet.HardenedOffset, 0, 0,
}

// Ethereum derives addresses as the last 20 bytes of Keccak-256 over the
// 64-byte uncompressed public key (X || Y), hex encoded with a 0x prefix.
type Ethereum struct {
	path wallet.DerivationPath
}

// NewEthereum creates an ETH deriver. A nil path selects EthereumPath.
func NewEthereum(path wallet.DerivationPath) *Ethereum {
	if path == nil {
		path = EthereumPath
	}
	return &Ethereum{path: path}
}

func (e *Ethereum) Chain() Chain { return ETH }
func (e *Ethereum) Path() wallet.DerivationPath { return e.path }

// Derive returns the lowercase hex address of the key at the path.
func (e *Ethereum) Derive(m *Master) (string, error) {
	master, err := m.Secp256k1()
	if err != nil {
		return "", err
	}
	key, err := master.DerivePath(e.path)
	if err != nil {
		return "", err
	}
	pub, err := secp256k1.ParsePubKey(key.PublicKeyBytes())
	if err != nil {
		return "", fmt.Errorf("parse public key: %w", err)
	}
	return EthereumAddress(pub.SerializeUncompressed()[1:]), nil
}

// EthereumAddress hashes a 64-byte uncompressed public key (no 0x04 prefix).
func EthereumAddress(xy []byte) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(xy)
	sum := h.Sum(nil)
	return "0x" + hex.EncodeToString(sum[len(sum)-20:])
}
