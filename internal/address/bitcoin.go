package address

import (
	"fmt"

	"github.com/Klingon-tech/seedrecover/internal/wallet"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

// BitcoinPath is the BIP-44 first receive address path.
var BitcoinPath = wallet.DerivationPath{
	wallet.PurposeBIP44, wallet.CoinTypeBitcoin, wallet.HardenedOffset, 0, 0,
}

// Bitcoin derives legacy P2PKH addresses: Base58Check(version || HASH160(pubkey)).
type Bitcoin struct {
	path   wallet.DerivationPath
	params *chaincfg.Params
}

// NewBitcoin creates a mainnet BTC deriver. A nil path selects BitcoinPath.
func NewBitcoin(path wallet.DerivationPath) *Bitcoin {
	return NewBitcoinWithParams(path, &chaincfg.MainNetParams)
}

// NewBitcoinWithParams creates a BTC deriver for the network whose P2PKH
// version byte is in params.
func NewBitcoinWithParams(path wallet.DerivationPath, params *chaincfg.Params) *Bitcoin {
	if path == nil {
		path = BitcoinPath
	}
	return &Bitcoin{path: path, params: params}
}

func (b *Bitcoin) Chain() Chain { return BTC }
func (b *Bitcoin) Path() wallet.DerivationPath { return b.path }

// Derive returns the P2PKH address of the compressed public key at the path.
func (b *Bitcoin) Derive(m *Master) (string, error) {
	master, err := m.Secp256k1()
	if err != nil {
		return "", err
	}
	key, err := master.DerivePath(b.path)
	if err != nil {
		return "", err
	}
	addr, err := btcutil.NewAddressPubKeyHash(btcutil.Hash160(key.PublicKeyBytes()), b.params)
	if err != nil {
		return "", fmt.Errorf("encode address: %w", err)
	}
	return addr.EncodeAddress(), nil
}
