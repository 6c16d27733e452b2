package balance

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Klingon-tech/seedrecover/internal/address"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// SolanaRPC reads lamport balances over the Solana JSON-RPC API.
type SolanaRPC struct {
	client *rpc.Client
}

// NewSolanaRPC creates a SOL source. An empty endpoint selects mainnet-beta.
func NewSolanaRPC(endpoint string) *SolanaRPC {
	if endpoint == "" {
		endpoint = rpc.MainNetBeta_RPC
	}
	return &SolanaRPC{client: rpc.New(endpoint)}
}

func (s *SolanaRPC) Chain() address.Chain { return address.SOL }
func (s *SolanaRPC) Decimals() int        { return 9 }

// Fetch returns the confirmed balance in lamports. Base58 keys that are not
// 32 bytes long, such as the compressed secp256k1 keys of the bip32 SOL
// scheme, cannot own an account and report zero without a request.
func (s *SolanaRPC) Fetch(ctx context.Context, addr string) (*big.Int, error) {
	if raw := base58.Decode(addr); len(raw) > 0 && len(raw) != solana.PublicKeyLength {
		return new(big.Int), nil
	}
	pub, err := solana.PublicKeyFromBase58(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid Solana address: %w", err)
	}
	out, err := s.client.GetBalance(ctx, pub, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, fmt.Errorf("%w: solana rpc: %w", ErrTransport, err)
	}
	return new(big.Int).SetUint64(out.Value), nil
}
