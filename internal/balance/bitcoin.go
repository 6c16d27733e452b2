package balance

import (
	"context"
	"fmt"
	"math/big"
	"net/url"
	"strings"

	"github.com/Klingon-tech/seedrecover/internal/address"
	"github.com/Klingon-tech/seedrecover/internal/httpclient"
)

// DefaultBlockchainInfoURL is the blockchain.info simple query API.
const DefaultBlockchainInfoURL = "https://blockchain.info"

// BlockchainInfo reads BTC balances from /q/addressbalance/<addr>, which
// answers with a bare satoshi count.
type BlockchainInfo struct {
	base   string
	client *httpclient.Client
}

// NewBlockchainInfo creates a BTC source. An empty base selects the public API.
func NewBlockchainInfo(base string, client *httpclient.Client) *BlockchainInfo {
	if base == "" {
		base = DefaultBlockchainInfoURL
	}
	if client == nil {
		client = httpclient.New()
	}
	return &BlockchainInfo{base: strings.TrimRight(base, "/"), client: client}
}

func (s *BlockchainInfo) Chain() address.Chain { return address.BTC }
func (s *BlockchainInfo) Decimals() int        { return 8 }

// Fetch returns the confirmed balance in satoshi.
func (s *BlockchainInfo) Fetch(ctx context.Context, addr string) (*big.Int, error) {
	body, err := s.client.GetText(ctx, s.base+"/q/addressbalance/"+url.PathEscape(addr))
	if err != nil {
		return nil, fmt.Errorf("%w: blockchain.info: %w", ErrTransport, err)
	}
	amount, ok := new(big.Int).SetString(body, 10)
	if !ok {
		return nil, fmt.Errorf("blockchain.info: unexpected body %q", truncate(body, 64))
	}
	return amount, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
