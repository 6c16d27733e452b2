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

// DefaultEtherscanURL is the Etherscan multichain API endpoint.
const DefaultEtherscanURL = "https://api.etherscan.io/v2/api"

// Etherscan queries module=account&action=balance on mainnet.
type Etherscan struct {
	base   string
	apiKey string
	client *httpclient.Client
}

// etherscanResponse is the common Etherscan envelope.
type etherscanResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

// NewEtherscan creates an ETH source. An empty base selects the public API;
// apiKey may be empty but is heavily throttled without one.
func NewEtherscan(base, apiKey string, client *httpclient.Client) *Etherscan {
	if base == "" {
		base = DefaultEtherscanURL
	}
	if client == nil {
		client = httpclient.New()
	}
	return &Etherscan{base: base, apiKey: apiKey, client: client}
}

func (s *Etherscan) Chain() address.Chain { return address.ETH }
func (s *Etherscan) Decimals() int        { return 18 }

// Fetch returns the latest balance in wei.
func (s *Etherscan) Fetch(ctx context.Context, addr string) (*big.Int, error) {
	q := url.Values{}
	q.Set("chainid", "1")
	q.Set("module", "account")
	q.Set("action", "balance")
	q.Set("address", addr)
	q.Set("tag", "latest")
	if s.apiKey != "" {
		q.Set("apikey", s.apiKey)
	}

	var resp etherscanResponse
	if err := s.client.GetJSON(ctx, s.base+"?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("%w: etherscan: %w", ErrTransport, err)
	}
	if resp.Status != "1" {
		if strings.Contains(strings.ToLower(resp.Result), "rate limit") {
			return nil, fmt.Errorf("etherscan: %w: %s", ErrRateLimited, resp.Result)
		}
		return nil, fmt.Errorf("etherscan: %s: %s", resp.Message, resp.Result)
	}
	amount, ok := new(big.Int).SetString(resp.Result, 10)
	if !ok {
		return nil, fmt.Errorf("etherscan: unexpected result %q", truncate(resp.Result, 64))
	}
	return amount, nil
}
