// Package rpcclient provides a JSON-RPC 2.0 client for a running seedrecover.
package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Klingon-tech/seedrecover/internal/found"
	"github.com/Klingon-tech/seedrecover/internal/rpc"
	"github.com/Klingon-tech/seedrecover/internal/search"
)

// Client is a JSON-RPC 2.0 HTTP client.
type Client struct {
	endpoint string
	http     *http.Client
	nextID   int
}

// New creates a new RPC client targeting the given endpoint URL.
func New(endpoint string) *Client {
	return NewWithTimeout(endpoint, 10*time.Second)
}

// NewWithTimeout creates a new RPC client with a custom HTTP timeout.
func NewWithTimeout(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// request is a JSON-RPC 2.0 request.
type request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
	ID      int         `json:"id"`
}

// response is a JSON-RPC 2.0 response.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      int             `json:"id"`
}

// rpcError is a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RPCError is returned when the server responds with an error.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Call invokes a JSON-RPC method and unmarshals the result into the provided pointer.
// If result is nil, the response result is discarded.
func (c *Client) Call(ctx context.Context, method string, params, result interface{}) error {
	c.nextID++
	req := request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	var rpcResp response
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if rpcResp.Error != nil {
		return &RPCError{
			Code:    rpcResp.Error.Code,
			Message: rpcResp.Error.Message,
		}
	}

	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}

	return nil
}

// Stats returns the live search statistics.
func (c *Client) Stats(ctx context.Context) (search.Snapshot, error) {
	var snap search.Snapshot
	err := c.Call(ctx, "search_getStats", nil, &snap)
	return snap, err
}

// SearchConfig returns the running search's configuration.
func (c *Client) SearchConfig(ctx context.Context) (*rpc.SearchConfigResult, error) {
	var out rpc.SearchConfigResult
	if err := c.Call(ctx, "search_getConfig", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FoundList returns every stored found wallet.
func (c *Client) FoundList(ctx context.Context) ([]found.Record, error) {
	var out rpc.FoundListResult
	if err := c.Call(ctx, "found_list", nil, &out); err != nil {
		return nil, err
	}
	return out.Records, nil
}

// FoundGet returns one found wallet by ID.
func (c *Client) FoundGet(ctx context.Context, id string) (*found.Record, error) {
	var out found.Record
	if err := c.Call(ctx, "found_get", rpc.IDParam{ID: id}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Runs returns the summaries of finished runs.
func (c *Client) Runs(ctx context.Context) ([]found.RunSummary, error) {
	var out rpc.RunsResult
	if err := c.Call(ctx, "runs_list", nil, &out); err != nil {
		return nil, err
	}
	return out.Runs, nil
}

// Derive returns the addresses of a mnemonic.
func (c *Client) Derive(ctx context.Context, p rpc.MnemonicParam) ([]rpc.AddressEntry, error) {
	var out rpc.DeriveResult
	if err := c.Call(ctx, "address_derive", p, &out); err != nil {
		return nil, err
	}
	return out.Addresses, nil
}

// CheckBalance looks up the balances of a mnemonic's addresses.
func (c *Client) CheckBalance(ctx context.Context, p rpc.MnemonicParam) (*rpc.BalanceResult, error) {
	var out rpc.BalanceResult
	if err := c.Call(ctx, "balance_check", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
