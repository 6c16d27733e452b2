package rpc

import (
	"github.com/Klingon-tech/seedrecover/internal/found"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeNotFound       = -32000
	CodeUnavailable    = -32001
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      interface{} `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ── Param types ─────────────────────────────────────────────────────────

// IDParam is used by found_get.
type IDParam struct {
	ID string `json:"id"`
}

// MnemonicParam is used by mnemonic_validate, address_derive and
// balance_check.
type MnemonicParam struct {
	Mnemonic   string   `json:"mnemonic"`
	Passphrase string   `json:"passphrase,omitempty"`
	Chains     []string `json:"chains,omitempty"` // Empty = all chains.
}

// ── Result types ────────────────────────────────────────────────────────

// SearchConfigResult describes the running search. The passphrase itself
// is never returned.
type SearchConfigResult struct {
	KnownWords     []string `json:"known_words"`
	KnownPositions []int    `json:"known_positions"`
	FreeSlots      int      `json:"free_slots"`
	HasPassphrase  bool     `json:"has_passphrase"`
	MaxAttempts    uint64   `json:"max_attempts"`
	Workers        int      `json:"workers"`
	BalanceDelay   string   `json:"balance_delay"`
	Offline        bool     `json:"offline"`
}

// FoundListResult is returned by found_list.
type FoundListResult struct {
	Count   int            `json:"count"`
	Records []found.Record `json:"records"`
}

// RunsResult is returned by runs_list.
type RunsResult struct {
	Runs []found.RunSummary `json:"runs"`
}

// ValidateResult is returned by mnemonic_validate.
type ValidateResult struct {
	Valid   bool     `json:"valid"`
	Words   int      `json:"words"`
	Unknown []string `json:"unknown,omitempty"`
}

// AddressEntry is one chain's derived address.
type AddressEntry struct {
	Chain   string `json:"chain"`
	Address string `json:"address,omitempty"`
	Path    string `json:"path"`
	Error   string `json:"error,omitempty"`
}

// DeriveResult is returned by address_derive.
type DeriveResult struct {
	Addresses []AddressEntry `json:"addresses"`
}

// BalanceEntry is one chain's balance.
type BalanceEntry struct {
	Chain   string `json:"chain"`
	Address string `json:"address"`
	Amount  string `json:"amount,omitempty"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// BalanceResult is returned by balance_check.
type BalanceResult struct {
	Balances []BalanceEntry `json:"balances"`
	Positive bool           `json:"positive"`
}
