package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Klingon-tech/seedrecover/config"
	"github.com/Klingon-tech/seedrecover/internal/address"
	"github.com/Klingon-tech/seedrecover/internal/balance"
	"github.com/Klingon-tech/seedrecover/internal/found"
	klog "github.com/Klingon-tech/seedrecover/internal/log"
	"github.com/Klingon-tech/seedrecover/internal/search"
	"github.com/Klingon-tech/seedrecover/internal/storage"
	"github.com/Klingon-tech/seedrecover/internal/wordlist"
)

const abandonAbout = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// fakeEngine reports a fixed configuration and snapshot.
type fakeEngine struct {
	cfg  search.Config
	snap search.Snapshot
}

func (f *fakeEngine) Config() search.Config     { return f.cfg }
func (f *fakeEngine) Snapshot() search.Snapshot { return f.snap }

// fakeChecker funds BTC and leaves SOL unknown.
type fakeChecker struct{}

func (fakeChecker) CheckAll(_ context.Context, addrs map[address.Chain]address.Result) balance.Report {
	r := make(balance.Report)
	for c, res := range addrs {
		b := balance.Balance{Chain: c, Address: res.Address, Amount: big.NewInt(0), Decimals: 8}
		switch c {
		case address.BTC:
			b.Amount = big.NewInt(150_000_000)
		case address.SOL:
			b.Status = balance.StatusUnknown
			b.Amount = nil
			b.Err = balance.ErrRateLimited
		}
		r[c] = b
	}
	return r
}

// testEnv holds all components for an RPC test.
type testEnv struct {
	server *Server
	engine *fakeEngine
	store  *found.DBStore
	url    string
}

func setupTestEnv(t *testing.T) *testEnv {
	return setupTestEnvWithConfig(t, config.RPCConfig{})
}

func setupTestEnvWithConfig(t *testing.T, rpcCfg config.RPCConfig) *testEnv {
	t.Helper()
	klog.Init("error", false, "")

	cfg := search.DefaultConfig()
	cfg.KnownWords = []string{"abandon", "ability", "able"}
	cfg.KnownPositions = []int{0, 5, 11}
	cfg.Passphrase = "hunter2"
	cfg.MaxAttempts = 1000
	cfg.Workers = 4

	eng := &fakeEngine{
		cfg: cfg,
		snap: search.Snapshot{
			Attempts: 1000,
			Valid:    62,
			Zero:     62,
			State:    search.StateRunning,
		},
	}

	store := found.NewDBStore(storage.NewMemory())

	srv := New("127.0.0.1:0", wordlist.English(), rpcCfg)
	srv.SetEngine(eng)
	srv.SetFoundStore(store)
	if err := srv.Start(); err != nil {
		t.Fatalf("start rpc: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	return &testEnv{
		server: srv,
		engine: eng,
		store:  store,
		url:    fmt.Sprintf("http://%s/", srv.Addr()),
	}
}

func rpcCall(t *testing.T, url, method string, params interface{}) Response {
	t.Helper()
	req := Request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", method, err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rpcResp
}

// decodeResult re-decodes a generic result into target.
func decodeResult(t *testing.T, resp Response, target interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error: %d %s", resp.Error.Code, resp.Error.Message)
	}
	data, _ := json.Marshal(resp.Result)
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("decode result: %v", err)
	}
}

// ── Tests ───────────────────────────────────────────────────────────────

func TestRPC_SearchGetStats(t *testing.T) {
	env := setupTestEnv(t)

	var snap search.Snapshot
	decodeResult(t, rpcCall(t, env.url, "search_getStats", nil), &snap)

	if snap.Attempts != 1000 || snap.Valid != 62 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.State != search.StateRunning {
		t.Errorf("state = %s, want RUNNING", snap.State)
	}
}

func TestRPC_SearchGetConfig(t *testing.T) {
	env := setupTestEnv(t)

	var result SearchConfigResult
	decodeResult(t, rpcCall(t, env.url, "search_getConfig", nil), &result)

	if len(result.KnownWords) != 3 || result.KnownPositions[2] != 11 {
		t.Errorf("known = %v at %v", result.KnownWords, result.KnownPositions)
	}
	if result.FreeSlots != 9 {
		t.Errorf("free_slots = %d, want 9", result.FreeSlots)
	}
	if !result.HasPassphrase {
		t.Error("has_passphrase = false")
	}
	if !result.Offline {
		t.Error("offline = false without a checker")
	}
}

func TestRPC_SearchConfig_HidesPassphrase(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "search_getConfig", nil)
	data, _ := json.Marshal(resp.Result)
	if strings.Contains(string(data), "hunter2") {
		t.Errorf("passphrase leaked: %s", data)
	}
}

func TestRPC_SearchDisabled(t *testing.T) {
	srv := New("127.0.0.1:0", wordlist.English())
	if err := srv.Start(); err != nil {
		t.Fatalf("start rpc: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })
	url := fmt.Sprintf("http://%s/", srv.Addr())

	for _, method := range []string{"search_getStats", "search_getConfig", "found_list", "runs_list", "balance_check"} {
		resp := rpcCall(t, url, method, MnemonicParam{Mnemonic: abandonAbout})
		if resp.Error == nil {
			t.Errorf("%s: expected error", method)
			continue
		}
		if resp.Error.Code != CodeUnavailable {
			t.Errorf("%s: code = %d, want %d", method, resp.Error.Code, CodeUnavailable)
		}
	}
}

func TestRPC_FoundListAndGet(t *testing.T) {
	env := setupTestEnv(t)

	var empty FoundListResult
	decodeResult(t, rpcCall(t, env.url, "found_list", nil), &empty)
	if empty.Count != 0 || empty.Records == nil {
		t.Errorf("empty list = %+v", empty)
	}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := found.Record{
		ID:        found.Fingerprint(abandonAbout, ""),
		Mnemonic:  abandonAbout,
		Addresses: map[string]string{"BTC": "1LqBGSKuX5yYUonjxT5qGfpUsXKYYWeabA"},
		Balances:  map[string]string{"BTC": "1.5"},
		Timestamp: now.Format(found.TimestampFormat),
		FoundAt:   now,
	}
	if err := env.store.Append(context.Background(), rec); err != nil {
		t.Fatalf("append: %v", err)
	}

	var list FoundListResult
	decodeResult(t, rpcCall(t, env.url, "found_list", nil), &list)
	if list.Count != 1 || list.Records[0].ID != rec.ID {
		t.Fatalf("list = %+v", list)
	}

	var got found.Record
	decodeResult(t, rpcCall(t, env.url, "found_get", IDParam{ID: rec.ID}), &got)
	if got.Mnemonic != abandonAbout || got.Balances["BTC"] != "1.5" {
		t.Errorf("found_get = %+v", got)
	}
}

func TestRPC_FoundGet_Errors(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name   string
		params interface{}
		code   int
	}{
		{"no params", nil, CodeInvalidParams},
		{"empty id", IDParam{}, CodeInvalidParams},
		{"missing", IDParam{ID: "deadbeef"}, CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := rpcCall(t, env.url, "found_get", tt.params)
			if resp.Error == nil {
				t.Fatal("expected error")
			}
			if resp.Error.Code != tt.code {
				t.Errorf("code = %d, want %d", resp.Error.Code, tt.code)
			}
		})
	}
}

func TestRPC_RunsList(t *testing.T) {
	env := setupTestEnv(t)

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sum := found.RunSummary{
		StartedAt: start,
		StoppedAt: start.Add(time.Minute),
		Attempts:  500,
		Valid:     31,
		Reason:    string(search.ReasonMaxAttempts),
	}
	if err := env.store.SaveRun(sum); err != nil {
		t.Fatalf("save run: %v", err)
	}

	var result RunsResult
	decodeResult(t, rpcCall(t, env.url, "runs_list", nil), &result)
	if len(result.Runs) != 1 || result.Runs[0].Attempts != 500 {
		t.Errorf("runs = %+v", result.Runs)
	}
}

func TestRPC_MnemonicValidate(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name     string
		mnemonic string
		valid    bool
		unknown  int
	}{
		{"valid", abandonAbout, true, 0},
		{"bad checksum", strings.Repeat("abandon ", 12), false, 0},
		{"unknown word", strings.Replace(abandonAbout, "about", "zzzz", 1), false, 1},
		{"short", "abandon abandon", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result ValidateResult
			decodeResult(t, rpcCall(t, env.url, "mnemonic_validate", MnemonicParam{Mnemonic: tt.mnemonic}), &result)
			if result.Valid != tt.valid {
				t.Errorf("valid = %v, want %v", result.Valid, tt.valid)
			}
			if len(result.Unknown) != tt.unknown {
				t.Errorf("unknown = %v, want %d entries", result.Unknown, tt.unknown)
			}
		})
	}

	resp := rpcCall(t, env.url, "mnemonic_validate", MnemonicParam{})
	if resp.Error == nil || resp.Error.Code != CodeInvalidParams {
		t.Errorf("empty mnemonic should be invalid params, got %+v", resp.Error)
	}
}

func TestRPC_AddressDerive(t *testing.T) {
	env := setupTestEnv(t)

	var result DeriveResult
	decodeResult(t, rpcCall(t, env.url, "address_derive", MnemonicParam{Mnemonic: abandonAbout}), &result)

	want := map[string]string{
		"BTC": "1LqBGSKuX5yYUonjxT5qGfpUsXKYYWeabA",
		"ETH": "0x9858effd232b4033e47d90003d41ec34ecaeda94",
		"SOL": "2ACrzA2zVawvzQ5VN4HphdnLoAD49hb9tYN3Qef5CS3EA",
	}
	if len(result.Addresses) != len(want) {
		t.Fatalf("got %d addresses, want %d", len(result.Addresses), len(want))
	}
	for _, a := range result.Addresses {
		if a.Address != want[a.Chain] {
			t.Errorf("%s = %s, want %s", a.Chain, a.Address, want[a.Chain])
		}
		if a.Path == "" {
			t.Errorf("%s path is empty", a.Chain)
		}
	}
}

func TestRPC_AddressDerive_SolanaScheme(t *testing.T) {
	klog.Init("error", false, "")
	srv := New("127.0.0.1:0", wordlist.English())
	srv.SetSolanaScheme(address.SolanaSLIP10)
	if err := srv.Start(); err != nil {
		t.Fatalf("start rpc: %v", err)
	}
	defer srv.Stop()

	var result DeriveResult
	url := fmt.Sprintf("http://%s/", srv.Addr())
	decodeResult(t, rpcCall(t, url, "address_derive", MnemonicParam{Mnemonic: abandonAbout, Chains: []string{"sol"}}), &result)
	if len(result.Addresses) != 1 {
		t.Fatalf("addresses = %+v", result.Addresses)
	}
	if got := result.Addresses[0].Address; got != "HAgk14JpMQLgt6rVgv7cBQFJWFto5Dqxi472uT3DKpqk" {
		t.Errorf("SOL = %s, want the slip10 address", got)
	}
}

func TestRPC_AddressDerive_Chains(t *testing.T) {
	env := setupTestEnv(t)

	var result DeriveResult
	decodeResult(t, rpcCall(t, env.url, "address_derive", MnemonicParam{Mnemonic: abandonAbout, Chains: []string{"eth"}}), &result)
	if len(result.Addresses) != 1 || result.Addresses[0].Chain != "ETH" {
		t.Errorf("addresses = %+v", result.Addresses)
	}

	resp := rpcCall(t, env.url, "address_derive", MnemonicParam{Mnemonic: abandonAbout, Chains: []string{"doge"}})
	if resp.Error == nil || resp.Error.Code != CodeInvalidParams {
		t.Errorf("unknown chain should be invalid params, got %+v", resp.Error)
	}
}

func TestRPC_AddressDerive_InvalidMnemonic(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "address_derive", MnemonicParam{Mnemonic: strings.Repeat("abandon ", 12)})
	if resp.Error == nil {
		t.Fatal("expected error for bad checksum")
	}
	if resp.Error.Code != CodeInvalidParams {
		t.Errorf("code = %d, want %d", resp.Error.Code, CodeInvalidParams)
	}
}

func TestRPC_BalanceCheck(t *testing.T) {
	env := setupTestEnv(t)
	env.server.SetBalanceChecker(fakeChecker{})

	var result BalanceResult
	decodeResult(t, rpcCall(t, env.url, "balance_check", MnemonicParam{Mnemonic: abandonAbout}), &result)

	if !result.Positive {
		t.Error("positive = false with funded BTC")
	}
	byChain := make(map[string]BalanceEntry)
	for _, b := range result.Balances {
		byChain[b.Chain] = b
	}
	if got := byChain["BTC"]; got.Amount != "1.5" || got.Status != "known" {
		t.Errorf("BTC = %+v", got)
	}
	if got := byChain["SOL"]; got.Status != "unknown" || got.Amount != "" || got.Error == "" {
		t.Errorf("SOL = %+v", got)
	}

	var cfg SearchConfigResult
	decodeResult(t, rpcCall(t, env.url, "search_getConfig", nil), &cfg)
	if cfg.Offline {
		t.Error("offline = true with a checker")
	}
}

func TestRPC_MethodNotFound(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "chain_getInfo", nil)
	if resp.Error == nil {
		t.Fatal("expected error")
	}
	if resp.Error.Code != CodeMethodNotFound {
		t.Errorf("error code = %d, want %d", resp.Error.Code, CodeMethodNotFound)
	}
}

func TestRPC_InvalidJSON(t *testing.T) {
	env := setupTestEnv(t)

	resp, err := http.Post(env.url, "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	json.NewDecoder(resp.Body).Decode(&rpcResp)
	if rpcResp.Error == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if rpcResp.Error.Code != CodeParseError {
		t.Errorf("error code = %d, want %d", rpcResp.Error.Code, CodeParseError)
	}
}

func TestRPC_WrongVersion(t *testing.T) {
	env := setupTestEnv(t)

	body := `{"jsonrpc":"1.0","method":"search_getStats","id":7}`
	resp, err := http.Post(env.url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	json.NewDecoder(resp.Body).Decode(&rpcResp)
	if rpcResp.Error == nil || rpcResp.Error.Code != CodeInvalidRequest {
		t.Fatalf("error = %+v, want invalid request", rpcResp.Error)
	}
	if id, _ := rpcResp.ID.(float64); id != 7 {
		t.Errorf("id = %v, want 7", rpcResp.ID)
	}
}

func TestRPC_BodyTooLarge(t *testing.T) {
	env := setupTestEnv(t)

	huge := bytes.Repeat([]byte("a"), maxBodySize+10)
	resp, err := http.Post(env.url, "application/json", bytes.NewReader(huge))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	json.NewDecoder(resp.Body).Decode(&rpcResp)
	if rpcResp.Error == nil || rpcResp.Error.Code != CodeInvalidRequest {
		t.Errorf("error = %+v, want invalid request", rpcResp.Error)
	}
}

func TestRPC_GetMethodNotAllowed(t *testing.T) {
	env := setupTestEnv(t)

	resp, err := http.Get(env.url)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	json.NewDecoder(resp.Body).Decode(&rpcResp)

	if rpcResp.Error == nil {
		t.Fatal("expected error for GET request")
	}
	if rpcResp.Error.Code != CodeInvalidRequest {
		t.Errorf("error code = %d, want %d", rpcResp.Error.Code, CodeInvalidRequest)
	}
}

// --- IP Filtering ---

func TestRPC_IPFilter_Allowed(t *testing.T) {
	env := setupTestEnvWithConfig(t, config.RPCConfig{
		AllowedIPs: []string{"127.0.0.1"},
	})

	resp := rpcCall(t, env.url, "search_getStats", nil)
	if resp.Error != nil {
		t.Errorf("expected success for 127.0.0.1, got error: %s", resp.Error.Message)
	}
}

func TestRPC_IPFilter_Blocked(t *testing.T) {
	env := setupTestEnvWithConfig(t, config.RPCConfig{
		AllowedIPs: []string{"10.0.0.0/8"}, // Only allow 10.x.x.x.
	})

	// Request comes from 127.0.0.1 → should be blocked.
	req := Request{JSONRPC: "2.0", Method: "search_getStats", ID: 1}
	body, _ := json.Marshal(req)
	resp, err := http.Post(env.url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", resp.StatusCode)
	}
}

func TestRPC_IPFilter_Empty_AllowsAll(t *testing.T) {
	env := setupTestEnvWithConfig(t, config.RPCConfig{
		AllowedIPs: nil, // Empty = allow all.
	})

	resp := rpcCall(t, env.url, "search_getStats", nil)
	if resp.Error != nil {
		t.Errorf("empty AllowedIPs should allow all: %s", resp.Error.Message)
	}
}

func TestParseAllowedIPs(t *testing.T) {
	nets := parseAllowedIPs([]string{"127.0.0.1", "10.0.0.0/8", "::1", "garbage"})
	if len(nets) != 3 {
		t.Fatalf("got %d nets, want 3", len(nets))
	}
	if ones, bits := nets[0].Mask.Size(); ones != 32 || bits != 32 {
		t.Errorf("single IPv4 mask = /%d of %d", ones, bits)
	}
	if ones, bits := nets[2].Mask.Size(); ones != 128 || bits != 128 {
		t.Errorf("single IPv6 mask = /%d of %d", ones, bits)
	}
}
