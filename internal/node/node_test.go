package node

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Klingon-tech/seedrecover/config"
	"github.com/Klingon-tech/seedrecover/internal/address"
	"github.com/Klingon-tech/seedrecover/internal/search"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	tests := []struct {
		input, want string
	}{
		{"~/foo/bar", filepath.Join(home, "foo/bar")},
		{"~/.seedrecover/found_wallets.json", filepath.Join(home, ".seedrecover/found_wallets.json")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
	}
	for _, tt := range tests {
		got := expandHome(tt.input)
		if got != tt.want {
			t.Errorf("expandHome(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBuildDerivers(t *testing.T) {
	ds, err := buildDerivers([]string{"btc", "SOL"}, "")
	if err != nil {
		t.Fatalf("buildDerivers: %v", err)
	}
	if len(ds) != 2 || ds[0].Chain() != address.BTC || ds[1].Chain() != address.SOL {
		t.Errorf("unexpected derivers: %v", ds)
	}
	if _, ok := ds[1].(*address.Solana); !ok {
		t.Errorf("default SOL deriver = %T, want *address.Solana", ds[1])
	}

	ds, err = buildDerivers([]string{"SOL"}, "slip10")
	if err != nil {
		t.Fatalf("buildDerivers(slip10): %v", err)
	}
	if _, ok := ds[0].(*address.SolanaEd25519); !ok {
		t.Errorf("slip10 SOL deriver = %T, want *address.SolanaEd25519", ds[0])
	}

	if _, err := buildDerivers([]string{"DOGE"}, ""); err == nil {
		t.Error("expected error for unsupported chain")
	}
	if _, err := buildDerivers([]string{"SOL"}, "phantom"); err == nil {
		t.Error("expected error for unknown SOL derivation")
	}
}

func TestBuildChecker(t *testing.T) {
	cfg := config.Default()
	ds, err := buildDerivers([]string{"BTC", "ETH"}, "")
	if err != nil {
		t.Fatalf("buildDerivers: %v", err)
	}

	cfg.Balance.Enabled = false
	if c := buildChecker(cfg, ds); c != nil {
		t.Error("offline mode should build no checker")
	}

	cfg.Balance.Enabled = true
	c := buildChecker(cfg, ds)
	if c == nil {
		t.Fatal("expected a checker")
	}
	chains := c.Chains()
	if len(chains) != 2 || chains[0] != address.BTC || chains[1] != address.ETH {
		t.Errorf("checker chains = %v, want [BTC ETH]", chains)
	}
}

func TestBuildNotifier(t *testing.T) {
	cfg := config.Default()
	var out bytes.Buffer

	m, err := buildNotifier(cfg, &out)
	if err != nil {
		t.Fatalf("buildNotifier: %v", err)
	}
	if len(m) != 2 {
		t.Errorf("expected log and banner notifiers, got %d", len(m))
	}

	cfg.Notify.TelegramToken = "123:abc"
	cfg.Notify.TelegramChatID = "42"
	m, err = buildNotifier(cfg, &out)
	if err != nil {
		t.Fatalf("buildNotifier: %v", err)
	}
	if len(m) != 3 {
		t.Errorf("expected telegram notifier, got %d notifiers", len(m))
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.WordlistURL = "" // embedded list, no network
	cfg.Search.Words = []string{"abandon", "abandon", "abandon", "abandon", "abandon", "abandon",
		"abandon", "abandon", "abandon", "abandon", "abandon"}
	cfg.Search.MaxAttempts = 2048
	cfg.Search.Workers = 2
	cfg.Balance.Enabled = false
	cfg.RPC.Port = 0 // random port
	cfg.Log.Level = "error"

	if err := config.EnsureDataDirs(cfg); err != nil {
		t.Fatalf("EnsureDataDirs: %v", err)
	}
	return cfg
}

func TestNodeLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg := testConfig(t)
	var out bytes.Buffer

	n, err := New(cfg, &out)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer n.Stop()

	if n.RPCAddr() == "" {
		t.Error("RPCAddr should not be empty")
	}
	if !n.Wordlist().Canonical() {
		t.Error("expected the embedded canonical wordlist")
	}
	if got := n.Chains(); len(got) != 3 {
		t.Errorf("Chains() = %v, want 3 chains", got)
	}

	snap, err := n.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if snap.Attempts != 2048 {
		t.Errorf("attempts = %d, want 2048", snap.Attempts)
	}
	if snap.State != search.StateStopped {
		t.Errorf("state = %v, want stopped", snap.State)
	}
	if snap.Reason != search.ReasonMaxAttempts {
		t.Errorf("reason = %q, want %q", snap.Reason, search.ReasonMaxAttempts)
	}
	// Offline: every derivable candidate is an unknown, never a find.
	if snap.Positive != 0 {
		t.Errorf("positive = %d, want 0", snap.Positive)
	}
	if n.Snapshot().Attempts != 2048 {
		t.Error("Snapshot should reflect the finished run")
	}

	runs, err := n.Store().Runs()
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Attempts != 2048 {
		t.Errorf("expected one saved run with 2048 attempts, got %+v", runs)
	}

	if !strings.Contains(out.String(), "Recovering") {
		t.Errorf("banner not printed:\n%s", out.String())
	}
}

func TestNodeRunTwiceNotifiesError(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg := testConfig(t)
	cfg.RPC.Enabled = false
	cfg.Search.MaxAttempts = 10

	n, err := New(cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer n.Stop()

	if n.RPCAddr() != "" {
		t.Error("RPCAddr should be empty with RPC disabled")
	}
	if _, err := n.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if _, err := n.Run(context.Background()); !errors.Is(err, search.ErrAlreadyRun) {
		t.Errorf("second Run error = %v, want ErrAlreadyRun", err)
	}
}

func TestNodeClearRuns(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg := testConfig(t)
	cfg.RPC.Enabled = false
	cfg.Search.MaxAttempts = 5

	n, err := New(cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := n.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	n.Stop()

	cfg.ClearRuns = true
	n, err = New(cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer n.Stop()

	runs, err := n.Store().Runs()
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected cleared runs, got %d", len(runs))
	}
}

func TestNew_RejectsUnknownWord(t *testing.T) {
	cfg := testConfig(t)
	cfg.RPC.Enabled = false
	cfg.Search.Words = []string{"abandon", "notaword"}

	n, err := New(cfg, &bytes.Buffer{})
	if err == nil {
		n.Stop()
		t.Fatal("expected error for a word outside the wordlist")
	}
}
