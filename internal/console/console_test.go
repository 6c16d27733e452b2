package console

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Klingon-tech/seedrecover/internal/found"
	"github.com/Klingon-tech/seedrecover/internal/search"
	"github.com/fatih/color"
)

func init() {
	color.NoColor = true
}

func TestProgress_TracksAttempts(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf)

	p.Progress(search.Snapshot{Attempts: 1234, Valid: 77, State: search.StateRunning})
	if got := p.Attempts(); got != 1234 {
		t.Errorf("Attempts() = %d, want 1234", got)
	}

	p.Progress(search.Snapshot{Attempts: 5000, Valid: 300, State: search.StateRunning})
	if got := p.Attempts(); got != 5000 {
		t.Errorf("Attempts() = %d, want 5000", got)
	}
}

func TestProgress_StopPrintsSummaryOnce(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf)

	stop := search.Snapshot{
		Attempts: 10000,
		Valid:    625,
		Positive: 1,
		Elapsed:  4 * time.Second,
		Rate:     2500,
		State:    search.StateStopped,
		Reason:   search.ReasonMaxAttempts,
	}
	p.Progress(stop)
	p.Progress(stop)

	out := buf.String()
	if n := strings.Count(out, "Stopped:"); n != 1 {
		t.Fatalf("summary printed %d times, want 1:\n%s", n, out)
	}
	for _, want := range []string{"10,000 attempts", "625 valid", "1 funded", "max attempts reached"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestSummary_NoReason(t *testing.T) {
	got := Summary(search.Snapshot{State: search.StateStopped})
	if !strings.HasSuffix(got, "stopped") {
		t.Errorf("Summary() = %q, want state fallback", got)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		snap search.Snapshot
		want []string
		not  []string
	}{
		{"plain", search.Snapshot{Valid: 1500}, []string{"valid 1,500"}, []string{"found", "unknown"}},
		{"found", search.Snapshot{Valid: 2, Positive: 1}, []string{"found 1"}, []string{"unknown"}},
		{"unknown", search.Snapshot{Valid: 9, Unknown: 4}, []string{"unknown 4"}, []string{"found"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Describe(tt.snap)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Describe() = %q, missing %q", got, w)
				}
			}
			for _, w := range tt.not {
				if strings.Contains(got, w) {
					t.Errorf("Describe() = %q, should not contain %q", got, w)
				}
			}
		})
	}
}

func TestBanner(t *testing.T) {
	var buf bytes.Buffer
	b := NewBanner(&buf)
	ctx := context.Background()

	err := b.Startup(ctx, search.StartupInfo{
		KnownWords: 10,
		Positions:  []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		FreeSlots:  2,
		Workers:    4,
		Chains:     []string{"BTC", "ETH", "SOL"},
	})
	if err != nil {
		t.Fatalf("Startup() error: %v", err)
	}
	if !strings.Contains(buf.String(), "unlimited attempts") {
		t.Errorf("startup line = %q", buf.String())
	}

	rec := found.Record{
		Mnemonic:   "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about",
		Passphrase: "secret",
		Addresses: map[string]string{
			"SOL": "HAgk14JpMQLgt6rVgv7cBQFJWFto5Dqxi472uT3DKpqk",
			"BTC": "1LqBGSKuX5yYUonjxT5qGfpUsXKYYWeabA",
		},
		Balances:  map[string]string{"BTC": "0.5"},
		Timestamp: "2024-01-02 03:04:05",
	}
	buf.Reset()
	if err := b.WalletFound(ctx, rec); err != nil {
		t.Fatalf("WalletFound() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"WALLET WITH BALANCE FOUND", rec.Mnemonic, "Passphrase: secret", "0.5", "unknown", rec.Timestamp} {
		if !strings.Contains(out, want) {
			t.Errorf("banner missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "BTC") > strings.Index(out, "SOL") {
		t.Error("chains not sorted")
	}

	if err := b.Status(ctx, search.Snapshot{}); err != nil {
		t.Errorf("Status() error: %v", err)
	}
	if err := b.Error(ctx, nil); err != nil {
		t.Errorf("Error() error: %v", err)
	}
}
