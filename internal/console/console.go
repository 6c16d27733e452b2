// Package console renders the live search progress line and the found-wallet
// banner on a terminal.
package console

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Klingon-tech/seedrecover/internal/found"
	"github.com/Klingon-tech/seedrecover/internal/search"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

var (
	green  = color.New(color.FgGreen, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// Progress draws a spinner with the attempt count and rate. It implements
// search.Reporter.
type Progress struct {
	mu   sync.Mutex
	w    io.Writer
	bar  *progressbar.ProgressBar
	done bool
}

// NewProgress creates a progress line writing to w.
func NewProgress(w io.Writer) *Progress {
	bar := progressbar.NewOptions64(
		-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("searching"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("seeds/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
	)
	return &Progress{w: w, bar: bar}
}

// Progress updates the line. A stopped snapshot clears it and prints the
// final summary; later calls are ignored.
func (p *Progress) Progress(snap search.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return
	}

	p.bar.Describe(Describe(snap))
	_ = p.bar.Set64(int64(snap.Attempts))

	if snap.State == search.StateStopped {
		p.done = true
		_ = p.bar.Clear()
		fmt.Fprintln(p.w, Summary(snap))
	}
}

// Attempts returns the count last drawn.
func (p *Progress) Attempts() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bar.State().CurrentNum
}

// Describe is the short description shown before the spinner.
func Describe(snap search.Snapshot) string {
	d := fmt.Sprintf("valid %s", humanize.Comma(int64(snap.Valid)))
	if snap.Positive > 0 {
		d += " " + green(fmt.Sprintf("found %d", snap.Positive))
	}
	if snap.Unknown > 0 {
		d += " " + yellow(fmt.Sprintf("unknown %s", humanize.Comma(int64(snap.Unknown))))
	}
	return d
}

// Summary is the line printed when a run stops.
func Summary(snap search.Snapshot) string {
	reason := string(snap.Reason)
	if reason == "" {
		reason = strings.ToLower(snap.State.String())
	}
	return fmt.Sprintf("%s %s attempts, %s valid, %s funded in %s (%s/s), %s",
		bold("Stopped:"),
		humanize.Comma(int64(snap.Attempts)),
		humanize.Comma(int64(snap.Valid)),
		humanize.Comma(int64(snap.Positive)),
		snap.Elapsed.Round(time.Second),
		humanize.CommafWithDigits(snap.Rate, 1),
		reason,
	)
}

// Banner prints funded wallets and the run header to a terminal. It
// implements search.Notifier; status and error events are left to the log.
type Banner struct {
	mu sync.Mutex
	w  io.Writer
}

// NewBanner creates a banner writing to w.
func NewBanner(w io.Writer) *Banner {
	return &Banner{w: w}
}

// Startup prints the run header.
func (b *Banner) Startup(_ context.Context, info search.StartupInfo) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	max := "unlimited"
	if info.MaxAttempts > 0 {
		max = humanize.Comma(int64(info.MaxAttempts))
	}
	_, err := fmt.Fprintf(b.w, "%s %d known words at %v, %d free slots, %s attempts, %d workers, chains %s\n",
		cyan("Recovering:"), info.KnownWords, info.Positions, info.FreeSlots,
		max, info.Workers, strings.Join(info.Chains, ","))
	return err
}

// Status is a no-op.
func (b *Banner) Status(context.Context, search.Snapshot) error { return nil }

// Error is a no-op.
func (b *Banner) Error(context.Context, error) error { return nil }

// WalletFound prints the record in full.
func (b *Banner) WalletFound(_ context.Context, rec found.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := io.WriteString(b.w, FormatFound(rec))
	return err
}

// FormatFound renders a found record as a multi-line banner.
func FormatFound(rec found.Record) string {
	var sb strings.Builder
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(&sb, "\n%s\n%s\n", green(rule), green("WALLET WITH BALANCE FOUND"))
	fmt.Fprintf(&sb, "Mnemonic: %s\n", bold(rec.Mnemonic))
	if rec.Passphrase != "" {
		fmt.Fprintf(&sb, "Passphrase: %s\n", bold(rec.Passphrase))
	}
	for _, chain := range sortedKeys(rec.Addresses) {
		bal, ok := rec.Balances[chain]
		if !ok {
			bal = yellow("unknown")
		}
		fmt.Fprintf(&sb, "  %-4s %s  %s\n", chain, rec.Addresses[chain], bal)
	}
	fmt.Fprintf(&sb, "Found at: %s\n%s\n", rec.Timestamp, green(rule))
	return sb.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
