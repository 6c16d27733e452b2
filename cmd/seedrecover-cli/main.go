// seedrecover-cli inspects a running seedrecover daemon and works with
// mnemonics offline.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/Klingon-tech/seedrecover/config"
	"github.com/Klingon-tech/seedrecover/internal/address"
	"github.com/Klingon-tech/seedrecover/internal/found"
	"github.com/Klingon-tech/seedrecover/internal/rpc"
	"github.com/Klingon-tech/seedrecover/internal/rpcclient"
	"github.com/Klingon-tech/seedrecover/internal/wallet"
	"github.com/Klingon-tech/seedrecover/internal/wordlist"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

// callTimeout bounds every RPC call; balance checks go through provider
// retries and can take a while.
const callTimeout = 2 * time.Minute

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Parse global flags that appear before the subcommand.
	rpcURL := fmt.Sprintf("http://127.0.0.1:%d", config.DefaultRPCPort)
	dataDir := config.DefaultDataDir()

	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--rpc" && len(args) > 1:
			rpcURL = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--rpc="):
			rpcURL = args[0][len("--rpc="):]
			args = args[1:]
		case args[0] == "--datadir" && len(args) > 1:
			dataDir = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--datadir="):
			dataDir = args[0][len("--datadir="):]
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	client := rpcclient.NewWithTimeout(rpcURL, callTimeout)
	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "status":
		cmdStatus(client)
	case "found":
		cmdFound(client, cmdArgs, dataDir)
	case "runs":
		cmdRuns(client)
	case "validate":
		cmdValidate(cmdArgs)
	case "derive":
		cmdDerive(cmdArgs)
	case "balance":
		cmdBalance(client, cmdArgs)
	case "generate":
		cmdGenerate(cmdArgs)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: seedrecover-cli [global flags] <command> [flags]

Global flags:
  --rpc <url>         RPC endpoint (default: http://127.0.0.1:%d)
  --datadir <path>    Data directory (default: ~/.seedrecover)

Commands:
  status                          Show search progress and parameters
  found list [--local]            List found wallets (--local reads the JSONL file)
  found get <id>                  Show one found wallet
  runs                            Show finished search runs

  validate "<mnemonic>"           Check words and checksum (offline)
  derive --mnemonic "..." [--chains BTC,ETH,SOL] [--sol-derivation bip32|slip10] [--ask-passphrase]
                                  Derive addresses (offline)
  balance --mnemonic "..." [--chains ...] [--ask-passphrase]
                                  Derive addresses and check balances via the daemon
  generate [--bits 128]           Generate a random mnemonic
`, config.DefaultRPCPort)
}

func newContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), callTimeout)
}

// ── status ──────────────────────────────────────────────────────────────

func cmdStatus(client *rpcclient.Client) {
	ctx, cancel := newContext()
	defer cancel()

	snap, err := client.Stats(ctx)
	if err != nil {
		fatal("search_getStats: %v", err)
	}
	sc, err := client.SearchConfig(ctx)
	if err != nil {
		fatal("search_getConfig: %v", err)
	}

	fmt.Printf("State:      %s", snap.State)
	if snap.Reason != "" {
		fmt.Printf(" (%s)", snap.Reason)
	}
	fmt.Println()
	if !snap.StartedAt.IsZero() {
		fmt.Printf("Started:    %s (%s)\n", snap.StartedAt.Format(time.RFC3339), humanize.Time(snap.StartedAt))
	}
	fmt.Printf("Attempts:   %s", humanize.Comma(int64(snap.Attempts)))
	if sc.MaxAttempts > 0 {
		fmt.Printf(" / %s", humanize.Comma(int64(sc.MaxAttempts)))
	}
	fmt.Println()
	fmt.Printf("Valid:      %s\n", humanize.Comma(int64(snap.Valid)))
	fmt.Printf("Funded:     %s\n", humanize.Comma(int64(snap.Positive)))
	fmt.Printf("Empty:      %s\n", humanize.Comma(int64(snap.Zero)))
	fmt.Printf("Unknown:    %s\n", humanize.Comma(int64(snap.Unknown)))
	fmt.Printf("Rate:       %s seeds/s\n", humanize.CommafWithDigits(snap.Rate, 1))
	fmt.Printf("Known:      %d words at %v (%d free slots)\n", len(sc.KnownWords), sc.KnownPositions, sc.FreeSlots)
	fmt.Printf("Workers:    %d\n", sc.Workers)
	if sc.Offline {
		fmt.Println("Balances:   offline")
	} else {
		fmt.Printf("Balances:   every %s\n", sc.BalanceDelay)
	}
}

// ── found ───────────────────────────────────────────────────────────────

func cmdFound(client *rpcclient.Client, args []string, dataDir string) {
	if len(args) < 1 {
		fatal("Usage: seedrecover-cli found <list|get> [args]")
	}
	switch args[0] {
	case "list":
		cmdFoundList(client, args[1:], dataDir)
	case "get":
		if len(args) < 2 {
			fatal("Usage: seedrecover-cli found get <id>")
		}
		ctx, cancel := newContext()
		defer cancel()
		rec, err := client.FoundGet(ctx, args[1])
		if err != nil {
			fatal("found_get: %v", err)
		}
		printRecord(*rec)
	default:
		fatal("Unknown found command: %s", args[0])
	}
}

func cmdFoundList(client *rpcclient.Client, args []string, dataDir string) {
	fs := flag.NewFlagSet("found list", flag.ExitOnError)
	local := fs.Bool("local", false, "Read the JSONL file instead of asking the daemon")
	file := fs.String("file", "", "JSONL file (default: <datadir>/found_wallets.json)")
	fs.Parse(args)

	var records []found.Record
	if *local {
		path := *file
		if path == "" {
			cfg := config.Default()
			cfg.DataDir = dataDir
			path = cfg.FoundFile()
		}
		recs, err := found.ReadJSONL(path)
		if err != nil {
			fatal("read %s: %v", path, err)
		}
		records = recs
	} else {
		ctx, cancel := newContext()
		defer cancel()
		recs, err := client.FoundList(ctx)
		if err != nil {
			fatal("found_list: %v", err)
		}
		records = recs
	}

	if len(records) == 0 {
		fmt.Println("No wallets found yet.")
		return
	}
	for i, rec := range records {
		if i > 0 {
			fmt.Println()
		}
		printRecord(rec)
	}
}

func printRecord(rec found.Record) {
	fmt.Printf("ID:        %s\n", rec.ID)
	fmt.Printf("Found:     %s\n", rec.Timestamp)
	fmt.Printf("Mnemonic:  %s\n", rec.Mnemonic)
	if rec.Passphrase != "" {
		fmt.Printf("Passphrase: %s\n", rec.Passphrase)
	}
	chains := make([]string, 0, len(rec.Addresses))
	for c := range rec.Addresses {
		chains = append(chains, c)
	}
	sort.Strings(chains)
	for _, c := range chains {
		bal, ok := rec.Balances[c]
		if !ok {
			bal = "unknown"
		}
		fmt.Printf("  %-4s %s  %s\n", c, rec.Addresses[c], bal)
	}
}

// ── runs ────────────────────────────────────────────────────────────────

func cmdRuns(client *rpcclient.Client) {
	ctx, cancel := newContext()
	defer cancel()

	runs, err := client.Runs(ctx)
	if err != nil {
		fatal("runs_list: %v", err)
	}
	if len(runs) == 0 {
		fmt.Println("No finished runs.")
		return
	}
	fmt.Printf("%-20s  %-12s  %14s  %10s  %6s  %s\n", "STARTED", "DURATION", "ATTEMPTS", "VALID", "FUNDED", "REASON")
	for _, r := range runs {
		fmt.Printf("%-20s  %-12s  %14s  %10s  %6d  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.StoppedAt.Sub(r.StartedAt).Round(time.Second),
			humanize.Comma(int64(r.Attempts)),
			humanize.Comma(int64(r.Valid)),
			r.Positive,
			r.Reason)
	}
}

// ── validate ────────────────────────────────────────────────────────────

func cmdValidate(args []string) {
	if len(args) < 1 {
		fatal("Usage: seedrecover-cli validate \"<mnemonic>\"")
	}
	words := strings.Fields(strings.ToLower(strings.Join(args, " ")))
	wl := wordlist.English()

	var unknown []string
	for _, w := range words {
		if !wl.Contains(w) {
			unknown = append(unknown, w)
		}
	}

	fmt.Printf("Words:     %d\n", len(words))
	if len(unknown) > 0 {
		fmt.Printf("Unknown:   %s\n", strings.Join(unknown, ", "))
	}
	if !wallet.ValidWordCount(len(words)) {
		fmt.Println("Valid:     no (wrong word count)")
		os.Exit(1)
	}
	if !wallet.ValidateWords(wl, words) {
		fmt.Println("Valid:     no")
		os.Exit(1)
	}
	fmt.Println("Valid:     yes")
}

// ── derive ──────────────────────────────────────────────────────────────

type mnemonicFlags struct {
	mnemonic   string
	passphrase string
	chains     []string
	solScheme  address.SolanaScheme
}

func parseMnemonicFlags(name string, args []string) mnemonicFlags {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	mnemonic := fs.String("mnemonic", "", "BIP-39 mnemonic")
	chains := fs.String("chains", "", "Comma-separated chains (default: BTC,ETH,SOL)")
	ask := fs.Bool("ask-passphrase", false, "Prompt for the BIP-39 passphrase")
	sol := fs.String("sol-derivation", "bip32", "SOL key derivation: bip32 or slip10")
	fs.Parse(args)

	if *mnemonic == "" {
		fatal("Usage: seedrecover-cli %s --mnemonic \"...\" [--chains BTC,ETH,SOL] [--ask-passphrase]", name)
	}
	scheme, err := address.ParseSolanaScheme(*sol)
	if err != nil {
		fatal("%v", err)
	}
	mf := mnemonicFlags{mnemonic: strings.ToLower(*mnemonic), solScheme: scheme}
	if *chains != "" {
		for _, c := range strings.Split(*chains, ",") {
			if c = strings.TrimSpace(c); c != "" {
				mf.chains = append(mf.chains, c)
			}
		}
	}
	if *ask {
		pass, err := readPassword("BIP-39 passphrase: ")
		if err != nil {
			fatal("read passphrase: %v", err)
		}
		mf.passphrase = string(pass)
	}
	return mf
}

func cmdDerive(args []string) {
	mf := parseMnemonicFlags("derive", args)

	chains := []address.Chain{address.BTC, address.ETH, address.SOL}
	if len(mf.chains) > 0 {
		chains = chains[:0]
		for _, name := range mf.chains {
			c, err := address.ParseChain(name)
			if err != nil {
				fatal("%v", err)
			}
			chains = append(chains, c)
		}
	}
	derivers, err := address.ForChainsScheme(chains, mf.solScheme)
	if err != nil {
		fatal("%v", err)
	}

	seed, err := wallet.SeedFromMnemonic(wordlist.English(), mf.mnemonic, mf.passphrase)
	if err != nil {
		fatal("%v", err)
	}
	results := address.DeriveAll(seed, derivers)
	for _, c := range address.SortedChains(results) {
		res := results[c]
		if !res.OK() {
			fmt.Printf("%-4s %-22s error: %v\n", c, res.Path, res.Err)
			continue
		}
		fmt.Printf("%-4s %-22s %s\n", c, res.Path, res.Address)
	}
}

// ── balance ─────────────────────────────────────────────────────────────

func cmdBalance(client *rpcclient.Client, args []string) {
	mf := parseMnemonicFlags("balance", args)

	ctx, cancel := newContext()
	defer cancel()
	res, err := client.CheckBalance(ctx, rpc.MnemonicParam{
		Mnemonic:   mf.mnemonic,
		Passphrase: mf.passphrase,
		Chains:     mf.chains,
	})
	if err != nil {
		fatal("balance_check: %v", err)
	}

	for _, b := range res.Balances {
		switch {
		case b.Error != "" && b.Amount == "":
			fmt.Printf("%-4s %s  %s (%s)\n", b.Chain, b.Address, b.Status, b.Error)
		default:
			fmt.Printf("%-4s %s  %s\n", b.Chain, b.Address, b.Amount)
		}
	}
	if res.Positive {
		fmt.Println("\nThis wallet holds funds.")
	}
}

// ── generate ────────────────────────────────────────────────────────────

func cmdGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	bits := fs.Int("bits", 128, "Entropy size in bits (128 = 12 words, 256 = 24 words)")
	fs.Parse(args)

	mnemonic, err := wallet.GenerateMnemonic(*bits)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Println(mnemonic)
}

// ── helpers ─────────────────────────────────────────────────────────────

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
