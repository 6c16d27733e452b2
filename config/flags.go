package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Version is reported by --version.
const Version = "0.1.0"

// ErrHelp is returned by Load after printing usage or version.
var ErrHelp = errors.New("help requested")

// Flags holds parsed command-line flags.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Core
	DataDir  string
	Config   string
	Wordlist string

	// Search
	Words            string
	Positions        string
	AskPassphrase    bool
	MaxAttempts      uint64
	Workers          int
	Chains           string
	SolanaScheme     string
	ProgressInterval time.Duration
	StatusInterval   time.Duration

	// Balance
	Offline      bool
	BalanceDelay time.Duration

	// RPC
	RPC        bool
	RPCAddr    string
	RPCPort    int
	RPCAllowed string

	// Storage
	FoundFile string
	ClearRuns bool

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args
	Args []string

	// Explicitly-set flags whose zero value is meaningful.
	SetMaxAttempts bool
	SetRPC         bool
	SetLogJSON     bool
}

// ParseFlags parses command-line flags (without the program name).
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("seedrecover", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	// Commands
	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")
	fs.BoolVar(&f.Version, "v", false, "Show version (shorthand)")

	// Core
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")
	fs.StringVar(&f.Wordlist, "wordlist-url", "", "Wordlist URL")

	// Search
	fs.StringVar(&f.Words, "words", "", "Known words, comma or space separated")
	fs.StringVar(&f.Positions, "positions", "", "0-based positions of the known words")
	fs.BoolVar(&f.AskPassphrase, "ask-passphrase", false, "Prompt for the BIP-39 passphrase")
	fs.Uint64Var(&f.MaxAttempts, "max-attempts", 0, "Stop after this many candidates (0 = unbounded)")
	fs.IntVar(&f.Workers, "workers", 0, "Parallel candidate generators")
	fs.StringVar(&f.Chains, "chains", "", "Chains to derive (comma-separated: BTC,ETH,SOL)")
	fs.StringVar(&f.SolanaScheme, "sol-derivation", "", "SOL key derivation: bip32 or slip10")
	fs.DurationVar(&f.ProgressInterval, "progress-interval", 0, "Progress line refresh interval")
	fs.DurationVar(&f.StatusInterval, "status-interval", 0, "Status notification interval")

	// Balance
	fs.BoolVar(&f.Offline, "offline", false, "Skip balance checks")
	fs.DurationVar(&f.BalanceDelay, "balance-delay", 0, "Minimum pause between balance checks")

	// RPC
	fs.BoolVar(&f.RPC, "rpc", true, "Enable RPC server")
	fs.StringVar(&f.RPCAddr, "rpc-addr", "", "RPC listen address")
	fs.IntVar(&f.RPCPort, "rpc-port", 0, "RPC listen port")
	fs.StringVar(&f.RPCAllowed, "rpc-allowed", "", "Allowed IPs for RPC")

	// Storage
	fs.StringVar(&f.FoundFile, "found-file", "", "JSON-lines file for found wallets")
	fs.BoolVar(&f.ClearRuns, "clear-runs", false, "Delete stored run summaries on startup")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			f.Help = true
			return f, nil
		}
		return nil, err
	}

	f.SetMaxAttempts = isFlagSet(fs, "max-attempts")
	f.SetRPC = isFlagSet(fs, "rpc")
	f.SetLogJSON = isFlagSet(fs, "log-json")

	f.Args = fs.Args()

	// Detect unparsed flags caused by positional arguments stopping the parser.
	for _, arg := range f.Args {
		if strings.HasPrefix(arg, "-") {
			return nil, fmt.Errorf("flag %q was not parsed (positional argument stopped parsing)", arg)
		}
	}

	return f, nil
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) error {
	// Core
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}
	if f.Wordlist != "" {
		cfg.WordlistURL = f.Wordlist
	}

	// Search
	if f.Words != "" {
		cfg.Search.Words = parseWordList(f.Words)
	}
	if f.Positions != "" {
		pos, err := parseIntList(f.Positions)
		if err != nil {
			return fmt.Errorf("--positions: %w", err)
		}
		cfg.Search.Positions = pos
	}
	if f.AskPassphrase {
		cfg.Search.AskPassphrase = true
	}
	if f.SetMaxAttempts {
		cfg.Search.MaxAttempts = f.MaxAttempts
	}
	if f.Workers != 0 {
		cfg.Search.Workers = f.Workers
	}
	if f.Chains != "" {
		cfg.Search.Chains = parseStringList(f.Chains)
	}
	if f.SolanaScheme != "" {
		cfg.Search.SolanaScheme = f.SolanaScheme
	}
	if f.ProgressInterval != 0 {
		cfg.Search.ProgressInterval = f.ProgressInterval
	}
	if f.StatusInterval != 0 {
		cfg.Search.StatusInterval = f.StatusInterval
	}

	// Balance
	if f.Offline {
		cfg.Balance.Enabled = false
	}
	if f.BalanceDelay != 0 {
		cfg.Balance.Delay = f.BalanceDelay
	}

	// RPC
	if f.SetRPC {
		cfg.RPC.Enabled = f.RPC
	}
	if f.RPCAddr != "" {
		cfg.RPC.Addr = f.RPCAddr
	}
	if f.RPCPort != 0 {
		cfg.RPC.Port = f.RPCPort
	}
	if f.RPCAllowed != "" {
		cfg.RPC.AllowedIPs = parseStringList(f.RPCAllowed)
	}

	// Storage
	if f.FoundFile != "" {
		cfg.Storage.FoundFile = f.FoundFile
	}
	cfg.ClearRuns = f.ClearRuns

	// Logging
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
	return nil
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// PrintUsage writes the daemon help text.
func PrintUsage(w io.Writer) {
	usage := `SeedRecover - find a BIP-39 wallet from a partially remembered mnemonic

Usage:
  seedrecover [options]
  seedrecover --help

Commands:
  --help, -h      Show this help message
  --version, -v   Show version information

Core Options:
  --datadir         Data directory (default: ~/.seedrecover)
  --config, -c      Config file path (default: <datadir>/seedrecover.conf)
  --wordlist-url    BIP-39 English wordlist URL (falls back to the embedded list)

Search Options:
  --words              Known words, comma or space separated
  --positions          0-based positions of the known words (default: first slots)
  --ask-passphrase     Prompt for the BIP-39 passphrase without echo
  --max-attempts       Stop after this many candidates (default: 0 = unbounded)
  --workers            Parallel candidate generators (default: CPU cores - 1)
  --chains             Chains to derive (default: BTC,ETH,SOL)
  --sol-derivation     SOL key derivation: bip32 or slip10 (default: bip32)
  --progress-interval  Progress line refresh (default: 500ms)
  --status-interval    Status notification interval (default: 1h)

Balance Options:
  --offline         Skip balance checks; only count valid mnemonics
  --balance-delay   Minimum pause between balance checks (default: 500ms)

RPC Options:
  --rpc           Enable RPC server (default: true)
  --rpc-addr      RPC listen address (default: 127.0.0.1)
  --rpc-port      RPC port (default: 8645)
  --rpc-allowed   Allowed IPs for RPC (comma-separated)

Storage Options:
  --found-file    JSON-lines file for found wallets
  --clear-runs    Delete stored run summaries on startup

Logging Options:
  --log-level     Log level: debug, info, warn, error (default: info)
  --log-file      Log file path (default: stderr only)
  --log-json      Output logs as JSON

Environment:
  SEEDRECOVER_PASSPHRASE, SEEDRECOVER_TELEGRAM_TOKEN,
  SEEDRECOVER_TELEGRAM_CHAT_ID, SEEDRECOVER_ETHERSCAN_KEY and the other
  SEEDRECOVER_* variables override the config file.

Examples:
  # Ten known words in order, two unknown words at the end
  seedrecover --words "abandon ability able about above absent absorb abstract absurd abuse"

  # Known words at scattered positions, bounded run
  seedrecover --words "abandon,zoo" --positions "0,11" --max-attempts 1000000

  # Count valid candidates without touching the network
  seedrecover --words "..." --offline
`
	fmt.Fprint(w, usage)
}

// Load loads configuration with the following precedence:
// 1. Default values
// 2. Auto-create data dirs + default config (idempotent)
// 3. Config file
// 4. Environment
// 5. Command-line flags
func Load(args []string) (*Config, *Flags, error) {
	flags, err := ParseFlags(args)
	if err != nil {
		return nil, nil, err
	}

	// Handle help/version
	if flags.Help {
		PrintUsage(os.Stdout)
		return nil, flags, ErrHelp
	}
	if flags.Version {
		fmt.Println("seedrecover version " + Version)
		return nil, flags, ErrHelp
	}

	// Start with defaults
	cfg := Default()

	env, err := LoadEnv()
	if err != nil {
		return nil, nil, err
	}

	// The data directory decides where the config file lives.
	if env.DataDir != "" {
		cfg.DataDir = env.DataDir
	}
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}

	// Auto-create data directories and default config on first start.
	if err := EnsureDataDirs(cfg); err != nil {
		return nil, nil, fmt.Errorf("ensuring data dirs: %w", err)
	}

	// Determine config file path
	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}

	// Load config file
	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config file: %w", err)
	}

	// Apply file config
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, nil, fmt.Errorf("applying config file: %w", err)
	}

	if err := ApplyEnv(cfg, env); err != nil {
		return nil, nil, fmt.Errorf("applying environment: %w", err)
	}

	// Apply flags (highest precedence)
	if err := ApplyFlags(cfg, flags); err != nil {
		return nil, nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, flags, nil
}

// EnsureDataDirs creates all required data directories if they don't exist.
// Also creates a default config file if one doesn't exist.
func EnsureDataDirs(cfg *Config) error {
	dirs := []string{
		cfg.DataDir,
		cfg.DBDir(),
		cfg.LogsDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	// Create default config if it doesn't exist.
	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(configPath); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}

	return nil
}
