// Package config handles application configuration.
//
// Settings are layered with increasing precedence:
//   - Defaults (defaults.go)
//   - The .conf file in the data directory (file.go)
//   - SEEDRECOVER_* environment variables (env.go)
//   - Command-line flags (flags.go)
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/Klingon-tech/seedrecover/internal/search"
)

// =============================================================================
// Configuration
// =============================================================================

// Config holds the runtime configuration of a recovery run.
type Config struct {
	// Core
	DataDir     string `conf:"datadir"`
	WordlistURL string `conf:"wordlist.url"`

	// Search parameters
	Search SearchConfig

	// Balance providers
	Balance BalanceConfig

	// Notifications
	Notify NotifyConfig

	// Found-wallet persistence
	Storage StorageConfig

	// RPC server
	RPC RPCConfig

	// Logging
	Log LogConfig

	// Maintenance (not persisted in config file)
	ClearRuns bool
}

// SearchConfig holds the search parameters.
type SearchConfig struct {
	Words            []string      `conf:"search.words"`
	Positions        []int         `conf:"search.positions"` // 0-based; empty = first len(Words) slots.
	Passphrase       string        `conf:"search.passphrase"`
	AskPassphrase    bool          // Prompt on the terminal (not persisted in config file).
	MaxAttempts      uint64        `conf:"search.max_attempts"` // 0 = unbounded.
	Workers          int           `conf:"search.workers"`
	Chains           []string      `conf:"search.chains"`
	SolanaScheme     string        `conf:"search.sol_derivation"` // bip32 or slip10.
	ProgressInterval time.Duration `conf:"search.progress_interval"`
	StatusInterval   time.Duration `conf:"search.status_interval"`
}

// BalanceConfig holds balance provider settings.
type BalanceConfig struct {
	Enabled      bool          `conf:"balance.enabled"` // false = offline mode.
	Delay        time.Duration `conf:"balance.delay"`
	Timeout      time.Duration `conf:"balance.timeout"`
	Retries      int           `conf:"balance.retries"`
	BitcoinURL   string        `conf:"balance.btc_url"`
	EtherscanURL string        `conf:"balance.eth_url"`
	EtherscanKey string        `conf:"balance.etherscan_key"`
	SolanaURL    string        `conf:"balance.sol_url"`
}

// NotifyConfig holds notification settings. Telegram is enabled when both
// the token and chat ID are set.
type NotifyConfig struct {
	TelegramURL    string `conf:"notify.telegram_url"`
	TelegramToken  string `conf:"notify.telegram_token"`
	TelegramChatID string `conf:"notify.telegram_chat"`
}

// TelegramEnabled reports whether Telegram credentials are configured.
func (n NotifyConfig) TelegramEnabled() bool {
	return n.TelegramToken != "" && n.TelegramChatID != ""
}

// StorageConfig holds found-wallet persistence settings.
type StorageConfig struct {
	JSONL     bool   `conf:"storage.jsonl"`
	FoundFile string `conf:"storage.found_file"` // Empty = <datadir>/found_wallets.json.
}

// RPCConfig holds RPC server settings.
type RPCConfig struct {
	Enabled    bool     `conf:"rpc.enabled"`
	Addr       string   `conf:"rpc.addr"`
	Port       int      `conf:"rpc.port"`
	AllowedIPs []string `conf:"rpc.allowed"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// SearchParams converts the configuration into engine parameters.
func (c *Config) SearchParams() search.Config {
	sc := search.DefaultConfig()
	sc.KnownWords = c.Search.Words
	sc.KnownPositions = c.Search.Positions
	sc.Passphrase = c.Search.Passphrase
	sc.MaxAttempts = c.Search.MaxAttempts
	sc.Workers = c.Search.Workers
	sc.BalanceDelay = c.Balance.Delay
	sc.ProgressInterval = c.Search.ProgressInterval
	sc.StatusInterval = c.Search.StatusInterval
	return sc
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.seedrecover
//	macOS:   ~/Library/Application Support/SeedRecover
//	Windows: %APPDATA%\SeedRecover
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".seedrecover"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "SeedRecover")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "SeedRecover")
		}
		return filepath.Join(home, "AppData", "Roaming", "SeedRecover")
	default:
		return filepath.Join(home, ".seedrecover")
	}
}

// DBDir returns the found-wallet database directory.
func (c *Config) DBDir() string {
	return filepath.Join(c.DataDir, "found")
}

// FoundFile returns the JSONL export path.
func (c *Config) FoundFile() string {
	if c.Storage.FoundFile != "" {
		return c.Storage.FoundFile
	}
	return filepath.Join(c.DataDir, "found_wallets.json")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "seedrecover.conf")
}
