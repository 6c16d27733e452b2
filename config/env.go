package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable, e.g. SEEDRECOVER_WORKERS.
const EnvPrefix = "seedrecover"

// Env holds environment overrides. Pointer fields stay nil when the
// variable is unset so that only present variables override lower layers.
type Env struct {
	DataDir     string `envconfig:"DATADIR"`
	WordlistURL string `envconfig:"WORDLIST_URL"`

	Words            string         `envconfig:"WORDS"`
	Positions        string         `envconfig:"POSITIONS"`
	Passphrase       string         `envconfig:"PASSPHRASE"`
	MaxAttempts      *uint64        `envconfig:"MAX_ATTEMPTS"`
	Workers          *int           `envconfig:"WORKERS"`
	Chains           []string       `envconfig:"CHAINS"`
	SolanaScheme     string         `envconfig:"SOL_DERIVATION"`
	ProgressInterval *time.Duration `envconfig:"PROGRESS_INTERVAL"`
	StatusInterval   *time.Duration `envconfig:"STATUS_INTERVAL"`

	Balance      *bool          `envconfig:"BALANCE"`
	BalanceDelay *time.Duration `envconfig:"BALANCE_DELAY"`
	EtherscanKey string         `envconfig:"ETHERSCAN_KEY"`
	SolanaURL    string         `envconfig:"SOLANA_RPC_URL"`

	TelegramToken  string `envconfig:"TELEGRAM_TOKEN"`
	TelegramChatID string `envconfig:"TELEGRAM_CHAT_ID"`

	RPC     *bool  `envconfig:"RPC"`
	RPCPort *int   `envconfig:"RPC_PORT"`
	LogLevel string `envconfig:"LOG_LEVEL"`
	LogJSON  *bool  `envconfig:"LOG_JSON"`
}

// LoadEnv reads SEEDRECOVER_* variables.
func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return &env, nil
}

// ApplyEnv applies environment overrides to cfg.
func ApplyEnv(cfg *Config, env *Env) error {
	if env.DataDir != "" {
		cfg.DataDir = env.DataDir
	}
	if env.WordlistURL != "" {
		cfg.WordlistURL = env.WordlistURL
	}

	// Search
	if env.Words != "" {
		cfg.Search.Words = parseWordList(env.Words)
	}
	if env.Positions != "" {
		pos, err := parseIntList(env.Positions)
		if err != nil {
			return fmt.Errorf("SEEDRECOVER_POSITIONS: %w", err)
		}
		cfg.Search.Positions = pos
	}
	if env.Passphrase != "" {
		cfg.Search.Passphrase = env.Passphrase
	}
	if env.MaxAttempts != nil {
		cfg.Search.MaxAttempts = *env.MaxAttempts
	}
	if env.Workers != nil {
		cfg.Search.Workers = *env.Workers
	}
	if len(env.Chains) > 0 {
		cfg.Search.Chains = env.Chains
	}
	if env.SolanaScheme != "" {
		cfg.Search.SolanaScheme = env.SolanaScheme
	}
	if env.ProgressInterval != nil {
		cfg.Search.ProgressInterval = *env.ProgressInterval
	}
	if env.StatusInterval != nil {
		cfg.Search.StatusInterval = *env.StatusInterval
	}

	// Balance
	if env.Balance != nil {
		cfg.Balance.Enabled = *env.Balance
	}
	if env.BalanceDelay != nil {
		cfg.Balance.Delay = *env.BalanceDelay
	}
	if env.EtherscanKey != "" {
		cfg.Balance.EtherscanKey = env.EtherscanKey
	}
	if env.SolanaURL != "" {
		cfg.Balance.SolanaURL = env.SolanaURL
	}

	// Notifications
	if env.TelegramToken != "" {
		cfg.Notify.TelegramToken = env.TelegramToken
	}
	if env.TelegramChatID != "" {
		cfg.Notify.TelegramChatID = env.TelegramChatID
	}

	// RPC and logging
	if env.RPC != nil {
		cfg.RPC.Enabled = *env.RPC
	}
	if env.RPCPort != nil {
		cfg.RPC.Port = *env.RPCPort
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogJSON != nil {
		cfg.Log.JSON = *env.LogJSON
	}
	return nil
}
