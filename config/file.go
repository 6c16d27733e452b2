package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadFile loads configuration from a .conf file.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key = value
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// setConfigValue sets a config value by key.
func setConfigValue(cfg *Config, key, value string) error {
	var err error
	switch key {
	// Core
	case "datadir":
		cfg.DataDir = value
	case "wordlist.url":
		cfg.WordlistURL = value

	// Search
	case "search.words", "words":
		cfg.Search.Words = parseWordList(value)
	case "search.positions", "positions":
		cfg.Search.Positions, err = parseIntList(value)
	case "search.passphrase":
		cfg.Search.Passphrase = value
	case "search.max_attempts":
		cfg.Search.MaxAttempts, err = strconv.ParseUint(value, 10, 64)
	case "search.workers":
		cfg.Search.Workers, err = strconv.Atoi(value)
	case "search.chains":
		cfg.Search.Chains = parseStringList(value)
	case "search.sol_derivation":
		cfg.Search.SolanaScheme = value
	case "search.progress_interval":
		cfg.Search.ProgressInterval, err = time.ParseDuration(value)
	case "search.status_interval":
		cfg.Search.StatusInterval, err = time.ParseDuration(value)

	// Balance
	case "balance.enabled", "balance":
		cfg.Balance.Enabled = parseBool(value)
	case "balance.delay":
		cfg.Balance.Delay, err = time.ParseDuration(value)
	case "balance.timeout":
		cfg.Balance.Timeout, err = time.ParseDuration(value)
	case "balance.retries":
		cfg.Balance.Retries, err = strconv.Atoi(value)
	case "balance.btc_url":
		cfg.Balance.BitcoinURL = value
	case "balance.eth_url":
		cfg.Balance.EtherscanURL = value
	case "balance.etherscan_key":
		cfg.Balance.EtherscanKey = value
	case "balance.sol_url":
		cfg.Balance.SolanaURL = value

	// Notifications
	case "notify.telegram_url":
		cfg.Notify.TelegramURL = value
	case "notify.telegram_token":
		cfg.Notify.TelegramToken = value
	case "notify.telegram_chat":
		cfg.Notify.TelegramChatID = value

	// Storage
	case "storage.jsonl":
		cfg.Storage.JSONL = parseBool(value)
	case "storage.found_file":
		cfg.Storage.FoundFile = value

	// RPC
	case "rpc.enabled", "rpc":
		cfg.RPC.Enabled = parseBool(value)
	case "rpc.addr":
		cfg.RPC.Addr = value
	case "rpc.port":
		cfg.RPC.Port, err = strconv.Atoi(value)
	case "rpc.allowed":
		cfg.RPC.AllowedIPs = parseStringList(value)

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		// Unknown keys are ignored
	}
	return err
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// parseStringList parses a comma-separated list.
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// parseWordList parses mnemonic words separated by commas or whitespace.
// Words are lowercased; the wordlist is all lowercase.
func parseWordList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	for i, f := range fields {
		fields[i] = strings.ToLower(f)
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// parseIntList parses a comma-separated list of integers.
func parseIntList(s string) ([]int, error) {
	parts := parseStringList(s)
	if len(parts) == 0 {
		return nil, nil
	}
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("position %q: %w", p, err)
		}
		out[i] = n
	}
	return out, nil
}

// WriteDefaultConfig writes a default configuration file.
func WriteDefaultConfig(path string) error {
	content := `# SeedRecover Configuration
#
# Precedence: defaults < this file < SEEDRECOVER_* environment < flags.
# Keep secrets (passphrase, tokens) in the environment where possible.

# Data directory (default: ~/.seedrecover)
# datadir = ~/.seedrecover

# BIP-39 English wordlist source. Falls back to the embedded list.
# wordlist.url = https://raw.githubusercontent.com/bitcoin/bips/master/bip-0039/english.txt

# ============================================================================
# Search
# ============================================================================

# Words you remember, comma or space separated.
# search.words = abandon, ability, able

# 0-based slot of each word above (empty = the first slots, in order).
# search.positions = 0, 5, 11

# BIP-39 passphrase. Prefer --ask-passphrase or SEEDRECOVER_PASSPHRASE.
# search.passphrase =

# Stop after this many candidates (0 = run until interrupted).
search.max_attempts = 0

# Parallel candidate generators (default: CPU cores - 1).
# search.workers = 4

search.chains = BTC,ETH,SOL

# SOL key derivation: bip32 (secp256k1 master, compatible with earlier
# found_wallets.json files) or slip10 (ed25519, Phantom/Solflare layout).
search.sol_derivation = bip32

search.progress_interval = 500ms
search.status_interval = 1h

# ============================================================================
# Balance checks
# ============================================================================

# Disable to only count checksum-valid candidates (offline mode).
balance.enabled = true

# Minimum pause between balance checks across all workers (min 500ms).
balance.delay = 500ms
balance.timeout = 10s
balance.retries = 3
# balance.btc_url = https://blockchain.info
# balance.eth_url = https://api.etherscan.io/v2/api
# balance.etherscan_key =
# balance.sol_url = https://api.mainnet-beta.solana.com

# ============================================================================
# Notifications
# ============================================================================

# Telegram is enabled when both values are set.
# notify.telegram_token =
# notify.telegram_chat =

# ============================================================================
# Storage
# ============================================================================

# Also append found wallets to a JSON-lines file.
storage.jsonl = true
# storage.found_file = ~/.seedrecover/found_wallets.json

# ============================================================================
# RPC Server
# ============================================================================

rpc.enabled = true
rpc.addr = 127.0.0.1
rpc.port = 8645
rpc.allowed = 127.0.0.1

# ============================================================================
# Logging
# ============================================================================

log.level = info
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0600)
}
