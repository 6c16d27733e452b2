package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Klingon-tech/seedrecover/internal/address"
	"github.com/Klingon-tech/seedrecover/internal/log"
	"github.com/Klingon-tech/seedrecover/internal/search"
)

// Validate checks the configuration for obvious operator mistakes. Word
// membership in the wordlist is checked later by search.New, once the
// wordlist is loaded.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir is required")
	}

	// Search
	if len(cfg.Search.Words) > search.MnemonicLength {
		return fmt.Errorf("search.words has %d words, max is %d", len(cfg.Search.Words), search.MnemonicLength)
	}
	if len(cfg.Search.Positions) > 0 && len(cfg.Search.Positions) != len(cfg.Search.Words) {
		return fmt.Errorf("search.positions has %d entries for %d words; positions are optional, leave them empty to fill the first slots in order",
			len(cfg.Search.Positions), len(cfg.Search.Words))
	}
	seen := make(map[int]struct{}, len(cfg.Search.Positions))
	for i, p := range cfg.Search.Positions {
		if p < 0 || p >= search.MnemonicLength {
			return fmt.Errorf("search.positions[%d] = %d, must be in range [0, %d]", i, p, search.MnemonicLength-1)
		}
		if _, ok := seen[p]; ok {
			return fmt.Errorf("search.positions has duplicate position %d", p)
		}
		seen[p] = struct{}{}
	}
	if cfg.Search.Workers < 1 {
		return fmt.Errorf("search.workers must be at least 1")
	}
	if len(cfg.Search.Chains) == 0 {
		return fmt.Errorf("search.chains must name at least one chain")
	}
	for i, c := range cfg.Search.Chains {
		chain, err := address.ParseChain(c)
		if err != nil {
			return fmt.Errorf("search.chains[%d]: %w", i, err)
		}
		cfg.Search.Chains[i] = string(chain)
	}
	scheme, err := address.ParseSolanaScheme(cfg.Search.SolanaScheme)
	if err != nil {
		return fmt.Errorf("search.sol_derivation: %w", err)
	}
	cfg.Search.SolanaScheme = string(scheme)
	if cfg.Search.ProgressInterval <= 0 || cfg.Search.StatusInterval <= 0 {
		return fmt.Errorf("search intervals must be positive")
	}

	// Balance
	if cfg.Balance.Delay < search.MinBalanceDelay {
		return fmt.Errorf("balance.delay must be at least %s", search.MinBalanceDelay)
	}
	if cfg.Balance.Retries < 1 {
		return fmt.Errorf("balance.retries must be at least 1")
	}
	if cfg.Balance.Enabled {
		for key, raw := range map[string]string{
			"balance.btc_url": cfg.Balance.BitcoinURL,
			"balance.eth_url": cfg.Balance.EtherscanURL,
			"balance.sol_url": cfg.Balance.SolanaURL,
		} {
			if err := validateURL(raw); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		}
	}

	// Notifications
	if (cfg.Notify.TelegramToken == "") != (cfg.Notify.TelegramChatID == "") {
		return fmt.Errorf("notify.telegram_token and notify.telegram_chat must be set together")
	}

	// RPC
	if cfg.RPC.Port < 0 || cfg.RPC.Port > 65535 {
		return fmt.Errorf("rpc.port must be in range [0, 65535]")
	}

	// Logging
	if !log.ValidLevel(cfg.Log.Level) {
		return fmt.Errorf("log.level %q must be debug, info, warn, error or off", cfg.Log.Level)
	}

	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}
