package node

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Klingon-tech/seedrecover/config"
	"github.com/Klingon-tech/seedrecover/internal/address"
	"github.com/Klingon-tech/seedrecover/internal/balance"
	"github.com/Klingon-tech/seedrecover/internal/console"
	"github.com/Klingon-tech/seedrecover/internal/httpclient"
	"github.com/Klingon-tech/seedrecover/internal/notify"
)

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// buildDerivers resolves configured chain names into address derivers, with
// SOL derived by the named scheme.
func buildDerivers(names []string, solScheme string) ([]address.Deriver, error) {
	scheme, err := address.ParseSolanaScheme(solScheme)
	if err != nil {
		return nil, err
	}
	chains := make([]address.Chain, 0, len(names))
	for _, name := range names {
		c, err := address.ParseChain(name)
		if err != nil {
			return nil, fmt.Errorf("chain %q: %w", name, err)
		}
		chains = append(chains, c)
	}
	return address.ForChainsScheme(chains, scheme)
}

// buildChecker creates one balance source per derived chain. It returns nil
// when balance checks are disabled.
func buildChecker(cfg *config.Config, derivers []address.Deriver) *balance.Multi {
	if !cfg.Balance.Enabled {
		return nil
	}

	client := httpclient.NewWithTimeout(cfg.Balance.Timeout)
	retry := balance.DefaultRetryConfig()
	if cfg.Balance.Retries > 0 {
		retry.MaxAttempts = cfg.Balance.Retries
	}

	var sources []balance.Source
	for _, d := range derivers {
		switch d.Chain() {
		case address.BTC:
			sources = append(sources, balance.NewBlockchainInfo(cfg.Balance.BitcoinURL, client))
		case address.ETH:
			sources = append(sources, balance.NewEtherscan(cfg.Balance.EtherscanURL, cfg.Balance.EtherscanKey, client))
		case address.SOL:
			sources = append(sources, balance.NewSolanaRPC(cfg.Balance.SolanaURL))
		}
	}
	return balance.NewMulti(retry, sources...)
}

// buildNotifier fans events out to the log, the terminal banner and,
// when configured, Telegram.
func buildNotifier(cfg *config.Config, out io.Writer) (notify.Multi, error) {
	m := notify.Multi{notify.Log{}, console.NewBanner(out)}
	if cfg.Notify.TelegramEnabled() {
		tg, err := notify.NewTelegram(cfg.Notify.TelegramURL, cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID, &http.Client{Timeout: cfg.Balance.Timeout})
		if err != nil {
			return nil, fmt.Errorf("telegram: %w", err)
		}
		m = append(m, tg)
	}
	return m, nil
}
