package config

import (
	"runtime"

	"github.com/Klingon-tech/seedrecover/internal/address"
	"github.com/Klingon-tech/seedrecover/internal/balance"
	"github.com/Klingon-tech/seedrecover/internal/httpclient"
	"github.com/Klingon-tech/seedrecover/internal/notify"
	"github.com/Klingon-tech/seedrecover/internal/search"
	"github.com/Klingon-tech/seedrecover/internal/wordlist"
	"github.com/gagliardetto/solana-go/rpc"
)

// DefaultRPCPort is the default control API port.
const DefaultRPCPort = 8645

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir:     DefaultDataDir(),
		WordlistURL: wordlist.DefaultURL,
		Search: SearchConfig{
			Workers:          defaultWorkers(),
			Chains:           []string{"BTC", "ETH", "SOL"},
			SolanaScheme:     string(address.SolanaBIP32),
			ProgressInterval: search.DefaultProgressInterval,
			StatusInterval:   search.DefaultStatusInterval,
		},
		Balance: BalanceConfig{
			Enabled:      true,
			Delay:        search.DefaultBalanceDelay,
			Timeout:      httpclient.DefaultTimeout,
			Retries:      balance.DefaultRetryConfig().MaxAttempts,
			BitcoinURL:   balance.DefaultBlockchainInfoURL,
			EtherscanURL: balance.DefaultEtherscanURL,
			SolanaURL:    rpc.MainNetBeta_RPC,
		},
		Notify: NotifyConfig{
			TelegramURL: notify.DefaultTelegramURL,
		},
		Storage: StorageConfig{
			JSONL: true,
		},
		RPC: RPCConfig{
			Enabled:    true,
			Addr:       "127.0.0.1",
			Port:       DefaultRPCPort,
			AllowedIPs: []string{"127.0.0.1"},
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// defaultWorkers leaves one core for the balance checks and the terminal.
func defaultWorkers() int {
	if n := runtime.NumCPU() - 1; n > 1 {
		return n
	}
	return 1
}
