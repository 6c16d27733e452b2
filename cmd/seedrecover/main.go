// Seed recovery daemon. Searches for the missing words of a 12-word BIP-39
// mnemonic and reports any candidate whose addresses hold funds.
//
// Usage:
//
//	seedrecover --words="w1 w2 ..." [--positions=0,1,...]  Run a search
//	seedrecover --help                                     Show help
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Klingon-tech/seedrecover/config"
	"github.com/Klingon-tech/seedrecover/internal/node"
	"golang.org/x/term"
)

func main() {
	cfg, _, err := config.Load(os.Args[1:])
	if errors.Is(err, config.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Search.AskPassphrase {
		pass, err := readPassword("BIP-39 passphrase: ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: reading passphrase: %v\n", err)
			os.Exit(1)
		}
		cfg.Search.Passphrase = string(pass)
	}

	n, err := node.New(cfg, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	_, err = n.Run(ctx)
	stop()
	n.Stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}
