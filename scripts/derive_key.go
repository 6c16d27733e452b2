// derive_key.go prints the seed and addresses for a mnemonic stored in a file,
// keeping the words out of shell history.
// Usage: go run scripts/derive_key.go <mnemonicfile> [passphrase]
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/Klingon-tech/seedrecover/internal/address"
	"github.com/Klingon-tech/seedrecover/internal/wallet"
	"github.com/Klingon-tech/seedrecover/internal/wordlist"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: derive_key <mnemonicfile> [passphrase]")
		os.Exit(1)
	}
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	passphrase := ""
	if len(os.Args) > 2 {
		passphrase = os.Args[2]
	}
	mnemonic := strings.ToLower(strings.TrimSpace(string(data)))
	seed, err := wallet.SeedFromMnemonic(wordlist.English(), mnemonic, passphrase)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("seed=%s\n", hex.EncodeToString(seed))
	results := address.DeriveAll(seed, address.Default())
	for _, c := range address.SortedChains(results) {
		res := results[c]
		if !res.OK() {
			fmt.Printf("%s=error: %v\n", strings.ToLower(string(c)), res.Err)
			continue
		}
		fmt.Printf("%s=%s (%s)\n", strings.ToLower(string(c)), res.Address, res.Path)
	}
}
