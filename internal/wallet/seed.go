package wallet

import (
	"crypto/sha512"
	"errors"
	"strings"

	"github.com/Klingon-tech/seedrecover/internal/wordlist"
	"golang.org/x/crypto/pbkdf2"
)

// SeedSize is the length of a derived seed in bytes (512 bits).
const SeedSize = 64

// seedIterations is the PBKDF2 round count fixed by BIP-39.
const seedIterations = 2048

// ErrInvalidMnemonic is returned when a mnemonic fails the checksum test.
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// DeriveSeed stretches a mnemonic into a 64-byte seed with
// PBKDF2-HMAC-SHA512: password is the words joined by single spaces, salt is
// "mnemonic" followed by the passphrase. Text is used as given; no Unicode
// normalization is applied.
func DeriveSeed(words []string, passphrase string) []byte {
	password := []byte(strings.Join(words, " "))
	salt := []byte("mnemonic" + passphrase)
	return pbkdf2.Key(password, salt, seedIterations, SeedSize, sha512.New)
}

// SeedFromMnemonic validates mnemonic against wl and derives its seed.
func SeedFromMnemonic(wl *wordlist.Wordlist, mnemonic, passphrase string) ([]byte, error) {
	words := strings.Fields(mnemonic)
	if !ValidateWords(wl, words) {
		return nil, ErrInvalidMnemonic
	}
	return DeriveSeed(words, passphrase), nil
}
