// Package wallet implements BIP-39 mnemonic checks, seed derivation and
// hierarchical key derivation (BIP-32 and SLIP-10).
package wallet

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/Klingon-tech/seedrecover/internal/wordlist"
	"github.com/tyler-smith/go-bip39"
)

// RecoveryWordCount is the mnemonic length searched by the recovery engine.
const RecoveryWordCount = 12

// ErrWordCount is returned for mnemonic lengths BIP-39 does not define.
var ErrWordCount = errors.New("mnemonic must have 12, 15, 18, 21 or 24 words")

// ValidWordCount reports whether n is a BIP-39 mnemonic length.
func ValidWordCount(n int) bool {
	return n >= 12 && n <= 24 && n%3 == 0
}

// ChecksumBits returns the checksum length for an n-word mnemonic.
// Total bits are 11n; checksum is ENT/32, so CS = 11n/33.
func ChecksumBits(n int) int {
	return n * wordlist.BitsPerWord / 33
}

// EntropyBits returns the entropy length for an n-word mnemonic.
func EntropyBits(n int) int {
	return n*wordlist.BitsPerWord - ChecksumBits(n)
}

// ValidateMnemonic checks a space separated mnemonic against wl.
func ValidateMnemonic(wl *wordlist.Wordlist, mnemonic string) bool {
	return ValidateWords(wl, strings.Fields(mnemonic))
}

// ValidateWords reports whether words form a valid BIP-39 mnemonic under wl:
// correct length, every word present, checksum bits matching SHA-256 of the
// entropy. A word missing from wl makes the candidate invalid.
func ValidateWords(wl *wordlist.Wordlist, words []string) bool {
	if !ValidWordCount(len(words)) {
		return false
	}
	indices := make([]uint16, len(words))
	for i, w := range words {
		idx, ok := wl.Index(w)
		if !ok {
			return false
		}
		indices[i] = idx
	}
	return ValidIndices(indices)
}

// ValidIndices runs the checksum test on pre-resolved 11-bit word indices.
func ValidIndices(indices []uint16) bool {
	n := len(indices)
	if !ValidWordCount(n) {
		return false
	}
	var buf [33]byte // 24 words * 11 bits = 264 bits
	packIndices(buf[:], indices)

	entBits := EntropyBits(n)
	csBits := ChecksumBits(n)
	sum := sha256.Sum256(buf[:entBits/8])

	for i := 0; i < csBits; i++ {
		if bitAt(buf[:], entBits+i) != bitAt(sum[:], i) {
			return false
		}
	}
	return true
}

// packIndices writes each index as 11 big-endian bits into dst.
func packIndices(dst []byte, indices []uint16) {
	pos := 0
	for _, idx := range indices {
		for b := wordlist.BitsPerWord - 1; b >= 0; b-- {
			if idx>>uint(b)&1 == 1 {
				dst[pos/8] |= 0x80 >> uint(pos%8)
			}
			pos++
		}
	}
}

func bitAt(b []byte, i int) byte {
	return b[i/8] >> (7 - uint(i%8)) & 1
}

// EntropyToWords encodes entropy (16, 20, 24, 28 or 32 bytes) as a mnemonic
// using wl. It fails when an index falls outside a degraded wordlist.
func EntropyToWords(wl *wordlist.Wordlist, entropy []byte) ([]string, error) {
	entBits := len(entropy) * 8
	if entBits < 128 || entBits > 256 || entBits%32 != 0 {
		return nil, fmt.Errorf("entropy must be 128-256 bits in steps of 32, got %d", entBits)
	}
	csBits := entBits / 32
	n := (entBits + csBits) / wordlist.BitsPerWord

	buf := make([]byte, len(entropy)+1)
	copy(buf, entropy)
	sum := sha256.Sum256(entropy)
	buf[len(entropy)] = sum[0] // top csBits (<= 8) are read below

	words := make([]string, n)
	for w := 0; w < n; w++ {
		var idx int
		for b := 0; b < wordlist.BitsPerWord; b++ {
			idx = idx<<1 | int(bitAt(buf, w*wordlist.BitsPerWord+b))
		}
		if idx >= wl.Len() {
			return nil, fmt.Errorf("word %d: index %d outside wordlist of %d words", w, idx, wl.Len())
		}
		words[w] = wl.Word(idx)
	}
	return words, nil
}

// GenerateMnemonic creates a random mnemonic with the given entropy size in
// bits using the canonical English list.
func GenerateMnemonic(bits int) (string, error) {
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}
	return mnemonic, nil
}
