// Package wordlist holds the BIP-39 vocabulary used to index mnemonic words.
package wordlist

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39/wordlists"
)

// Size is the number of words in a canonical BIP-39 wordlist (2^11).
const Size = 2048

// BitsPerWord is the number of index bits each word encodes.
const BitsPerWord = 11

var (
	// ErrEmpty is returned when constructing a wordlist with no words.
	ErrEmpty = errors.New("wordlist is empty")
	// ErrTooLarge is returned when a list cannot be indexed by 11 bits.
	ErrTooLarge = fmt.Errorf("wordlist exceeds %d words", Size)
)

// Wordlist is an ordered vocabulary where each word's position is its index.
// It is read-only after construction and safe for concurrent use.
type Wordlist struct {
	words []string
	index map[string]uint16
}

// New builds a wordlist from words. Surrounding whitespace is trimmed and
// blank entries are rejected. Lists shorter than Size are accepted (degraded
// mode); lists longer than Size are rejected since their indices would not
// fit in 11 bits.
func New(words []string) (*Wordlist, error) {
	if len(words) == 0 {
		return nil, ErrEmpty
	}
	if len(words) > Size {
		return nil, fmt.Errorf("%w: got %d", ErrTooLarge, len(words))
	}

	wl := &Wordlist{
		words: make([]string, len(words)),
		index: make(map[string]uint16, len(words)),
	}
	for i, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			return nil, fmt.Errorf("word %d is blank", i)
		}
		if prev, ok := wl.index[w]; ok {
			return nil, fmt.Errorf("duplicate word %q at %d (first at %d)", w, i, prev)
		}
		wl.words[i] = w
		wl.index[w] = uint16(i)
	}
	return wl, nil
}

// Parse builds a wordlist from newline-separated text.
func Parse(text string) (*Wordlist, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	words := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			words = append(words, l)
		}
	}
	return New(words)
}

// English returns the canonical BIP-39 English wordlist.
func English() *Wordlist {
	wl, err := New(wordlists.English)
	if err != nil {
		panic(fmt.Sprintf("embedded english wordlist: %v", err))
	}
	return wl
}

// Index returns the 11-bit index of word. The second result is false when
// the word is not in the list.
func (wl *Wordlist) Index(word string) (uint16, bool) {
	idx, ok := wl.index[word]
	return idx, ok
}

// Contains reports whether word is in the list.
func (wl *Wordlist) Contains(word string) bool {
	_, ok := wl.index[word]
	return ok
}

// Word returns the word at idx. It panics if idx is out of range.
func (wl *Wordlist) Word(idx int) string {
	return wl.words[idx]
}

// Len returns the number of words.
func (wl *Wordlist) Len() int {
	return len(wl.words)
}

// Canonical reports whether the list has the full 2048 entries required for
// every 11-bit index to map to a word.
func (wl *Wordlist) Canonical() bool {
	return len(wl.words) == Size
}

// Words returns a copy of the words in index order.
func (wl *Wordlist) Words() []string {
	out := make([]string, len(wl.words))
	copy(out, wl.words)
	return out
}
