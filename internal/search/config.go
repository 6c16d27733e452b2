package search

import (
	"errors"
	"fmt"
	"time"

	"github.com/Klingon-tech/seedrecover/internal/wallet"
	"github.com/Klingon-tech/seedrecover/internal/wordlist"
)

// MnemonicLength is the number of words in every candidate.
const MnemonicLength = wallet.RecoveryWordCount

// Defaults.
const (
	DefaultBalanceDelay     = 500 * time.Millisecond
	DefaultProgressInterval = 500 * time.Millisecond
	DefaultStatusInterval   = time.Hour
)

// MinBalanceDelay is the smallest allowed pause between balance checks.
const MinBalanceDelay = 500 * time.Millisecond

// Config errors.
var (
	ErrTooManyWords     = errors.New("more known words than mnemonic slots")
	ErrPositionCount    = errors.New("known positions must match known words one to one")
	ErrPositionRange    = errors.New("known position out of range")
	ErrDuplicatePos     = errors.New("known position listed twice")
	ErrUnknownWord      = errors.New("known word is not in the wordlist")
	ErrBalanceDelay     = errors.New("balance delay below minimum")
	ErrInvalidWorkers   = errors.New("workers must be at least 1")
	ErrInvalidIntervals = errors.New("reporting intervals must be positive")
)

// Config describes one search run. It is validated once by New and never
// modified afterwards.
type Config struct {
	// KnownWords are the words the user remembers.
	KnownWords []string
	// KnownPositions are the 0-based slots of KnownWords. Empty means the
	// first len(KnownWords) slots.
	KnownPositions []int
	// Passphrase is the optional BIP-39 passphrase ("25th word").
	Passphrase string
	// MaxAttempts bounds the number of candidates generated; 0 runs until
	// the context is cancelled.
	MaxAttempts uint64
	// Workers is the number of concurrent candidate generators.
	Workers int
	// BalanceDelay is the minimum spacing between balance checks across
	// all workers.
	BalanceDelay     time.Duration
	ProgressInterval time.Duration
	StatusInterval   time.Duration
}

// DefaultConfig returns a configuration with no known words.
func DefaultConfig() Config {
	return Config{
		Workers:          1,
		BalanceDelay:     DefaultBalanceDelay,
		ProgressInterval: DefaultProgressInterval,
		StatusInterval:   DefaultStatusInterval,
	}
}

// Positions returns the slot of each known word.
func (c Config) Positions() []int {
	if len(c.KnownPositions) > 0 {
		return c.KnownPositions
	}
	out := make([]int, len(c.KnownWords))
	for i := range out {
		out[i] = i
	}
	return out
}

// FreeSlots returns how many slots are drawn at random each attempt.
func (c Config) FreeSlots() int {
	return MnemonicLength - len(c.KnownWords)
}

// Validate checks c against the wordlist that will be searched.
func (c Config) Validate(wl *wordlist.Wordlist) error {
	if len(c.KnownWords) > MnemonicLength {
		return fmt.Errorf("%w: %d > %d", ErrTooManyWords, len(c.KnownWords), MnemonicLength)
	}
	if len(c.KnownPositions) > 0 && len(c.KnownPositions) != len(c.KnownWords) {
		return fmt.Errorf("%w: %d positions for %d words; give one position per word, or none to fill the first slots in order",
			ErrPositionCount, len(c.KnownPositions), len(c.KnownWords))
	}
	seen := make(map[int]bool, len(c.KnownPositions))
	for _, p := range c.KnownPositions {
		if p < 0 || p >= MnemonicLength {
			return fmt.Errorf("%w: %d (want 0..%d)", ErrPositionRange, p, MnemonicLength-1)
		}
		if seen[p] {
			return fmt.Errorf("%w: %d", ErrDuplicatePos, p)
		}
		seen[p] = true
	}
	for _, w := range c.KnownWords {
		if !wl.Contains(w) {
			return fmt.Errorf("%w: %q", ErrUnknownWord, w)
		}
	}
	if c.Workers < 1 {
		return ErrInvalidWorkers
	}
	if c.BalanceDelay < MinBalanceDelay {
		return fmt.Errorf("%w: %s < %s", ErrBalanceDelay, c.BalanceDelay, MinBalanceDelay)
	}
	if c.ProgressInterval <= 0 || c.StatusInterval <= 0 {
		return ErrInvalidIntervals
	}
	return nil
}
