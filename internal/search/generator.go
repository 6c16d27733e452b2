package search

import (
	"math/rand/v2"

	"github.com/Klingon-tech/seedrecover/internal/wordlist"
)

// free marks a slot that is drawn at random.
const free = -1

// Generator builds candidates: fixed slots always hold their configured
// word, every other slot is drawn uniformly with replacement. It samples,
// it does not enumerate, so candidates may repeat.
//
// A Generator is not safe for concurrent use; each worker owns one.
type Generator struct {
	wl    *wordlist.Wordlist
	slots [MnemonicLength]int
	rng   *rand.Rand
}

// NewGenerator creates a generator for a validated config.
func NewGenerator(wl *wordlist.Wordlist, cfg Config, src rand.Source) *Generator {
	g := &Generator{wl: wl, rng: rand.New(src)}
	for i := range g.slots {
		g.slots[i] = free
	}
	for i, pos := range cfg.Positions() {
		idx, _ := wl.Index(cfg.KnownWords[i])
		g.slots[pos] = int(idx)
	}
	return g
}

// Next fills idx with the wordlist indices of a new candidate.
func (g *Generator) Next(idx *[MnemonicLength]uint16) {
	n := g.wl.Len()
	for i, s := range g.slots {
		if s == free {
			idx[i] = uint16(g.rng.IntN(n))
		} else {
			idx[i] = uint16(s)
		}
	}
}

// Words resolves indices to words.
func (g *Generator) Words(idx *[MnemonicLength]uint16) []string {
	words := make([]string, MnemonicLength)
	for i, v := range idx {
		words[i] = g.wl.Word(int(v))
	}
	return words
}
