// Package found persists wallets with a positive balance and summaries of
// finished search runs.
package found

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/Klingon-tech/seedrecover/internal/address"
	"github.com/Klingon-tech/seedrecover/internal/balance"
	"github.com/zeebo/blake3"
)

// TimestampFormat matches the found_wallets.json files written by earlier
// versions of the tool.
const TimestampFormat = "2006-01-02 15:04:05"

// Record is one funded wallet. Records are append-only.
type Record struct {
	ID         string            `json:"id"`
	Mnemonic   string            `json:"mnemonic"`
	Passphrase string            `json:"passphrase,omitempty"`
	Addresses  map[string]string `json:"addresses"`
	Paths      map[string]string `json:"paths,omitempty"`
	Balances   map[string]string `json:"balances"`
	Unknown    []string          `json:"unknown,omitempty"`
	Timestamp  string            `json:"timestamp"`
	FoundAt    time.Time         `json:"found_at"`
}

// NewRecord builds a record from a candidate, its derived addresses and the
// balance report. Chains whose balance could not be resolved are listed in
// Unknown and carry no balance entry.
func NewRecord(words []string, passphrase string, addrs map[address.Chain]address.Result,
	report balance.Report, now time.Time) Record {

	mnemonic := strings.Join(words, " ")
	r := Record{
		ID:         Fingerprint(mnemonic, passphrase),
		Mnemonic:   mnemonic,
		Passphrase: passphrase,
		Addresses:  make(map[string]string, len(addrs)),
		Paths:      make(map[string]string, len(addrs)),
		Balances:   make(map[string]string, len(report)),
		Timestamp:  now.Format(TimestampFormat),
		FoundAt:    now.UTC(),
	}
	for _, chain := range address.SortedChains(addrs) {
		res := addrs[chain]
		if !res.OK() {
			continue
		}
		r.Addresses[string(chain)] = res.Address
		r.Paths[string(chain)] = res.Path.String()

		b, ok := report[chain]
		if !ok || !b.Known() {
			r.Unknown = append(r.Unknown, string(chain))
			continue
		}
		r.Balances[string(chain)] = b.Decimal()
	}
	return r
}

// Fingerprint identifies a mnemonic/passphrase pair without revealing it.
func Fingerprint(mnemonic, passphrase string) string {
	h := blake3.New()
	h.Write([]byte(mnemonic))
	h.Write([]byte{0})
	h.Write([]byte(passphrase))
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// RunSummary records the outcome of one search run.
type RunSummary struct {
	StartedAt  time.Time `json:"started_at"`
	StoppedAt  time.Time `json:"stopped_at"`
	Attempts   uint64    `json:"attempts"`
	Valid      uint64    `json:"valid"`
	Derivable  uint64    `json:"derivable"`
	Positive   uint64    `json:"positive"`
	Zero       uint64    `json:"zero"`
	Unknown    uint64    `json:"unknown"`
	KnownWords int       `json:"known_words"`
	Reason     string    `json:"reason"`
}
