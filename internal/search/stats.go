package search

import (
	"fmt"
	"sync/atomic"
	"time"
)

// State is the engine lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "IDLE":
		*s = StateIdle
	case "RUNNING":
		*s = StateRunning
	case "STOPPED":
		*s = StateStopped
	default:
		return fmt.Errorf("unknown state %q", b)
	}
	return nil
}

// StopReason says why a run ended.
type StopReason string

const (
	ReasonNone        StopReason = ""
	ReasonMaxAttempts StopReason = "max attempts reached"
	ReasonCancelled   StopReason = "cancelled"
)

// Stats holds the run counters. Counters only grow. Each candidate moves
// through them in pipeline order: attempts, valid, derivable, then exactly
// one of positive or zero (unknown is a subset of zero).
type Stats struct {
	attempts  atomic.Uint64
	valid     atomic.Uint64
	derivable atomic.Uint64
	positive  atomic.Uint64
	zero      atomic.Uint64
	unknown   atomic.Uint64
}

// reserve claims one attempt. It fails once max attempts have been claimed,
// so concurrent workers never overshoot the bound. max == 0 means unbounded.
func (s *Stats) reserve(max uint64) bool {
	for {
		n := s.attempts.Load()
		if max > 0 && n >= max {
			return false
		}
		if s.attempts.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Snapshot is a consistent copy of the counters plus timing.
type Snapshot struct {
	Attempts  uint64        `json:"attempts"`
	Valid     uint64        `json:"valid"`
	Derivable uint64        `json:"derivable"`
	Positive  uint64        `json:"positive"`
	Zero      uint64        `json:"zero"`
	Unknown   uint64        `json:"unknown"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`
	Rate      float64       `json:"rate"`
	State     State         `json:"state"`
	Reason    StopReason    `json:"reason,omitempty"`
}

// Checked returns the number of candidates whose balance was classified.
func (s Snapshot) Checked() uint64 {
	return s.Positive + s.Zero
}

// snapshot reads the counters in reverse pipeline order. A counter is only
// incremented after its predecessor, so reading later stages first keeps
// valid <= attempts and positive+zero <= valid in every snapshot.
func (s *Stats) snapshot(started, now time.Time) Snapshot {
	var snap Snapshot
	snap.Unknown = s.unknown.Load()
	snap.Positive = s.positive.Load()
	snap.Zero = s.zero.Load()
	snap.Derivable = s.derivable.Load()
	snap.Valid = s.valid.Load()
	snap.Attempts = s.attempts.Load()

	snap.StartedAt = started
	snap.Elapsed = now.Sub(started)
	if secs := snap.Elapsed.Seconds(); secs > 0 {
		snap.Rate = float64(snap.Attempts) / secs
	}
	return snap
}
