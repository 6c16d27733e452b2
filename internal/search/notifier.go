package search

import (
	"context"
	"sync"
	"time"

	"github.com/Klingon-tech/seedrecover/internal/found"
	"github.com/Klingon-tech/seedrecover/internal/log"
)

// StartupInfo describes a run that is about to start.
type StartupInfo struct {
	KnownWords  int
	Positions   []int
	FreeSlots   int
	MaxAttempts uint64
	Workers     int
	Chains      []string
	StartedAt   time.Time
}

// Notifier receives run events. Calls happen on a dedicated goroutine,
// never on a search worker; errors are logged and dropped.
type Notifier interface {
	Startup(ctx context.Context, info StartupInfo) error
	Status(ctx context.Context, snap Snapshot) error
	WalletFound(ctx context.Context, rec found.Record) error
	Error(ctx context.Context, err error) error
}

// Reporter receives frequent progress snapshots. It is called from the
// reporting goroutine and must return quickly.
type Reporter interface {
	Progress(snap Snapshot)
}

// RunRecorder persists the summary of a finished run.
type RunRecorder interface {
	SaveRun(sum found.RunSummary) error
}

// queueSize bounds pending notifications. Events beyond it are dropped.
const queueSize = 64

// drainTimeout bounds how long Run waits for queued notifications.
const drainTimeout = 15 * time.Second

type event struct {
	kind string
	fn   func(ctx context.Context) error
}

// dispatcher delivers notifications in order on one goroutine so a slow
// or failing notifier never blocks a worker.
type dispatcher struct {
	n     Notifier
	queue chan event
	done  chan struct{}
	once  sync.Once
}

func newDispatcher(n Notifier) *dispatcher {
	d := &dispatcher{
		n:     n,
		queue: make(chan event, queueSize),
		done:  make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *dispatcher) loop() {
	defer close(d.done)
	for ev := range d.queue {
		if d.n == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		if err := ev.fn(ctx); err != nil {
			log.Notify.Warn().Err(err).Str("event", ev.kind).Msg("Notification failed")
		}
		cancel()
	}
}

// send enqueues an event without blocking.
func (d *dispatcher) send(kind string, fn func(ctx context.Context) error) {
	select {
	case d.queue <- event{kind: kind, fn: fn}:
	default:
		log.Notify.Warn().Str("event", kind).Msg("Notification queue full, dropping event")
	}
}

func (d *dispatcher) startup(info StartupInfo) {
	d.send("startup", func(ctx context.Context) error { return d.n.Startup(ctx, info) })
}

func (d *dispatcher) status(snap Snapshot) {
	d.send("status", func(ctx context.Context) error { return d.n.Status(ctx, snap) })
}

func (d *dispatcher) walletFound(rec found.Record) {
	d.send("wallet_found", func(ctx context.Context) error { return d.n.WalletFound(ctx, rec) })
}

func (d *dispatcher) fail(err error) {
	d.send("error", func(ctx context.Context) error { return d.n.Error(ctx, err) })
}

// close stops accepting events and waits up to timeout for the queue to
// drain.
func (d *dispatcher) close(timeout time.Duration) {
	d.once.Do(func() { close(d.queue) })
	select {
	case <-d.done:
	case <-time.After(timeout):
		log.Notify.Warn().Msg("Timed out flushing notifications")
	}
}
