// Package search runs the randomized mnemonic search: generate a candidate,
// test its checksum, derive addresses, check balances, and hand funded
// wallets to persistence and notification.
package search

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Klingon-tech/seedrecover/internal/address"
	"github.com/Klingon-tech/seedrecover/internal/balance"
	"github.com/Klingon-tech/seedrecover/internal/found"
	"github.com/Klingon-tech/seedrecover/internal/log"
	"github.com/Klingon-tech/seedrecover/internal/wallet"
	"github.com/Klingon-tech/seedrecover/internal/wordlist"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/ticker"
	"golang.org/x/time/rate"
)

var (
	// ErrNoWordlist is returned by New without a wordlist.
	ErrNoWordlist = errors.New("search requires a wordlist")
	// ErrAlreadyRun is returned by a second call to Run.
	ErrAlreadyRun = errors.New("engine has already run")
)

// Deps are the collaborators of an Engine. Only Wordlist is required.
type Deps struct {
	Wordlist *wordlist.Wordlist
	// Derivers defaults to address.Default().
	Derivers []address.Deriver
	// Checker resolves balances. Nil counts every derivable candidate as
	// an unknown (zero) balance.
	Checker balance.Checker
	Store   found.Store
	Runs    RunRecorder
	// Notifier receives startup, status, wallet-found and error events.
	Notifier Notifier
	Progress Reporter
	// Clock defaults to the wall clock.
	Clock clock.Clock
	// NewTicker defaults to ticker.New.
	NewTicker func(time.Duration) ticker.Ticker
	// Limiter spaces balance checks. Defaults to one check per
	// Config.BalanceDelay.
	Limiter *rate.Limiter
	// RandSource returns the random source for a worker. Defaults to an
	// independently seeded PCG per worker.
	RandSource func(worker int) rand.Source
}

// Engine runs one search. Create it with New; call Run once.
type Engine struct {
	cfg  Config
	deps Deps

	stats   Stats
	state   atomic.Int32
	started atomic.Int64 // unix nanos
	reason  atomic.Value // StopReason
	limiter *rate.Limiter
	notify  *dispatcher
	drain   time.Duration
	wg      sync.WaitGroup
}

// New validates cfg against deps and prepares an engine.
func New(cfg Config, deps Deps) (*Engine, error) {
	if deps.Wordlist == nil || deps.Wordlist.Len() == 0 {
		return nil, ErrNoWordlist
	}
	if err := cfg.Validate(deps.Wordlist); err != nil {
		return nil, fmt.Errorf("invalid search config: %w", err)
	}
	cfg.KnownWords = append([]string(nil), cfg.KnownWords...)
	cfg.KnownPositions = append([]int(nil), cfg.KnownPositions...)

	if deps.Derivers == nil {
		deps.Derivers = address.Default()
	}
	if deps.Clock == nil {
		deps.Clock = clock.NewDefaultClock()
	}
	if deps.NewTicker == nil {
		deps.NewTicker = func(d time.Duration) ticker.Ticker { return ticker.New(d) }
	}
	if deps.RandSource == nil {
		deps.RandSource = func(int) rand.Source { return rand.NewPCG(rand.Uint64(), rand.Uint64()) }
	}
	if !deps.Wordlist.Canonical() {
		log.Search.Warn().Int("words", deps.Wordlist.Len()).
			Msg("Searching a degraded wordlist; real wallets cannot be found")
	}

	if deps.Limiter == nil {
		deps.Limiter = rate.NewLimiter(rate.Every(cfg.BalanceDelay), 1)
	}

	e := &Engine{
		cfg:     cfg,
		deps:    deps,
		limiter: deps.Limiter,
		drain:   drainTimeout,
	}
	e.reason.Store(ReasonNone)
	return e, nil
}

// Config returns the validated configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Snapshot returns the current statistics.
func (e *Engine) Snapshot() Snapshot {
	var started time.Time
	if ns := e.started.Load(); ns != 0 {
		started = time.Unix(0, ns)
	}
	now := e.deps.Clock.Now()
	if started.IsZero() {
		started = now
	}
	snap := e.stats.snapshot(started, now)
	snap.State = e.State()
	snap.Reason = e.reason.Load().(StopReason)
	return snap
}

// Run searches until MaxAttempts candidates have been generated or ctx is
// cancelled. Cancellation is observed between candidates; a candidate that
// is mid-pipeline finishes first. Run returns the final snapshot; a
// cancelled run is not an error.
func (e *Engine) Run(ctx context.Context) (Snapshot, error) {
	if !e.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return e.Snapshot(), ErrAlreadyRun
	}
	start := e.deps.Clock.Now()
	e.started.Store(start.UnixNano())

	// Spend the initial burst so the first balance check also waits a full
	// BalanceDelay.
	e.limiter.ReserveN(time.Now(), e.limiter.Burst())

	e.notify = newDispatcher(e.deps.Notifier)
	e.notify.startup(e.startupInfo(start))
	log.Search.Info().
		Int("known_words", len(e.cfg.KnownWords)).
		Ints("positions", e.cfg.Positions()).
		Uint64("max_attempts", e.cfg.MaxAttempts).
		Int("workers", e.cfg.Workers).
		Msg("Search started")

	reportDone := make(chan struct{})
	reportStopped := make(chan struct{})
	go func() {
		defer close(reportStopped)
		e.report(reportDone)
	}()

	for w := 0; w < e.cfg.Workers; w++ {
		e.wg.Add(1)
		go e.worker(ctx, w)
	}
	e.wg.Wait()

	close(reportDone)
	<-reportStopped

	if ctx.Err() != nil && (e.cfg.MaxAttempts == 0 || e.stats.attempts.Load() < e.cfg.MaxAttempts) {
		e.reason.Store(ReasonCancelled)
	} else {
		e.reason.Store(ReasonMaxAttempts)
	}
	e.state.Store(int32(StateStopped))
	final := e.Snapshot()

	if e.deps.Progress != nil {
		e.deps.Progress.Progress(final)
	}
	e.saveRun(final)
	e.notify.close(e.drain)

	log.Search.Info().
		Uint64("attempts", final.Attempts).
		Uint64("valid", final.Valid).
		Uint64("derivable", final.Derivable).
		Uint64("positive", final.Positive).
		Uint64("zero", final.Zero).
		Uint64("unknown", final.Unknown).
		Dur("elapsed", final.Elapsed).
		Str("reason", string(final.Reason)).
		Msg("Search stopped")
	return final, nil
}

func (e *Engine) startupInfo(start time.Time) StartupInfo {
	chains := make([]string, len(e.deps.Derivers))
	for i, d := range e.deps.Derivers {
		chains[i] = string(d.Chain())
	}
	return StartupInfo{
		KnownWords:  len(e.cfg.KnownWords),
		Positions:   e.cfg.Positions(),
		FreeSlots:   e.cfg.FreeSlots(),
		MaxAttempts: e.cfg.MaxAttempts,
		Workers:     e.cfg.Workers,
		Chains:      chains,
		StartedAt:   start,
	}
}

// worker generates and processes candidates until the bound is reached or
// ctx is cancelled.
func (e *Engine) worker(ctx context.Context, id int) {
	defer e.wg.Done()

	gen := NewGenerator(e.deps.Wordlist, e.cfg, e.deps.RandSource(id))
	pipeline := context.WithoutCancel(ctx)
	var idx [MnemonicLength]uint16

	for {
		if ctx.Err() != nil {
			return
		}
		if !e.stats.reserve(e.cfg.MaxAttempts) {
			return
		}
		gen.Next(&idx)
		e.process(pipeline, gen, &idx)
	}
}

// process runs one candidate through validation, derivation and the
// balance check.
func (e *Engine) process(ctx context.Context, gen *Generator, idx *[MnemonicLength]uint16) {
	if !wallet.ValidIndices(idx[:]) {
		return
	}
	e.stats.valid.Add(1)

	words := gen.Words(idx)
	seed := wallet.DeriveSeed(words, e.cfg.Passphrase)
	addrs := address.DeriveAll(seed, e.deps.Derivers)
	if !address.AnyOK(addrs) {
		return
	}
	e.stats.derivable.Add(1)

	if e.deps.Checker == nil {
		e.stats.zero.Add(1)
		e.stats.unknown.Add(1)
		return
	}

	if err := e.limiter.Wait(ctx); err != nil {
		log.Search.Warn().Err(err).Msg("Balance limiter failed")
	}
	report := e.deps.Checker.CheckAll(ctx, addrs)

	if !report.Positive() {
		e.stats.zero.Add(1)
		if report.Unknown() {
			e.stats.unknown.Add(1)
		}
		return
	}
	e.stats.positive.Add(1)

	rec := found.NewRecord(words, e.cfg.Passphrase, addrs, report, e.deps.Clock.Now())
	log.Search.Warn().Str("id", rec.ID).Interface("balances", rec.Balances).Msg("Wallet with balance found")
	if e.deps.Store != nil {
		if err := e.deps.Store.Append(ctx, rec); err != nil {
			log.Search.Error().Err(err).Str("id", rec.ID).Msg("Failed to persist found wallet")
			e.notify.fail(fmt.Errorf("persist wallet %s: %w", rec.ID, err))
		}
	}
	e.notify.walletFound(rec)
}

// report feeds the progress reporter and the status notifier until done
// is closed.
func (e *Engine) report(done <-chan struct{}) {
	progress := e.deps.NewTicker(e.cfg.ProgressInterval)
	status := e.deps.NewTicker(e.cfg.StatusInterval)
	progress.Resume()
	status.Resume()
	defer progress.Stop()
	defer status.Stop()

	for {
		select {
		case <-progress.Ticks():
			if e.deps.Progress != nil {
				e.deps.Progress.Progress(e.Snapshot())
			}
		case <-status.Ticks():
			e.notify.status(e.Snapshot())
		case <-done:
			return
		}
	}
}

func (e *Engine) saveRun(final Snapshot) {
	if e.deps.Runs == nil {
		return
	}
	sum := found.RunSummary{
		StartedAt:  final.StartedAt,
		StoppedAt:  final.StartedAt.Add(final.Elapsed),
		Attempts:   final.Attempts,
		Valid:      final.Valid,
		Derivable:  final.Derivable,
		Positive:   final.Positive,
		Zero:       final.Zero,
		Unknown:    final.Unknown,
		KnownWords: len(e.cfg.KnownWords),
		Reason:     string(final.Reason),
	}
	if err := e.deps.Runs.SaveRun(sum); err != nil {
		log.Search.Error().Err(err).Msg("Failed to save run summary")
	}
}
