package notify

import (
	"context"
	"errors"

	"github.com/Klingon-tech/seedrecover/internal/found"
	"github.com/Klingon-tech/seedrecover/internal/log"
	"github.com/Klingon-tech/seedrecover/internal/search"
)

// Log writes every event to the notify logger. It never fails.
type Log struct{}

func (Log) Startup(_ context.Context, info search.StartupInfo) error {
	log.Notify.Info().
		Int("known_words", info.KnownWords).
		Int("free_slots", info.FreeSlots).
		Strs("chains", info.Chains).
		Msg("Run started")
	return nil
}

func (Log) Status(_ context.Context, s search.Snapshot) error {
	log.Notify.Info().
		Uint64("attempts", s.Attempts).
		Uint64("valid", s.Valid).
		Uint64("positive", s.Positive).
		Uint64("checked", s.Checked()).
		Float64("rate", s.Rate).
		Dur("elapsed", s.Elapsed).
		Msg("Status")
	return nil
}

func (Log) WalletFound(_ context.Context, r found.Record) error {
	log.Notify.Warn().
		Str("id", r.ID).
		Interface("addresses", r.Addresses).
		Interface("balances", r.Balances).
		Strs("unknown", r.Unknown).
		Msg("Wallet found")
	return nil
}

func (Log) Error(_ context.Context, err error) error {
	log.Notify.Error().Err(err).Msg("Search error")
	return nil
}

// Multi fans events out to several notifiers. Every notifier is called; the
// failures are joined.
type Multi []search.Notifier

func (m Multi) Startup(ctx context.Context, info search.StartupInfo) error {
	return m.each(func(n search.Notifier) error { return n.Startup(ctx, info) })
}

func (m Multi) Status(ctx context.Context, s search.Snapshot) error {
	return m.each(func(n search.Notifier) error { return n.Status(ctx, s) })
}

func (m Multi) WalletFound(ctx context.Context, r found.Record) error {
	return m.each(func(n search.Notifier) error { return n.WalletFound(ctx, r) })
}

func (m Multi) Error(ctx context.Context, err error) error {
	return m.each(func(n search.Notifier) error { return n.Error(ctx, err) })
}

func (m Multi) each(fn func(search.Notifier) error) error {
	var errs []error
	for _, n := range m {
		if err := fn(n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
