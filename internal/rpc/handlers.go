package rpc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Klingon-tech/seedrecover/internal/address"
	"github.com/Klingon-tech/seedrecover/internal/found"
	"github.com/Klingon-tech/seedrecover/internal/wallet"
)

// ── Search endpoints ────────────────────────────────────────────────────

func (s *Server) handleSearchGetStats(_ *Request) (interface{}, *Error) {
	if s.engine == nil {
		return nil, &Error{Code: CodeUnavailable, Message: "no search running"}
	}
	return s.engine.Snapshot(), nil
}

func (s *Server) handleSearchGetConfig(_ *Request) (interface{}, *Error) {
	if s.engine == nil {
		return nil, &Error{Code: CodeUnavailable, Message: "no search running"}
	}
	cfg := s.engine.Config()
	return &SearchConfigResult{
		KnownWords:     cfg.KnownWords,
		KnownPositions: cfg.Positions(),
		FreeSlots:      cfg.FreeSlots(),
		HasPassphrase:  cfg.Passphrase != "",
		MaxAttempts:    cfg.MaxAttempts,
		Workers:        cfg.Workers,
		BalanceDelay:   cfg.BalanceDelay.String(),
		Offline:        s.checker == nil,
	}, nil
}

// ── Found wallet endpoints ──────────────────────────────────────────────

func (s *Server) handleFoundList(_ *Request) (interface{}, *Error) {
	if s.store == nil {
		return nil, &Error{Code: CodeUnavailable, Message: "found store not enabled"}
	}
	records, err := s.store.List()
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: fmt.Sprintf("list found wallets: %v", err)}
	}
	if records == nil {
		records = []found.Record{}
	}
	return &FoundListResult{Count: len(records), Records: records}, nil
}

func (s *Server) handleFoundGet(req *Request) (interface{}, *Error) {
	if s.store == nil {
		return nil, &Error{Code: CodeUnavailable, Message: "found store not enabled"}
	}
	var params IDParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if params.ID == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "id is required"}
	}

	rec, err := s.store.Get(params.ID)
	if errors.Is(err, found.ErrNotFound) {
		return nil, &Error{Code: CodeNotFound, Message: fmt.Sprintf("record %s not found", params.ID)}
	}
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	return &rec, nil
}

func (s *Server) handleRunsList(_ *Request) (interface{}, *Error) {
	if s.store == nil {
		return nil, &Error{Code: CodeUnavailable, Message: "found store not enabled"}
	}
	runs, err := s.store.Runs()
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: fmt.Sprintf("list runs: %v", err)}
	}
	if runs == nil {
		runs = []found.RunSummary{}
	}
	return &RunsResult{Runs: runs}, nil
}

// ── Mnemonic endpoints ──────────────────────────────────────────────────

func (s *Server) handleMnemonicValidate(req *Request) (interface{}, *Error) {
	var params MnemonicParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	words := strings.Fields(params.Mnemonic)
	if len(words) == 0 {
		return nil, &Error{Code: CodeInvalidParams, Message: "mnemonic is required"}
	}

	result := &ValidateResult{Words: len(words)}
	for _, w := range words {
		if !s.wordlist.Contains(w) {
			result.Unknown = append(result.Unknown, w)
		}
	}
	result.Valid = wallet.ValidateWords(s.wordlist, words)
	return result, nil
}

// seedParams parses and checks a mnemonic request and derives its seed.
func (s *Server) seedParams(req *Request) ([]byte, []address.Deriver, *Error) {
	var params MnemonicParam
	if err := parseParams(req, &params); err != nil {
		return nil, nil, err
	}
	seed, err := wallet.SeedFromMnemonic(s.wordlist, params.Mnemonic, params.Passphrase)
	if err != nil {
		return nil, nil, &Error{Code: CodeInvalidParams, Message: err.Error()}
	}
	ds, rpcErr := s.derivers(params.Chains)
	if rpcErr != nil {
		return nil, nil, rpcErr
	}
	return seed, ds, nil
}

func (s *Server) handleAddressDerive(req *Request) (interface{}, *Error) {
	seed, ds, rpcErr := s.seedParams(req)
	if rpcErr != nil {
		return nil, rpcErr
	}

	results := address.DeriveAll(seed, ds)
	out := &DeriveResult{Addresses: make([]AddressEntry, 0, len(results))}
	for _, c := range address.SortedChains(results) {
		res := results[c]
		entry := AddressEntry{Chain: string(c), Address: res.Address, Path: res.Path.String()}
		if res.Err != nil {
			entry.Error = res.Err.Error()
		}
		out.Addresses = append(out.Addresses, entry)
	}
	return out, nil
}

func (s *Server) handleBalanceCheck(ctx context.Context, req *Request) (interface{}, *Error) {
	if s.checker == nil {
		return nil, &Error{Code: CodeUnavailable, Message: "balance checks disabled (offline mode)"}
	}
	seed, ds, rpcErr := s.seedParams(req)
	if rpcErr != nil {
		return nil, rpcErr
	}

	addrs := address.DeriveAll(seed, ds)
	report := s.checker.CheckAll(ctx, addrs)

	out := &BalanceResult{Positive: report.Positive()}
	for _, c := range address.SortedChains(addrs) {
		b, ok := report[c]
		if !ok {
			continue
		}
		entry := BalanceEntry{Chain: string(c), Address: b.Address, Status: b.Status.String()}
		if b.Known() {
			entry.Amount = b.Decimal()
		}
		if b.Err != nil {
			entry.Error = b.Err.Error()
		}
		out.Balances = append(out.Balances, entry)
	}
	return out, nil
}
