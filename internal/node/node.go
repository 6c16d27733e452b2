// Package node assembles a recovery run from configuration: logging,
// wordlist, found-wallet storage, address derivers, balance providers,
// notifiers, the search engine and the local RPC server.
package node

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Klingon-tech/seedrecover/config"
	"github.com/Klingon-tech/seedrecover/internal/address"
	"github.com/Klingon-tech/seedrecover/internal/console"
	"github.com/Klingon-tech/seedrecover/internal/found"
	klog "github.com/Klingon-tech/seedrecover/internal/log"
	"github.com/Klingon-tech/seedrecover/internal/rpc"
	"github.com/Klingon-tech/seedrecover/internal/search"
	"github.com/Klingon-tech/seedrecover/internal/storage"
	"github.com/Klingon-tech/seedrecover/internal/wordlist"
	"github.com/rs/zerolog"
)

// WeakKnowledgeWords is the number of known words below which a random
// search is practically hopeless.
const WeakKnowledgeWords = 8

// wordlistTimeout bounds the wordlist download at startup.
const wordlistTimeout = 15 * time.Second

// errorNotifyTimeout bounds the delivery of a fatal-error notification.
const errorNotifyTimeout = 15 * time.Second

// Node is a fully-initialized recovery run.
type Node struct {
	cfg    *config.Config
	logger zerolog.Logger

	// Core
	wl       *wordlist.Wordlist
	db       storage.DB
	store    *found.DBStore
	notifier search.Notifier
	progress *console.Progress
	engine   *search.Engine

	// RPC
	rpcServer *rpc.Server
}

// New creates and initializes a Node. It performs all setup steps (logger,
// wordlist, storage, derivers, balance providers, notifiers, engine, RPC)
// but does not start searching. Call Run for that. Progress and banners
// are written to out.
func New(cfg *config.Config, out io.Writer) (*Node, error) {
	if out == nil {
		out = os.Stdout
	}

	// ── 1. Init logger ──────────────────────────────────────────────
	logFile := expandHome(cfg.Log.File)
	if logFile == "" {
		logsDir := cfg.LogsDir()
		if err := os.MkdirAll(logsDir, 0700); err != nil {
			return nil, fmt.Errorf("creating logs dir: %w", err)
		}
		logFile = filepath.Join(logsDir, "seedrecover.log")
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := klog.WithComponent("node")

	logger.Info().
		Str("datadir", cfg.DataDir).
		Int("known_words", len(cfg.Search.Words)).
		Strs("chains", cfg.Search.Chains).
		Bool("balance", cfg.Balance.Enabled).
		Msg("Starting seed recovery")

	if len(cfg.Search.Words) < WeakKnowledgeWords {
		logger.Warn().
			Int("known_words", len(cfg.Search.Words)).
			Int("recommended", WeakKnowledgeWords).
			Msg("Few known words; the search space is astronomically large")
	}

	// ── 2. Wordlist ─────────────────────────────────────────────────
	wlCtx, wlCancel := context.WithTimeout(context.Background(), wordlistTimeout)
	wl := wordlist.Load(wlCtx, &http.Client{Timeout: wordlistTimeout}, cfg.WordlistURL)
	wlCancel()
	logger.Info().Int("words", wl.Len()).Bool("canonical", wl.Canonical()).Msg("Wordlist loaded")

	// ── 3. Derivers ─────────────────────────────────────────────────
	derivers, err := buildDerivers(cfg.Search.Chains, cfg.Search.SolanaScheme)
	if err != nil {
		return nil, err
	}

	// ── 4. Open storage ─────────────────────────────────────────────
	db, err := storage.NewBadger(cfg.DBDir())
	if err != nil {
		return nil, fmt.Errorf("open database at %s: %w", cfg.DBDir(), err)
	}
	store := found.NewDBStore(db)
	logger.Info().Str("path", cfg.DBDir()).Msg("Database opened")

	if cfg.ClearRuns {
		if err := store.ClearRuns(); err != nil {
			db.Close()
			return nil, fmt.Errorf("clear runs: %w", err)
		}
		logger.Info().Msg("Run history cleared")
	}

	sink := found.Multi{store}
	if cfg.Storage.JSONL {
		jsonl := found.NewJSONL(expandHome(cfg.FoundFile()))
		sink = append(sink, jsonl)
		logger.Info().Str("path", jsonl.Path()).Msg("Found wallets also appended to JSONL")
	}

	// ── 5. Balance providers ────────────────────────────────────────
	checker := buildChecker(cfg, derivers)
	if checker == nil {
		logger.Warn().Msg("Balance checks disabled; candidates are only counted")
	}

	// ── 6. Notifiers ────────────────────────────────────────────────
	notifier, err := buildNotifier(cfg, out)
	if err != nil {
		db.Close()
		return nil, err
	}
	progress := console.NewProgress(out)

	// ── 7. Search engine ────────────────────────────────────────────
	deps := search.Deps{
		Wordlist: wl,
		Derivers: derivers,
		Store:    sink,
		Runs:     store,
		Notifier: notifier,
		Progress: progress,
	}
	if checker != nil {
		deps.Checker = checker
	}
	engine, err := search.New(cfg.SearchParams(), deps)
	if err != nil {
		db.Close()
		return nil, err
	}

	// ── 8. RPC server ───────────────────────────────────────────────
	var rpcServer *rpc.Server
	if cfg.RPC.Enabled {
		rpcAddr := fmt.Sprintf("%s:%d", cfg.RPC.Addr, cfg.RPC.Port)
		rpcServer = rpc.New(rpcAddr, wl, cfg.RPC)
		rpcServer.SetEngine(engine)
		rpcServer.SetFoundStore(store)
		rpcServer.SetSolanaScheme(address.SolanaScheme(cfg.Search.SolanaScheme))
		if checker != nil {
			rpcServer.SetBalanceChecker(checker)
		}
		if err := rpcServer.Start(); err != nil {
			db.Close()
			return nil, fmt.Errorf("start RPC at %s: %w", rpcAddr, err)
		}
		logger.Info().Str("addr", rpcServer.Addr()).Msg("RPC server started")
	} else {
		logger.Info().Msg("RPC disabled by config")
	}

	n := &Node{
		cfg:       cfg,
		logger:    logger,
		wl:        wl,
		db:        db,
		store:     store,
		notifier:  notifier,
		progress:  progress,
		engine:    engine,
		rpcServer: rpcServer,
	}
	return n, nil
}

// Run searches until the attempt bound is reached or ctx is cancelled. A
// failed run is reported to the notifiers before returning.
func (n *Node) Run(ctx context.Context) (search.Snapshot, error) {
	snap, err := n.engine.Run(ctx)
	if err != nil {
		n.logger.Error().Err(err).Msg("Search failed")
		n.NotifyError(err)
		return snap, err
	}
	return snap, nil
}

// NotifyError delivers a fatal error to every notifier.
func (n *Node) NotifyError(err error) {
	ctx, cancel := context.WithTimeout(context.Background(), errorNotifyTimeout)
	defer cancel()
	if nerr := n.notifier.Error(ctx, err); nerr != nil {
		n.logger.Warn().Err(nerr).Msg("Error notification failed")
	}
}

// Stop performs graceful shutdown in reverse order.
func (n *Node) Stop() {
	if n.rpcServer != nil {
		if err := n.rpcServer.Stop(); err != nil {
			n.logger.Warn().Err(err).Msg("RPC shutdown")
		}
	}
	if n.db != nil {
		if err := n.db.Close(); err != nil {
			n.logger.Warn().Err(err).Msg("Database close")
		}
	}

	n.logger.Info().Msg("Goodbye!")
	klog.Close()
}

// RPCAddr returns the address the RPC server is listening on.
func (n *Node) RPCAddr() string {
	if n.rpcServer == nil {
		return ""
	}
	return n.rpcServer.Addr()
}

// Snapshot returns the engine's current counters.
func (n *Node) Snapshot() search.Snapshot {
	return n.engine.Snapshot()
}

// Store returns the found-wallet database.
func (n *Node) Store() *found.DBStore {
	return n.store
}

// Wordlist returns the wordlist in use.
func (n *Node) Wordlist() *wordlist.Wordlist {
	return n.wl
}

// Chains returns the chains addresses are derived for.
func (n *Node) Chains() []address.Chain {
	chains := make([]address.Chain, len(n.cfg.Search.Chains))
	for i, c := range n.cfg.Search.Chains {
		chains[i] = address.Chain(c)
	}
	return chains
}
