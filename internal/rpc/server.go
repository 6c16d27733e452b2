// Package rpc implements the local JSON-RPC 2.0 control API of a running
// recovery: live statistics, found wallets, run history and ad hoc
// mnemonic checks.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/Klingon-tech/seedrecover/config"
	"github.com/Klingon-tech/seedrecover/internal/address"
	"github.com/Klingon-tech/seedrecover/internal/balance"
	"github.com/Klingon-tech/seedrecover/internal/found"
	klog "github.com/Klingon-tech/seedrecover/internal/log"
	"github.com/Klingon-tech/seedrecover/internal/search"
	"github.com/Klingon-tech/seedrecover/internal/wordlist"
	"github.com/rs/zerolog"
)

// maxBodySize is the maximum allowed request body size (1 MB).
const maxBodySize = 1 << 20

// Engine is the view of a search the server reports on.
type Engine interface {
	Config() search.Config
	Snapshot() search.Snapshot
}

// FoundStore is the read side of the found-wallet store.
type FoundStore interface {
	Get(id string) (found.Record, error)
	List() ([]found.Record, error)
	Count() (int, error)
	Runs() ([]found.RunSummary, error)
}

// Server is the JSON-RPC 2.0 HTTP server.
type Server struct {
	addr        string
	wordlist    *wordlist.Wordlist
	engine      Engine          // nil = search_* disabled.
	store       FoundStore      // nil = found_* and runs_* disabled.
	checker     balance.Checker // nil = offline, balance_check disabled.
	solScheme   address.SolanaScheme
	server      *http.Server
	logger      zerolog.Logger
	ln          net.Listener
	allowedNets []*net.IPNet // Empty = allow all.
}

// New creates a new RPC server. The rpcCfg parameter controls IP filtering;
// a zero-value RPCConfig allows all IPs.
func New(addr string, wl *wordlist.Wordlist, rpcCfg ...config.RPCConfig) *Server {
	s := &Server{
		addr:     addr,
		wordlist: wl,
		logger:   klog.RPC,
	}

	if len(rpcCfg) > 0 {
		s.allowedNets = parseAllowedIPs(rpcCfg[0].AllowedIPs)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)

	s.server = &http.Server{
		Handler:     mux,
		ReadTimeout: 30 * time.Second,
		// balance_check may retry several providers.
		WriteTimeout: 2 * time.Minute,
	}

	return s
}

// parseAllowedIPs converts string IP/CIDR entries into net.IPNet.
func parseAllowedIPs(entries []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, entry := range entries {
		_, ipNet, err := net.ParseCIDR(entry)
		if err == nil {
			nets = append(nets, ipNet)
			continue
		}
		// Try as a single IP (add /32 or /128).
		ip := net.ParseIP(entry)
		if ip == nil {
			continue
		}
		bits := 32
		if ip.To4() == nil {
			bits = 128
		}
		nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return nets
}

// Start begins listening and serving in a background goroutine.
// It returns immediately after the listener is bound.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("rpc listen: %w", err)
	}
	s.ln = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("RPC server error")
		}
	}()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("RPC server listening")
	return nil
}

// Addr returns the listener address (useful when bound to :0).
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// SetEngine sets the search whose statistics are reported.
func (s *Server) SetEngine(e Engine) {
	s.engine = e
}

// SetFoundStore sets the store for found_* and runs_* endpoints.
func (s *Server) SetFoundStore(fs FoundStore) {
	s.store = fs
}

// SetBalanceChecker enables balance_check.
func (s *Server) SetBalanceChecker(c balance.Checker) {
	s.checker = c
}

// Handler exposes the request handler for in-process use.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// handleRequest is the main HTTP handler for JSON-RPC requests.
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	// IP filtering.
	if len(s.allowedNets) > 0 {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		ip := net.ParseIP(host)
		if ip == nil || !s.isIPAllowed(ip) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
	}

	if r.Method != http.MethodPost {
		writeError(w, nil, CodeInvalidRequest, "only POST method is allowed")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		writeError(w, nil, CodeParseError, "failed to read request body")
		return
	}
	if len(body) > maxBodySize {
		writeError(w, nil, CodeInvalidRequest, "request body too large")
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, nil, CodeParseError, "invalid JSON")
		return
	}

	if req.JSONRPC != "2.0" {
		writeError(w, req.ID, CodeInvalidRequest, "jsonrpc must be \"2.0\"")
		return
	}

	result, rpcErr := s.dispatch(r.Context(), &req)
	if rpcErr != nil {
		writeJSON(w, Response{
			JSONRPC: "2.0",
			Error:   rpcErr,
			ID:      req.ID,
		})
		return
	}

	writeJSON(w, Response{
		JSONRPC: "2.0",
		Result:  result,
		ID:      req.ID,
	})
}

// dispatch routes a request to the appropriate handler.
func (s *Server) dispatch(ctx context.Context, req *Request) (interface{}, *Error) {
	switch req.Method {
	case "search_getStats":
		return s.handleSearchGetStats(req)
	case "search_getConfig":
		return s.handleSearchGetConfig(req)
	case "found_list":
		return s.handleFoundList(req)
	case "found_get":
		return s.handleFoundGet(req)
	case "runs_list":
		return s.handleRunsList(req)
	case "mnemonic_validate":
		return s.handleMnemonicValidate(req)
	case "address_derive":
		return s.handleAddressDerive(req)
	case "balance_check":
		return s.handleBalanceCheck(ctx, req)
	default:
		return nil, &Error{Code: CodeMethodNotFound, Message: fmt.Sprintf("method %q not found", req.Method)}
	}
}

// writeJSON writes a JSON-RPC response.
func writeJSON(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// writeError writes a JSON-RPC error response.
func writeError(w http.ResponseWriter, id interface{}, code int, message string) {
	writeJSON(w, Response{
		JSONRPC: "2.0",
		Error:   &Error{Code: code, Message: message},
		ID:      id,
	})
}

// isIPAllowed checks if the IP is in the allowed networks list.
func (s *Server) isIPAllowed(ip net.IP) bool {
	for _, n := range s.allowedNets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// parseParams unmarshals the request params into the given target.
func parseParams(req *Request, target interface{}) *Error {
	if req.Params == nil {
		return &Error{Code: CodeInvalidParams, Message: "params required"}
	}

	data, err := json.Marshal(req.Params)
	if err != nil {
		return &Error{Code: CodeInvalidParams, Message: "invalid params"}
	}

	if err := json.Unmarshal(data, target); err != nil {
		return &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid params: %v", err)}
	}
	return nil
}

// SetSolanaScheme selects the SOL derivation used by address_derive and
// balance_check. The default is address.SolanaBIP32.
func (s *Server) SetSolanaScheme(scheme address.SolanaScheme) {
	s.solScheme = scheme
}

// derivers resolves an optional chain list to derivers.
func (s *Server) derivers(names []string) ([]address.Deriver, *Error) {
	if len(names) == 0 {
		names = []string{string(address.BTC), string(address.ETH), string(address.SOL)}
	}
	chains := make([]address.Chain, 0, len(names))
	for _, n := range names {
		c, err := address.ParseChain(n)
		if err != nil {
			return nil, &Error{Code: CodeInvalidParams, Message: err.Error()}
		}
		chains = append(chains, c)
	}
	ds, err := address.ForChainsScheme(chains, s.solScheme)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: err.Error()}
	}
	return ds, nil
}
