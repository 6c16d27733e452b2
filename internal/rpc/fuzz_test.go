package rpc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Klingon-tech/seedrecover/internal/wordlist"
)

// FuzzRPCRequestUnmarshal tests that arbitrary JSON does not panic
// when parsed as a JSON-RPC 2.0 request.
func FuzzRPCRequestUnmarshal(f *testing.F) {
	f.Add([]byte(`{"jsonrpc":"2.0","method":"search_getStats","params":null,"id":1}`))
	f.Add([]byte(`{"jsonrpc":"2.0","method":"found_get","params":{"id":"abc"},"id":"test"}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`null`))
	f.Add([]byte(`{"method":"","params":[]}`))
	f.Add([]byte(`{"jsonrpc":"2.0","method":"search_getStats","params":[1,2,3],"id":999}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			return
		}
		_ = req.Method
		_ = req.ID
	})
}

// FuzzHandleRequest feeds arbitrary bodies through the handler. Every
// request must produce a JSON-RPC response.
func FuzzHandleRequest(f *testing.F) {
	f.Add([]byte(`{"jsonrpc":"2.0","method":"mnemonic_validate","params":{"mnemonic":"abandon"},"id":1}`))
	f.Add([]byte(`{"jsonrpc":"2.0","method":"address_derive","params":{"mnemonic":"","chains":["x"]},"id":2}`))
	f.Add([]byte(`{"jsonrpc":"2.0","method":"found_get","params":"id","id":3}`))
	f.Add([]byte(`[]`))

	wl, err := wordlist.New([]string{"abandon", "ability", "able", "about", "above", "absent", "absorb", "abstract"})
	if err != nil {
		f.Fatal(err)
	}
	srv := New("127.0.0.1:0", wl)
	h := srv.Handler()

	f.Fuzz(func(t *testing.T, data []byte) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(data))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		var resp Response
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("non-JSON response %q: %v", rec.Body.String(), err)
		}
		if resp.JSONRPC != "2.0" {
			t.Fatalf("jsonrpc = %q", resp.JSONRPC)
		}
	})
}
