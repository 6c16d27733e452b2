package wordlist

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Klingon-tech/seedrecover/internal/log"
)

// DefaultURL is the upstream location of the English BIP-39 list.
const DefaultURL = "https://raw.githubusercontent.com/bitcoin/bips/master/bip-0039/english.txt"

// maxBody caps the downloaded list; the real file is ~13KB.
const maxBody = 1 << 20

// Fetch downloads and parses a newline-separated wordlist from url.
func Fetch(ctx context.Context, client *http.Client, url string) (*Wordlist, error) {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch wordlist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch wordlist: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read wordlist: %w", err)
	}
	return Parse(string(body))
}

// Load returns the list at url, falling back to the embedded English list
// when the download fails or yields a non-canonical list. An empty url skips
// the network entirely.
func Load(ctx context.Context, client *http.Client, url string) *Wordlist {
	if url == "" {
		return English()
	}

	wl, err := Fetch(ctx, client, url)
	if err != nil {
		log.Wordlist.Warn().Err(err).Str("url", url).Msg("Wordlist download failed, using embedded list")
		return English()
	}
	if !wl.Canonical() {
		log.Wordlist.Warn().Int("words", wl.Len()).Str("url", url).Msg("Downloaded wordlist is not canonical, using embedded list")
		return English()
	}
	log.Wordlist.Debug().Int("words", wl.Len()).Msg("Wordlist loaded")
	return wl
}
