package log

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{" warn ", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"off", zerolog.Disabled, false},
		{"disabled", zerolog.Disabled, false},
		{"trace", zerolog.InfoLevel, true},
		{"loud", zerolog.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if ValidLevel(tt.in) == tt.wantErr {
			t.Errorf("ValidLevel(%q) = %v", tt.in, !tt.wantErr)
		}
	}
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, "warn")

	l.Info().Msg("hidden")
	l.Warn().Str("chain", "BTC").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line at warn level, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if entry["message"] != "shown" || entry["chain"] != "BTC" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Error("expected a timestamp")
	}
}

func TestNewConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(&buf, "debug")
	l.Debug().Msg("console line")
	if !strings.Contains(buf.String(), "console line") {
		t.Errorf("console output missing message: %q", buf.String())
	}
}

func TestInit_FileGetsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seedrecover.log")
	if err := Init("info", true, path); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer Close()

	Search.Info().Uint64("attempts", 7).Msg("file entry")
	Storage.Debug().Msg("below level")
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), data)
	}
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("file line not JSON: %v", err)
	}
	if entry["component"] != "search" || entry["attempts"] != float64(7) {
		t.Errorf("unexpected entry: %v", entry)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("log file mode = %o, want 600", perm)
	}
}

func TestInit_Errors(t *testing.T) {
	if err := Init("loud", false, ""); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := Init("info", false, filepath.Join(t.TempDir(), "missing", "x.log")); err == nil {
		t.Error("expected error for unwritable log path")
	}
}

func TestClose_NoFile(t *testing.T) {
	if err := Init("info", false, ""); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := Close(); err != nil {
		t.Errorf("Close without file: %v", err)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	setGlobal(NewJSONLogger(&buf, "info"))
	defer setGlobal(NewConsoleLogger(os.Stderr, "info"))

	nodeLog := WithComponent("node")
	nodeLog.Info().Msg("x")
	RPC.Info().Msg("y")

	out := buf.String()
	if !strings.Contains(out, `"component":"node"`) || !strings.Contains(out, `"component":"rpc"`) {
		t.Errorf("component fields missing: %s", out)
	}
}
