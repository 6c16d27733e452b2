// Package log provides structured, colored logging for seedrecover.
//
// Logs go to stderr so that stdout stays free for the progress line and
// found-wallet banners. Found mnemonics are never logged; records are
// referenced by their fingerprint ID.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance.
var Logger zerolog.Logger

// Component loggers for different parts of the system.
var (
	Search   zerolog.Logger
	Wordlist zerolog.Logger
	Derive   zerolog.Logger
	Balance  zerolog.Logger
	Notify   zerolog.Logger
	Storage  zerolog.Logger
	RPC      zerolog.Logger
)

var (
	mu      sync.Mutex
	logFile *os.File
)

func init() {
	setGlobal(NewConsoleLogger(os.Stderr, "info"))
}

// Init configures the global logger. When file is non-empty, logs are
// written to both stderr (colored, or JSON when jsonOutput is set) and the
// file, which always receives JSON. A previously opened log file is closed.
func Init(level string, jsonOutput bool, file string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	var console io.Writer = os.Stderr
	if !jsonOutput {
		console = consoleWriter(os.Stderr)
	}

	var f *os.File
	out := console
	if file != "" {
		f, err = os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		out = zerolog.MultiLevelWriter(console, f)
	}

	mu.Lock()
	prev := logFile
	logFile = f
	mu.Unlock()
	if prev != nil {
		prev.Close()
	}

	setGlobal(zerolog.New(out).Level(lvl).With().Timestamp().Logger())
	return nil
}

// Close flushes and closes the log file opened by Init, if any. Console
// logging keeps working.
func Close() error {
	mu.Lock()
	f := logFile
	logFile = nil
	mu.Unlock()
	if f == nil {
		return nil
	}
	setGlobal(Logger.Output(consoleWriter(os.Stderr)))
	return f.Close()
}

// NewConsoleLogger creates a colored console logger.
func NewConsoleLogger(w io.Writer, level string) zerolog.Logger {
	lvl, _ := ParseLevel(level)
	return zerolog.New(consoleWriter(w)).Level(lvl).With().Timestamp().Logger()
}

// NewJSONLogger creates a structured JSON logger.
func NewJSONLogger(w io.Writer, level string) zerolog.Logger {
	lvl, _ := ParseLevel(level)
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
}

// ParseLevel converts a level name to a zerolog.Level. "off" and
// "disabled" silence logging; an empty name means info.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "":
		return zerolog.InfoLevel, nil
	case "off", "disabled":
		return zerolog.Disabled, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	}
	return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", level)
}

// ValidLevel reports whether level is an accepted level name.
func ValidLevel(level string) bool {
	_, err := ParseLevel(level)
	return err == nil
}

func setGlobal(l zerolog.Logger) {
	Logger = l
	Search = WithComponent("search")
	Wordlist = WithComponent("wordlist")
	Derive = WithComponent("derive")
	Balance = WithComponent("balance")
	Notify = WithComponent("notify")
	Storage = WithComponent("storage")
	RPC = WithComponent("rpc")
}

// WithComponent returns a logger with a component field.
func WithComponent(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}
