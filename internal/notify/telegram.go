// Package notify delivers run events to people: a Telegram bot and the log.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Klingon-tech/seedrecover/internal/found"
	"github.com/Klingon-tech/seedrecover/internal/search"
	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// DefaultTelegramURL is the Bot API base.
const DefaultTelegramURL = "https://api.telegram.org"

// maxMessageLen is Telegram's limit for one message.
const maxMessageLen = 4096

// ErrTelegramConfig is returned when the token or chat ID is missing.
var ErrTelegramConfig = errors.New("telegram bot token and chat id are required")

// Telegram sends HTML-formatted messages through the Bot API.
type Telegram struct {
	endpoint string
	token    string
	chatID   int64
	channel  string // set instead of chatID for "@name" targets
	client   *http.Client
}

// NewTelegram creates a Telegram notifier. An empty base selects the public
// Bot API. chatID is a numeric chat ID or an "@channel" name.
func NewTelegram(base, token, chatID string, client *http.Client) (*Telegram, error) {
	if token == "" || chatID == "" {
		return nil, ErrTelegramConfig
	}
	if base == "" {
		base = DefaultTelegramURL
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	t := &Telegram{
		endpoint: strings.TrimRight(base, "/") + "/bot%s/%s",
		token:    token,
		client:   client,
	}
	if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		t.chatID = id
	} else {
		t.channel = chatID
	}
	return t, nil
}

// ctxClient binds Bot API requests to the caller's context.
type ctxClient struct {
	ctx    context.Context
	client *http.Client
}

func (c ctxClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req.WithContext(c.ctx))
}

// Send posts one message.
func (t *Telegram) Send(ctx context.Context, text string) error {
	if len(text) > maxMessageLen {
		cut := maxMessageLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	bot := &tgbotapi.BotAPI{Token: t.token, Client: ctxClient{ctx: ctx, client: t.client}, Buffer: 1}
	bot.SetAPIEndpoint(t.endpoint)

	var msg tgbotapi.MessageConfig
	if t.channel != "" {
		msg = tgbotapi.NewMessageToChannel(t.channel, text)
	} else {
		msg = tgbotapi.NewMessage(t.chatID, text)
	}
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("telegram: %w", redact(err, t.token))
	}
	return nil
}

// redact keeps the bot token out of logged errors; url errors include the
// full request URL.
func redact(err error, token string) error {
	msg := err.Error()
	if !strings.Contains(msg, token) {
		return err
	}
	return errors.New(strings.ReplaceAll(msg, token, "<token>"))
}

// Startup announces a new run.
func (t *Telegram) Startup(ctx context.Context, info search.StartupInfo) error {
	return t.Send(ctx, FormatStartup(info))
}

// Status sends a periodic statistics report.
func (t *Telegram) Status(ctx context.Context, snap search.Snapshot) error {
	return t.Send(ctx, FormatStatus(snap))
}

// WalletFound sends the mnemonic, addresses and balances of a funded wallet.
func (t *Telegram) WalletFound(ctx context.Context, rec found.Record) error {
	return t.Send(ctx, FormatWalletFound(rec))
}

// Error reports a failure that did not stop the search.
func (t *Telegram) Error(ctx context.Context, err error) error {
	return t.Send(ctx, FormatError(err, time.Now()))
}

// FormatStartup renders the startup message.
func FormatStartup(info search.StartupInfo) string {
	var b strings.Builder
	b.WriteString("🚀 <b>Seed recovery started</b>\n\n")
	fmt.Fprintf(&b, "💰 <b>Chains:</b> %s\n", html.EscapeString(strings.Join(info.Chains, ", ")))
	fmt.Fprintf(&b, "📝 Known words: %d\n", info.KnownWords)
	fmt.Fprintf(&b, "🎲 Random slots: %d\n", info.FreeSlots)
	fmt.Fprintf(&b, "🧵 Workers: %d\n", info.Workers)
	if info.MaxAttempts > 0 {
		fmt.Fprintf(&b, "🎯 Max attempts: %s\n", humanize.Comma(int64(info.MaxAttempts)))
	} else {
		b.WriteString("🎯 Max attempts: unlimited\n")
	}
	fmt.Fprintf(&b, "⏰ Started: %s\n", info.StartedAt.Format(found.TimestampFormat))
	return b.String()
}

// FormatStatus renders a status report.
func FormatStatus(s search.Snapshot) string {
	var b strings.Builder
	b.WriteString("📊 <b>Status report</b>\n\n")
	fmt.Fprintf(&b, "🔍 Attempts: %s\n", humanize.Comma(int64(s.Attempts)))
	fmt.Fprintf(&b, "✓ Valid seeds: %s\n", humanize.Comma(int64(s.Valid)))
	fmt.Fprintf(&b, "💰 Funded wallets: %d\n", s.Positive)
	fmt.Fprintf(&b, "📭 Checked: %s (unknown: %s)\n", humanize.Comma(int64(s.Checked())), humanize.Comma(int64(s.Unknown)))
	fmt.Fprintf(&b, "⏱️ Uptime: %.1f h\n", s.Elapsed.Hours())
	fmt.Fprintf(&b, "⚡ Speed: %s attempts/s\n", humanize.CommafWithDigits(s.Rate, 0))
	return b.String()
}

// FormatWalletFound renders a wallet-found alert. Only chains with a
// positive balance are listed; unknown chains are called out separately.
func FormatWalletFound(r found.Record) string {
	var b strings.Builder
	b.WriteString("🎉🎉🎉 <b>WALLET FOUND!</b> 🎉🎉🎉\n\n")
	for _, chain := range []string{"BTC", "ETH", "SOL"} {
		bal, ok := r.Balances[chain]
		if !ok || bal == "0" {
			continue
		}
		fmt.Fprintf(&b, "💰 <b>%s:</b> %s\n📍 <code>%s</code>\n\n", chain, html.EscapeString(bal), html.EscapeString(r.Addresses[chain]))
	}
	if len(r.Unknown) > 0 {
		fmt.Fprintf(&b, "❔ Unchecked: %s\n\n", html.EscapeString(strings.Join(r.Unknown, ", ")))
	}
	fmt.Fprintf(&b, "📝 <b>Mnemonic:</b>\n<code>%s</code>\n", html.EscapeString(r.Mnemonic))
	if r.Passphrase != "" {
		fmt.Fprintf(&b, "🔑 <b>Passphrase:</b> <code>%s</code>\n", html.EscapeString(r.Passphrase))
	}
	b.WriteString("\n⚠️ <b>MOVE THE FUNDS TO A SAFE WALLET NOW!</b>")
	return b.String()
}

// FormatError renders an error report.
func FormatError(err error, now time.Time) string {
	return fmt.Sprintf("❌ <b>ERROR</b>\n\n%s\n\n⏰ %s", html.EscapeString(err.Error()), now.Format(found.TimestampFormat))
}
