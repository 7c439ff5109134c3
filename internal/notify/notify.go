// Package notify delivers allocation-change alerts to an out-of-core
// collaborator. ConsoleNotifier is a plain-log driver; TelegramNotifier
// posts to a bot-token HTTP endpoint, generalized from coin trade alerts
// to allocation changes.
package notify

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/whitelight/quantengine/pkg/types"
)

// Notifier delivers an allocation decision to whatever is watching: a
// console, a chat channel, a pager.
type Notifier interface {
	NotifyAllocation(alloc types.TargetAllocation) error
	NotifyError(msg string)
}

// ConsoleNotifier prints allocation changes to the standard logger in an
// emoji-and-banner console style.
type ConsoleNotifier struct{}

func NewConsoleNotifier() *ConsoleNotifier { return &ConsoleNotifier{} }

func (n *ConsoleNotifier) NotifyAllocation(alloc types.TargetAllocation) error {
	log.Printf("📈 ALLOCATION  long=%s  inverse=%s  cash=%s  composite=%.4f",
		alloc.TqqqPct.StringFixed(4), alloc.SqqqPct.StringFixed(4), alloc.CashPct.StringFixed(4), alloc.CompositeScore)
	return nil
}

func (n *ConsoleNotifier) NotifyError(msg string) {
	log.Printf("⚠️  ERROR  %s", msg)
}

// TelegramNotifier posts allocation changes to a Telegram chat via the bot
// HTTP API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	enabled  bool
	client   *http.Client
}

// NewTelegramNotifier builds a Telegram notifier. When enabled is false,
// NotifyAllocation and NotifyError are no-ops.
func NewTelegramNotifier(botToken, chatID string, enabled bool) *TelegramNotifier {
	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		enabled:  enabled,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *TelegramNotifier) NotifyAllocation(alloc types.TargetAllocation) error {
	emoji := "📊"
	switch {
	case alloc.TqqqPct.IsPositive():
		emoji = "📈"
	case alloc.SqqqPct.IsPositive():
		emoji = "📉"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>ALLOCATION UPDATE</b> %s\n", emoji, emoji)
	b.WriteString(strings.Repeat("━", 30) + "\n\n")
	fmt.Fprintf(&b, "Long (LLE):    <code>%s</code>\n", alloc.TqqqPct.StringFixed(4))
	fmt.Fprintf(&b, "Inverse (IE):  <code>%s</code>\n", alloc.SqqqPct.StringFixed(4))
	fmt.Fprintf(&b, "Cash:          <code>%s</code>\n", alloc.CashPct.StringFixed(4))
	fmt.Fprintf(&b, "Composite:     <code>%.4f</code>\n\n", alloc.CompositeScore)
	b.WriteString("⚠️ <b>MANUAL EXECUTION REQUIRED</b>")

	return n.sendMessage(b.String())
}

func (n *TelegramNotifier) NotifyError(msg string) {
	n.sendMessage(fmt.Sprintf("⚠️ <b>Error Alert</b>\n\n%s", msg))
}

func (n *TelegramNotifier) sendMessage(message string) error {
	if !n.enabled {
		log.Println("⚠️ Telegram notifications disabled in config")
		return nil
	}

	apiURL := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)

	data := url.Values{}
	data.Set("chat_id", n.chatID)
	data.Set("text", message)
	data.Set("parse_mode", "HTML")
	data.Set("disable_web_page_preview", "true")

	resp, err := n.client.PostForm(apiURL, data)
	if err != nil {
		log.Printf("❌ Telegram API error: %v", err)
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 200 {
		log.Printf("❌ Telegram API response (%d): %s", resp.StatusCode, string(body))
		return fmt.Errorf("telegram API error: %s", string(body))
	}

	log.Println("✅ Telegram message sent successfully")
	return nil
}
