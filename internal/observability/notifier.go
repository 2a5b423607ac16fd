package observability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dbrainhq/dbrain/internal/core"
	"github.com/dbrainhq/dbrain/pkg/models"
)

// Notifier delivers batch and rebalance reports to an external channel.
type Notifier interface {
	NotifyBatch(report *models.BatchReport) error
	NotifyRebalance(report *models.RebalanceReport) error
}

// telegramNotifier sends reports through the Telegram Bot API.
type telegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
}

// NewTelegramNotifier creates a Notifier for one bot and chat.
func NewTelegramNotifier(cfg models.TelegramConfig) Notifier {
	return &telegramNotifier{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		baseURL:  "https://api.telegram.org",
		client:   &http.Client{},
	}
}

// NotifyBatch sends the per-container batch digest. Failure lines keep the
// backend error text untouched.
func (t *telegramNotifier) NotifyBatch(report *models.BatchReport) error {
	if report == nil || len(report.Outcomes) == 0 {
		return nil
	}
	return t.send(buildBatchMessage(report))
}

// NotifyRebalance sends the rebalance summary.
func (t *telegramNotifier) NotifyRebalance(report *models.RebalanceReport) error {
	if report == nil {
		return nil
	}
	return t.send(buildRebalanceMessage(report))
}

type telegramMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

func (t *telegramNotifier) send(text string) error {
	body, err := json.Marshal(telegramMessage{ChatID: t.chatID, Text: text})
	if err != nil {
		return fmt.Errorf("marshaling telegram message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	resp, err := t.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posting to telegram: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}

func buildBatchMessage(report *models.BatchReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Batch %s\n%s\n", report.RunDate, core.SummaryLine(report))
	if report.FatalError != "" {
		fmt.Fprintf(&b, "\nABORTED: %s\n", report.FatalError)
	}
	for _, group := range report.Groups {
		fmt.Fprintf(&b, "\n%s:\n", group.Container)
		for _, o := range group.Outcomes {
			fmt.Fprintf(&b, "  %s\n", core.OutcomeLine(o))
		}
	}
	return b.String()
}

func buildRebalanceMessage(report *models.RebalanceReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rebalance: %d containers scanned, %d moved\n", len(report.Scanned), len(report.Moves))
	for _, m := range report.Moves {
		fmt.Fprintf(&b, "  %s: %s %s -> %s\n", m.Container, m.Title, m.OldDate, m.NewDate)
	}
	for _, e := range report.Errors {
		fmt.Fprintf(&b, "  ! %s: %s\n", e.Container, e.Error)
	}
	return b.String()
}
