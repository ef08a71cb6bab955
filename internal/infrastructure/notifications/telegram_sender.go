package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/careband/postop-triage/pkg/config"
)

// TelegramSender sends staff alerts via the Telegram Bot API
type TelegramSender struct {
	botToken   string
	chatID     string
	httpClient *http.Client
	baseURL    string
}

// NewTelegramSender creates a new Telegram sender
func NewTelegramSender(cfg *config.TelegramConfig) (*TelegramSender, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set")
	}

	return &TelegramSender{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: "https://api.telegram.org",
	}, nil
}

// telegramSendMessage is the sendMessage request body
type telegramSendMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// telegramResponse is the Bot API response envelope
type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

// SendAlert sends a plain-text alert to the configured chat
func (t *TelegramSender) SendAlert(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)

	jsonData, err := json.Marshal(telegramSendMessage{
		ChatID:                t.chatID,
		Text:                  text,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Telegram API error (status %d): %s", resp.StatusCode, string(body))
	}

	var tgResp telegramResponse
	if err := json.Unmarshal(body, &tgResp); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !tgResp.OK {
		return fmt.Errorf("Telegram API rejected message: %s", tgResp.Description)
	}

	return nil
}
