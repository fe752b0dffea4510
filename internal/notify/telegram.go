package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/notexe/reminder-tracker/internal/config"
)

// Telegram sends messages via Telegram Bot API.
type Telegram struct {
	botToken string
	chatID   string
	client   *resty.Client
}

// NewTelegram creates a new Telegram sender.
func NewTelegram(cfg config.TelegramConfig) *Telegram {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &Telegram{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		client: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetTimeout(30 * time.Second),
	}
}

func (t *Telegram) Name() string { return config.ChannelTelegram }

type telegramSendRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// Send posts the text digest to the configured chat. No parse mode is set
// so reminder names never break Telegram's markup parser.
func (t *Telegram) Send(ctx context.Context, msg Message) error {
	if t.botToken == "" || t.chatID == "" {
		return fmt.Errorf("telegram: %w", ErrNotConfigured)
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetPathParam("token", t.botToken).
		SetBody(telegramSendRequest{ChatID: t.chatID, Text: msg.Text}).
		Post("/bot{token}/sendMessage")
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	var tgResp telegramResponse
	if err := json.Unmarshal(resp.Body(), &tgResp); err != nil {
		return fmt.Errorf("failed to parse telegram response (%s): %w", resp.Status(), err)
	}
	if !tgResp.OK {
		return fmt.Errorf("telegram API error: %s", tgResp.Description)
	}
	return nil
}
