package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/notexe/reminder-tracker/internal/config"
)

// DingTalk posts the markdown digest to a DingTalk robot webhook.
type DingTalk struct {
	cfg    config.DingTalkConfig
	client *resty.Client
	now    func() time.Time
}

// NewDingTalk creates a DingTalk notifier.
func NewDingTalk(cfg config.DingTalkConfig) *DingTalk {
	return &DingTalk{
		cfg: cfg,
		client: resty.New().
			SetHeader("Content-Type", "application/json").
			SetTimeout(30 * time.Second),
		now: time.Now,
	}
}

func (d *DingTalk) Name() string { return config.ChannelDingTalk }

type dingTalkMarkdown struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type dingTalkRequest struct {
	MsgType  string           `json:"msgtype"`
	Markdown dingTalkMarkdown `json:"markdown"`
}

type dingTalkResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// Send posts msg.Markdown. The robot accepts the message only when it
// answers errcode 0.
func (d *DingTalk) Send(ctx context.Context, msg Message) error {
	if d.cfg.Webhook == "" {
		return fmt.Errorf("dingtalk: %w", ErrNotConfigured)
	}

	payload := dingTalkRequest{
		MsgType:  "markdown",
		Markdown: dingTalkMarkdown{Title: msg.Subject, Text: msg.Markdown},
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(d.signedURL())
	if err != nil {
		return fmt.Errorf("failed to send dingtalk message: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("dingtalk webhook returned %s", resp.Status())
	}

	var result dingTalkResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return fmt.Errorf("failed to parse dingtalk response: %w", err)
	}
	if result.ErrCode != 0 {
		return fmt.Errorf("dingtalk API error %d: %s", result.ErrCode, result.ErrMsg)
	}
	return nil
}

func (d *DingTalk) signedURL() string {
	if d.cfg.Secret == "" {
		return d.cfg.Webhook
	}
	ts := d.now().UnixMilli()
	sep := "&"
	if !strings.Contains(d.cfg.Webhook, "?") {
		sep = "?"
	}
	return fmt.Sprintf("%s%stimestamp=%d&sign=%s", d.cfg.Webhook, sep, ts, Sign(d.cfg.Secret, ts))
}

// Sign computes the robot signature for a millisecond timestamp: the
// base64 HMAC-SHA256 of "timestamp\nsecret" keyed by secret, query escaped.
func Sign(secret string, timestampMillis int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestampMillis, 10) + "\n" + secret))
	return url.QueryEscape(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}
