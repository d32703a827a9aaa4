package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hfdaily/paperlens/internal/logger"
	"github.com/hfdaily/paperlens/internal/model"
)

// Status tags a notification for color mapping on the receiving side.
type Status string

const (
	StatusInfo    Status = "info"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Notifier posts pipeline outcome messages to a chat channel.
type Notifier interface {
	Send(ctx context.Context, title, content string, status Status) error
}

// Feishu posts interactive card messages to a Feishu/Lark webhook. With no
// webhook URL configured every Send is a logged no-op, so the pipeline can
// always call it unconditionally.
type Feishu struct {
	webhookURL string
	httpClient *http.Client
	log        logger.Logger
}

// NewFeishu creates the webhook notifier.
func NewFeishu(cfg model.NotifyConfig, logLevel string) *Feishu {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Feishu{
		webhookURL: cfg.WebhookURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.New("notify", logLevel),
	}
}

// Card message structures, per the Feishu interactive-card schema.
type feishuPayload struct {
	MsgType string     `json:"msg_type"`
	Card    feishuCard `json:"card"`
}

type feishuCard struct {
	Config   feishuCardConfig `json:"config"`
	Header   feishuHeader     `json:"header"`
	Elements []any            `json:"elements"`
}

type feishuCardConfig struct {
	WideScreenMode bool `json:"wide_screen_mode"`
}

type feishuHeader struct {
	Title    feishuText `json:"title"`
	Template string     `json:"template"`
}

type feishuText struct {
	Tag     string `json:"tag"`
	Content string `json:"content"`
}

type feishuDiv struct {
	Tag  string     `json:"tag"`
	Text feishuText `json:"text"`
}

type feishuNote struct {
	Tag      string       `json:"tag"`
	Elements []feishuText `json:"elements"`
}

type feishuResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Send posts one card. Status maps to the header color: success→green,
// failed→red, anything else→blue.
func (f *Feishu) Send(ctx context.Context, title, content string, status Status) error {
	if f.webhookURL == "" {
		f.log.Warnf("webhook URL not configured, skipping notification: %s", title)
		return nil
	}

	payload := feishuPayload{
		MsgType: "interactive",
		Card: feishuCard{
			Config: feishuCardConfig{WideScreenMode: true},
			Header: feishuHeader{
				Title:    feishuText{Tag: "plain_text", Content: title},
				Template: templateFor(status),
			},
			Elements: []any{
				feishuDiv{
					Tag:  "div",
					Text: feishuText{Tag: "lark_md", Content: content},
				},
				feishuNote{
					Tag: "note",
					Elements: []feishuText{
						{Tag: "plain_text", Content: "Time: " + time.Now().Format("2006-01-02 15:04:05")},
					},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal card: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read webhook response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook status %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp feishuResponse
	if err := json.Unmarshal(respBody, &apiResp); err == nil && apiResp.Code != 0 {
		return fmt.Errorf("webhook API error %d: %s", apiResp.Code, apiResp.Msg)
	}

	f.log.Infof("notification sent: %s", title)
	return nil
}

func templateFor(status Status) string {
	switch strings.ToLower(string(status)) {
	case "success", "ok", "pass":
		return "green"
	case "failed", "error", "fail":
		return "red"
	default:
		return "blue"
	}
}
