package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hfdaily/paperlens/internal/model"
)

func TestFeishu_Send_Success(t *testing.T) {
	var received feishuPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected JSON content type, got %s", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("Decode payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(feishuResponse{Code: 0, Msg: "success"})
	}))
	defer server.Close()

	f := NewFeishu(model.NotifyConfig{WebhookURL: server.URL}, "error")
	err := f.Send(context.Background(), "📄 论文日报 2025-07-31", "**日期**: 2025-07-31", StatusSuccess)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if received.MsgType != "interactive" {
		t.Errorf("MsgType = %q", received.MsgType)
	}
	if received.Card.Header.Template != "green" {
		t.Errorf("Template = %q, want green", received.Card.Header.Template)
	}
	if received.Card.Header.Title.Content != "📄 论文日报 2025-07-31" {
		t.Errorf("Title = %q", received.Card.Header.Title.Content)
	}
}

func TestFeishu_Send_NoWebhookIsNoOp(t *testing.T) {
	f := NewFeishu(model.NotifyConfig{}, "error")
	if err := f.Send(context.Background(), "title", "content", StatusInfo); err != nil {
		t.Errorf("Expected nil for unconfigured webhook, got %v", err)
	}
}

func TestFeishu_Send_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(feishuResponse{Code: 19001, Msg: "param invalid"})
	}))
	defer server.Close()

	f := NewFeishu(model.NotifyConfig{WebhookURL: server.URL}, "error")
	if err := f.Send(context.Background(), "title", "content", StatusInfo); err == nil {
		t.Error("Expected error for non-zero response code")
	}
}

func TestFeishu_Send_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := NewFeishu(model.NotifyConfig{WebhookURL: server.URL}, "error")
	if err := f.Send(context.Background(), "title", "content", StatusInfo); err == nil {
		t.Error("Expected error for HTTP failure status")
	}
}

func TestTemplateFor(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusSuccess, "green"},
		{StatusFailed, "red"},
		{StatusInfo, "blue"},
		{Status("ok"), "green"},
		{Status("error"), "red"},
		{Status("anything"), "blue"},
	}
	for _, tt := range tests {
		if got := templateFor(tt.status); got != tt.want {
			t.Errorf("templateFor(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}
