package analyzer

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hfdaily/paperlens/internal/llm"
	"github.com/hfdaily/paperlens/internal/logger"
	"github.com/hfdaily/paperlens/internal/model"
	"github.com/hfdaily/paperlens/internal/store"
)

// mockProvider scripts assistant responses for analyzer tests.
type mockProvider struct {
	response string
	err      error
	calls    int
	onCall   func()
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) IsAvailable(ctx context.Context) bool { return true }

func (m *mockProvider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	m.calls++
	if m.onCall != nil {
		m.onCall()
	}
	return m.response, m.err
}

func newTestAnalyzer(st *store.Store, provider llm.Provider) *Analyzer {
	a := &Analyzer{
		store:        st,
		silent:       true,
		log:          logger.Silent("analyzer"),
		callDeadline: defaultCallDeadline,
		maxAttempts:  defaultMaxAttempts,
		attemptDelay: defaultAttemptDelay,
	}
	if provider != nil {
		a.client = llm.NewRetryableClient(provider, 1, time.Millisecond, nil)
		a.useAI = true
	}
	return a
}

const taggedResponse = `**标题中文翻译**：测试论文标题
**摘要中文翻译**：这是摘要的中文翻译。
**模型功能**：用于测试的模型`

func TestAnalyzeSingle_WithoutAssistant(t *testing.T) {
	a := newTestAnalyzer(store.New(t.TempDir()), nil)

	paper := model.CanonicalPaper{
		ID:          "2507.1234",
		Title:       "A Paper",
		Translation: "一篇论文",
		URL:         "https://arxiv.org/abs/2507.1234",
		Summary:     strings.Repeat("x", 500),
	}

	result := a.AnalyzeSingle(context.Background(), paper)
	if result == nil {
		t.Fatal("Expected a basic result without the assistant")
	}
	if result.TitleZH != "一篇论文" {
		t.Errorf("TitleZH = %q, want the cleaner's translation", result.TitleZH)
	}
	if result.ModelFunction != model.SentinelNone {
		t.Errorf("ModelFunction = %q, want sentinel", result.ModelFunction)
	}
	want := strings.Repeat("x", 200) + "..."
	if result.SummaryZH != want {
		t.Errorf("SummaryZH = %q, want 200-rune truncation with ellipsis", result.SummaryZH)
	}
}

func TestAnalyzeSingle_ParsesAssistantResponse(t *testing.T) {
	provider := &mockProvider{response: taggedResponse}
	a := newTestAnalyzer(store.New(t.TempDir()), provider)

	result := a.AnalyzeSingle(context.Background(), model.CanonicalPaper{
		ID: "1", Title: "T", Summary: "S",
	})
	if result == nil {
		t.Fatal("Expected a result")
	}
	if result.TitleZH != "测试论文标题" {
		t.Errorf("TitleZH = %q", result.TitleZH)
	}
	if result.SummaryZH != "这是摘要的中文翻译。" {
		t.Errorf("SummaryZH = %q", result.SummaryZH)
	}
	if result.ModelFunction != "用于测试的模型" {
		t.Errorf("ModelFunction = %q", result.ModelFunction)
	}
	if provider.calls != 1 {
		t.Errorf("Expected a single call, got %d", provider.calls)
	}
}

func TestAnalyzeSingle_UnparsableResponseFallsBack(t *testing.T) {
	provider := &mockProvider{response: "好的，我来分析这篇论文。"}
	a := newTestAnalyzer(store.New(t.TempDir()), provider)

	result := a.AnalyzeSingle(context.Background(), model.CanonicalPaper{
		ID: "1", Title: "English Title", Summary: "Short summary.",
	})
	if result == nil {
		t.Fatal("Expected a fallback result, not a failure")
	}
	if result.TitleZH != "English Title" {
		t.Errorf("TitleZH = %q, want English passthrough", result.TitleZH)
	}
	if result.SummaryZH != "Short summary." {
		t.Errorf("SummaryZH = %q", result.SummaryZH)
	}
	if result.ModelFunction != model.SentinelNone {
		t.Errorf("ModelFunction = %q, want sentinel", result.ModelFunction)
	}
}

func TestAnalyzeBatch_PersistsEachResult(t *testing.T) {
	st := store.New(t.TempDir())
	a := newTestAnalyzer(st, &mockProvider{response: taggedResponse})
	date := "2025-07-31"

	papers := []model.CanonicalPaper{
		{ID: "1", Title: "First"},
		{ID: "2", Title: "Second"},
	}

	results, stats := a.AnalyzeBatch(context.Background(), papers, date)
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if stats.Succeeded != 2 || stats.Failed != 0 || stats.Skipped != 0 {
		t.Errorf("Unexpected stats: %+v", stats)
	}

	persisted, err := st.LoadReport(date)
	if err != nil {
		t.Fatalf("LoadReport failed: %v", err)
	}
	if len(persisted) != 2 {
		t.Fatalf("Expected 2 persisted results, got %d", len(persisted))
	}
}

func TestAnalyzeBatch_ResumeSkipsExisting(t *testing.T) {
	st := store.New(t.TempDir())
	date := "2025-07-31"
	_ = st.AppendResult(date, model.AnalysisResult{ID: "1", TitleZH: "已分析"})

	provider := &mockProvider{response: taggedResponse}
	a := newTestAnalyzer(st, provider)

	papers := []model.CanonicalPaper{
		{ID: "1", Title: "First"},
		{ID: "2", Title: "Second"},
	}

	_, stats := a.AnalyzeBatch(context.Background(), papers, date)
	if stats.Skipped != 1 || stats.Processed != 1 || stats.Succeeded != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if provider.calls != 1 {
		t.Errorf("Expected the assistant called once, got %d", provider.calls)
	}

	// A rerun of the completed day touches nothing.
	_, stats = a.AnalyzeBatch(context.Background(), papers, date)
	if stats.Skipped != 2 || stats.Processed != 0 {
		t.Errorf("Expected full skip on rerun, got %+v", stats)
	}
	if provider.calls != 1 {
		t.Errorf("Expected no further calls on rerun, got %d", provider.calls)
	}
}

func TestAnalyzeBatch_FailureDoesNotAbort(t *testing.T) {
	st := store.New(t.TempDir())
	date := "2025-07-31"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The provider fails every call and cancels the context so the
	// analyzer's retry loop exits without sitting out the delays.
	provider := &mockProvider{err: errors.New("boom")}
	provider.onCall = cancel
	a := newTestAnalyzer(st, provider)

	papers := []model.CanonicalPaper{{ID: "1", Title: "Only"}}

	results, stats := a.AnalyzeBatch(ctx, papers, date)
	if len(results) != 0 {
		t.Fatalf("Expected no results, got %d", len(results))
	}
	if stats.Processed != 1 || stats.Failed != 1 || stats.Succeeded != 0 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if stats.SuccessRate() != "0.0%" {
		t.Errorf("SuccessRate = %q", stats.SuccessRate())
	}
}

func TestAnalyzeBatch_Empty(t *testing.T) {
	a := newTestAnalyzer(store.New(t.TempDir()), nil)

	results, stats := a.AnalyzeBatch(context.Background(), nil, "2025-07-31")
	if len(results) != 0 || stats.Total != 0 {
		t.Errorf("Expected empty batch outcome, got %d results, %+v", len(results), stats)
	}
}

func TestNew_WiresAssistantPacing(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Output.Silent = true
	cfg.LLM.Provider = "openai"
	cfg.LLM.APIKey = "test-key"

	a := New(cfg, store.New(t.TempDir()))
	if !a.UsesAssistant() {
		t.Fatal("Expected assistant enabled")
	}
	if a.client.Limiter() == nil {
		t.Error("Expected request pacing wired from config")
	}

	cfg.LLM.RequestsPerSecond = 0
	a = New(cfg, store.New(t.TempDir()))
	if a.client.Limiter() != nil {
		t.Error("Expected pacing disabled for zero rate")
	}
}

// stuckProvider never returns before its release channel closes.
type stuckProvider struct {
	release chan struct{}
	calls   int32
}

func (p *stuckProvider) Name() string { return "stuck" }

func (p *stuckProvider) IsAvailable(ctx context.Context) bool { return true }

func (p *stuckProvider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	atomic.AddInt32(&p.calls, 1)
	<-p.release
	return "", errors.New("released")
}

func TestChatWithDeadline_HangTripsDeadline(t *testing.T) {
	provider := &stuckProvider{release: make(chan struct{})}
	defer close(provider.release)

	a := newTestAnalyzer(store.New(t.TempDir()), provider)
	a.callDeadline = 20 * time.Millisecond

	_, err := a.chatWithDeadline(context.Background(), llm.UserText("hi"))
	if !errors.Is(err, ErrCallDeadline) {
		t.Fatalf("Expected ErrCallDeadline, got %v", err)
	}
}

func TestAnalyzeSingle_HungCallsRetryThenFail(t *testing.T) {
	provider := &stuckProvider{release: make(chan struct{})}
	defer close(provider.release)

	a := newTestAnalyzer(store.New(t.TempDir()), provider)
	a.callDeadline = 20 * time.Millisecond
	a.attemptDelay = time.Millisecond

	result := a.AnalyzeSingle(context.Background(), model.CanonicalPaper{ID: "1", Title: "T"})
	if result != nil {
		t.Fatalf("Expected nil after every attempt hit the deadline, got %+v", result)
	}
	if got := atomic.LoadInt32(&provider.calls); got != defaultMaxAttempts {
		t.Errorf("Expected %d abandoned calls, got %d", defaultMaxAttempts, got)
	}
}

func TestFallbackSummaryZH(t *testing.T) {
	if got := fallbackSummaryZH(""); got != model.SentinelNoSummary {
		t.Errorf("Empty summary fallback = %q", got)
	}
	if got := fallbackSummaryZH(model.SentinelNone); got != model.SentinelNoSummary {
		t.Errorf("Sentinel summary fallback = %q", got)
	}
	if got := fallbackSummaryZH("short"); got != "short" {
		t.Errorf("Short summary fallback = %q", got)
	}
	long := strings.Repeat("字", 300)
	want := strings.Repeat("字", 200) + "..."
	if got := fallbackSummaryZH(long); got != want {
		t.Errorf("Long summary fallback = %q", got)
	}
}
