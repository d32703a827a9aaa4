package cleaner

import (
	"context"
	"testing"

	"github.com/hfdaily/paperlens/internal/model"
	"github.com/hfdaily/paperlens/internal/store"
)

func TestExtractPaper_Envelope(t *testing.T) {
	rec := model.RawRecord{
		"paper": map[string]any{
			"id":      "1234.5678",
			"title":   "A Title\n",
			"authors": []any{map[string]any{"name": "Jane Doe"}},
		},
	}

	paper, ok := ExtractPaper(rec)
	if !ok {
		t.Fatal("Expected record to be extracted")
	}
	if paper.ID != "1234.5678" {
		t.Errorf("ID = %q", paper.ID)
	}
	if paper.Title != "A Title" {
		t.Errorf("Title = %q", paper.Title)
	}
	if paper.Translation != "A Title" {
		t.Errorf("Translation should default to the title, got %q", paper.Translation)
	}
	if paper.Authors != "Jane Doe" {
		t.Errorf("Authors = %q", paper.Authors)
	}
	if paper.URL != "https://arxiv.org/abs/1234.5678" {
		t.Errorf("URL = %q", paper.URL)
	}
}

func TestExtractPaper_MissingRequired(t *testing.T) {
	if _, ok := ExtractPaper(model.RawRecord{"paper": map[string]any{"title": "No ID"}}); ok {
		t.Error("Expected record without id to be dropped")
	}
	if _, ok := ExtractPaper(model.RawRecord{"paper": map[string]any{"id": "1"}}); ok {
		t.Error("Expected record without title to be dropped")
	}
}

func TestExtractPaper_NoAuthorsSentinel(t *testing.T) {
	paper, ok := ExtractPaper(model.RawRecord{"id": "1", "title": "T"})
	if !ok {
		t.Fatal("Expected record to be extracted")
	}
	if paper.Authors != model.SentinelUnknownAuthors {
		t.Errorf("Authors = %q, want unknown-authors sentinel", paper.Authors)
	}
}

func TestExtractPaper_ExplicitURLAndDates(t *testing.T) {
	paper, ok := ExtractPaper(model.RawRecord{
		"id":            "1",
		"title":         "T",
		"url":           "https://example.com/p/1",
		"publishedDate": "2025-07-31",
	})
	if !ok {
		t.Fatal("Expected record to be extracted")
	}
	if paper.URL != "https://example.com/p/1" {
		t.Errorf("Expected explicit url kept, got %q", paper.URL)
	}
	if paper.PublishDate != "2025-07-31" {
		t.Errorf("PublishDate = %q", paper.PublishDate)
	}
}

func TestClean_RuleBased(t *testing.T) {
	st := store.New(t.TempDir())
	date := "2025-07-31"
	raw := `[
		{"paper":{"id":"1","title":"First"}},
		{"paper":{"title":"No ID, dropped"}},
		{"paper":{"id":"2","title":"Second","summary":"About models."}}
	]`
	if err := st.SaveRawRecords(date, []byte(raw)); err != nil {
		t.Fatalf("SaveRawRecords failed: %v", err)
	}

	cfg := model.DefaultConfig()
	cfg.Output.Silent = true
	c := New(cfg, st)

	if !c.Clean(context.Background(), date) {
		t.Fatal("Expected Clean to succeed")
	}

	papers, err := st.LoadCleaned(date)
	if err != nil {
		t.Fatalf("LoadCleaned failed: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("Expected 2 cleaned papers, got %d", len(papers))
	}
	if papers[1].Summary != "About models." {
		t.Errorf("Summary = %q", papers[1].Summary)
	}
}

func TestClean_MissingMetadata(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Output.Silent = true
	c := New(cfg, store.New(t.TempDir()))

	if c.Clean(context.Background(), "2025-07-31") {
		t.Error("Expected Clean to report failure for missing metadata")
	}
}

func TestNew_AssistantClientPaced(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Output.Silent = true
	cfg.LLM.Provider = "openai"
	cfg.LLM.APIKey = "test-key"
	cfg.LLM.UseAIClean = true

	c := New(cfg, store.New(t.TempDir()))
	if !c.useAI || c.client == nil {
		t.Fatal("Expected assistant cleaning enabled")
	}
	if c.client.Limiter() == nil {
		t.Error("Expected request pacing wired from config")
	}
}

func TestMergeCleaned(t *testing.T) {
	base := []model.CanonicalPaper{
		{ID: "1", Title: "First", Translation: "First", Authors: model.SentinelUnknownAuthors},
		{ID: "2", Title: "Second", Translation: "Second", PublishDate: "2025-07-30"},
	}
	entries := []CleanedEntry{
		{ID: "1", Translation: "第一篇", Authors: "Jane Doe", PublishDate: "2025-07-31"},
		{ID: "9", Translation: "不存在的条目"},
	}

	merged := MergeCleaned(base, entries)
	if merged[0].Translation != "第一篇" || merged[0].Authors != "Jane Doe" {
		t.Errorf("Expected entry fields overlaid, got %+v", merged[0])
	}
	if merged[0].Title != "First" {
		t.Errorf("Title must come from the baseline, got %q", merged[0].Title)
	}
	if merged[1].Translation != "Second" || merged[1].PublishDate != "2025-07-30" {
		t.Errorf("Expected unmatched paper untouched, got %+v", merged[1])
	}
	if len(merged) != 2 {
		t.Errorf("Unknown entry ids must not add papers, got %d", len(merged))
	}
}
