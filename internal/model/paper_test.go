package model

import (
	"reflect"
	"testing"
)

func TestPayload_UnwrapsEnvelope(t *testing.T) {
	rec := RawRecord{"paper": map[string]any{"id": "1234.5678", "title": "A Title"}}

	p := rec.Payload()
	if p.String("id") != "1234.5678" {
		t.Errorf("Expected unwrapped id, got %q", p.String("id"))
	}
}

func TestPayload_TopLevelPassthrough(t *testing.T) {
	rec := RawRecord{"id": "1234.5678"}

	if rec.Payload().String("id") != "1234.5678" {
		t.Error("Expected top-level record returned as-is")
	}
}

func TestString_PriorityOrder(t *testing.T) {
	rec := RawRecord{"publishedAt": "", "publishedDate": "2025-07-31", "published": "2024-01-01"}

	if got := rec.String("publishedAt", "publishedDate", "published"); got != "2025-07-31" {
		t.Errorf("Expected first non-empty candidate, got %q", got)
	}
}

func TestStrings_AuthorShapes(t *testing.T) {
	tests := []struct {
		name string
		rec  RawRecord
		want []string
	}{
		{"objects", RawRecord{"authors": []any{map[string]any{"name": "Jane Doe"}, map[string]any{"name": "Bob"}}}, []string{"Jane Doe", "Bob"}},
		{"strings", RawRecord{"authors": []any{"Jane Doe", "Bob"}}, []string{"Jane Doe", "Bob"}},
		{"single string", RawRecord{"authors": "Jane Doe"}, []string{"Jane Doe"}},
		{"missing", RawRecord{}, nil},
		{"empty entries", RawRecord{"authors": []any{map[string]any{"name": ""}, ""}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.Strings("authors"); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Strings() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeTitle(t *testing.T) {
	if got := NormalizeTitle("A Title\nSplit Across Lines\n"); got != "A Title Split Across Lines" {
		t.Errorf("NormalizeTitle() = %q", got)
	}
}

func TestJoinAuthors(t *testing.T) {
	if got := JoinAuthors([]string{"Jane Doe", "Bob"}); got != "Jane Doe, Bob" {
		t.Errorf("JoinAuthors() = %q", got)
	}
	if got := JoinAuthors(nil); got != SentinelUnknownAuthors {
		t.Errorf("Expected unknown-authors sentinel, got %q", got)
	}
}

func TestTruncateRunes_MultiByte(t *testing.T) {
	s := "论文摘要内容"
	if got := TruncateRunes(s, 3); got != "论文摘" {
		t.Errorf("TruncateRunes() = %q", got)
	}
	if got := TruncateRunes(s, 10); got != s {
		t.Errorf("Expected short string unchanged, got %q", got)
	}
}

func TestSuccessRate(t *testing.T) {
	if got := (BatchStats{}).SuccessRate(); got != "0.0%" {
		t.Errorf("Empty batch rate = %q", got)
	}
	if got := (BatchStats{Processed: 3, Succeeded: 2}).SuccessRate(); got != "66.7%" {
		t.Errorf("Rate = %q", got)
	}
	if got := (BatchStats{Processed: 4, Succeeded: 4}).SuccessRate(); got != "100.0%" {
		t.Errorf("Rate = %q", got)
	}
}
