package model

import "strings"

// Sentinel values substituted when a field is legitimately absent. Display
// fields carry these instead of empty strings so downstream rendering never
// has to special-case missing data.
const (
	SentinelNone           = "暂无"
	SentinelNoSummary      = "无摘要信息"
	SentinelUnknownAuthors = "未知作者"
)

// ArxivAbsURL is the URL template applied when a record carries no URL of
// its own.
const ArxivAbsURL = "https://arxiv.org/abs/"

// RawRecord is one externally-sourced metadata record. Shape varies at
// runtime (envelope vs. top-level, authors as objects, strings, or a single
// string), so every field must be probed defensively.
type RawRecord map[string]any

// Payload unwraps the record envelope. The upstream API nests the actual
// paper under a "paper" key; older dumps put the fields at the top level.
func (r RawRecord) Payload() RawRecord {
	if inner, ok := r["paper"].(map[string]any); ok {
		return RawRecord(inner)
	}
	return r
}

// String probes candidate field names in priority order and returns the
// first non-empty string value.
func (r RawRecord) String(keys ...string) string {
	for _, key := range keys {
		if v, ok := r[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Strings coerces a field into a string list, tolerating the three author
// shapes seen upstream: a list of {name: ...} objects, a list of strings,
// or a single string.
func (r RawRecord) Strings(key string) []string {
	var out []string
	switch v := r[key].(type) {
	case []any:
		for _, item := range v {
			switch it := item.(type) {
			case map[string]any:
				if name, ok := it["name"].(string); ok && name != "" {
					out = append(out, name)
				}
			case string:
				if it != "" {
					out = append(out, it)
				}
			}
		}
	case string:
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// CanonicalPaper is the cleaned representation produced by the cleaner and
// consumed by the analyzer.
type CanonicalPaper struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Translation   string `json:"translation"`
	URL           string `json:"url"`
	Authors       string `json:"authors"`
	PublishDate   string `json:"publish_date"`
	Summary       string `json:"summary"`
	GithubRepo    string `json:"github_repo"`
	ProjectPage   string `json:"project_page"`
	ModelFunction string `json:"model_function"`
}

// NormalizeTitle collapses embedded newlines and surrounding whitespace.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
}

// JoinAuthors renders an author list as a display string, falling back to
// the unknown-authors sentinel.
func JoinAuthors(names []string) string {
	if len(names) == 0 {
		return SentinelUnknownAuthors
	}
	return strings.Join(names, ", ")
}

// TruncateRunes shortens s to at most n runes without splitting a
// character.
func TruncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
