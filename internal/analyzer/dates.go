package analyzer

import (
	"regexp"
	"strings"

	"github.com/hfdaily/paperlens/internal/model"
)

var isoDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// FormatPublishDate normalizes an upstream publish date to YYYY-MM-DD.
// Accepted inputs: an ISO-8601 timestamp (truncated at the time
// separator), an already-correct date (passthrough), or any string
// containing a YYYY-MM-DD substring. Anything else is returned unchanged;
// empty or sentinel input yields the sentinel.
func FormatPublishDate(raw string) string {
	if raw == "" || raw == model.SentinelNone {
		return model.SentinelNone
	}

	if i := strings.Index(raw, "T"); i >= 0 {
		return raw[:i]
	}

	if len(raw) == 10 && strings.Count(raw, "-") == 2 {
		return raw
	}

	if match := isoDatePattern.FindString(raw); match != "" {
		return match
	}

	return raw
}
