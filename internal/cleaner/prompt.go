package cleaner

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/hfdaily/paperlens/internal/model"
)

// Caps applied when compressing a raw batch into one assistant prompt.
// They keep the prompt inside the provider's context window.
const (
	maxPromptAuthors  = 8
	maxPromptKeywords = 15
	maxPromptSummary  = 800
	maxPromptRecords  = 15
)

// compressedRecord is the reduced per-paper view embedded in the cleaning
// prompt.
type compressedRecord struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary,omitempty"`
	AISummary   string   `json:"ai_summary,omitempty"`
	AIKeywords  []string `json:"ai_keywords,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	PublishedAt string   `json:"publishedAt,omitempty"`
	GithubRepo  string   `json:"githubRepo,omitempty"`
	ProjectPage string   `json:"projectPage,omitempty"`
	URL         string   `json:"url"`
}

// CompressRecords reduces a raw batch to the fields the assistant needs,
// applying the prompt-size caps. Records without id and title are dropped.
func CompressRecords(records []model.RawRecord) []compressedRecord {
	out := make([]compressedRecord, 0, len(records))

	for _, rec := range records {
		p := rec.Payload()

		id := p.String("id")
		title := model.NormalizeTitle(p.String("title"))
		if id == "" || title == "" {
			continue
		}

		summary := model.TruncateRunes(strings.TrimSpace(p.String("summary")), maxPromptSummary)

		keywords := p.Strings("ai_keywords")
		if len(keywords) > maxPromptKeywords {
			keywords = keywords[:maxPromptKeywords]
		}

		authors := p.Strings("authors")
		if len(authors) > maxPromptAuthors {
			authors = authors[:maxPromptAuthors]
		}

		url := p.String("url")
		if url == "" {
			url = model.ArxivAbsURL + id
		}

		out = append(out, compressedRecord{
			ID:          id,
			Title:       title,
			Summary:     summary,
			AISummary:   strings.TrimSpace(p.String("ai_summary")),
			AIKeywords:  keywords,
			Authors:     authors,
			PublishedAt: p.String("publishedAt"),
			GithubRepo:  p.String("githubRepo"),
			ProjectPage: p.String("projectPage"),
			URL:         url,
		})
	}

	return out
}

// BuildCleaningPrompt renders the batch-cleaning prompt over a compressed
// sample of at most maxPromptRecords records. Returns the prompt and the
// sample size.
func BuildCleaningPrompt(records []model.RawRecord) (string, int, error) {
	compressed := CompressRecords(records)
	if len(compressed) > maxPromptRecords {
		compressed = compressed[:maxPromptRecords]
	}
	if len(compressed) == 0 {
		return "", 0, nil
	}

	sample, err := json.MarshalIndent(compressed, "", "  ")
	if err != nil {
		return "", 0, fmt.Errorf("marshal sample: %w", err)
	}

	prompt := fmt.Sprintf(`请从以下论文数据中提取结构化信息。数据已经过预处理，包含了论文的核心信息：

论文数据：
%s

请按以下格式输出每篇论文的信息：
1. 论文题目：[英文标题]
   中文翻译：[基于标题、摘要和关键词生成准确的中文翻译]
   论文ID：[arXiv ID]
   作者：[作者姓名，用逗号分隔]
   发表日期：[YYYY-MM-DD格式]

注意事项：
- 利用提供的summary、ai_summary和ai_keywords字段来更好地理解论文内容
- 中文翻译要准确反映论文的核心内容和技术特点
- 每个字段后面直接跟具体内容，不要使用方括号
- 请确保提取所有论文的信息，按照上述格式逐一列出`, string(sample))

	return prompt, len(compressed), nil
}

// CleanedEntry is one paper block parsed out of the assistant's cleaning
// response.
type CleanedEntry struct {
	Title       string
	Translation string
	ID          string
	Authors     string
	PublishDate string
}

// Labels of the numbered-block response format. The grammar is fixed by
// the prompt above; lines outside it are ignored.
const (
	labelCleanTitle       = "论文题目"
	labelCleanTranslation = "中文翻译"
	labelCleanID          = "论文ID"
	labelCleanAuthors     = "作者"
	labelCleanDate        = "发表日期"
)

var itemNumberPrefix = regexp.MustCompile(`^\d+[.、]\s*`)

// ParseCleaningResponse parses the assistant's numbered-block output. A
// new entry opens at each 论文题目 line; entries without a paper id are
// discarded since the id is the merge key. Parsing is lenient: unknown
// lines and format drift reduce the parsed set rather than failing.
func ParseCleaningResponse(response string) []CleanedEntry {
	var entries []CleanedEntry
	var cur *CleanedEntry

	flush := func() {
		if cur != nil && cur.ID != "" {
			entries = append(entries, *cur)
		}
		cur = nil
	}

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		line = itemNumberPrefix.ReplaceAllString(line, "")

		label, value, ok := splitLabeled(line)
		if !ok {
			continue
		}

		switch label {
		case labelCleanTitle:
			flush()
			cur = &CleanedEntry{Title: value}
		case labelCleanTranslation:
			if cur != nil {
				cur.Translation = value
			}
		case labelCleanID:
			if cur != nil {
				cur.ID = value
			}
		case labelCleanAuthors:
			if cur != nil {
				cur.Authors = value
			}
		case labelCleanDate:
			if cur != nil {
				cur.PublishDate = value
			}
		}
	}
	flush()

	return entries
}

// splitLabeled splits a "标签：值" line, accepting both full-width and
// ASCII colons and stripping any bracket placeholders the model echoed.
func splitLabeled(line string) (label, value string, ok bool) {
	for _, sep := range []string{"：", ":"} {
		if i := strings.Index(line, sep); i > 0 {
			label = strings.TrimSpace(line[:i])
			value = strings.TrimSpace(line[i+len(sep):])
			value = strings.Trim(value, "[]")
			return label, strings.TrimSpace(value), true
		}
	}
	return "", "", false
}
