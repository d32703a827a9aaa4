package analyzer

import (
	"fmt"
	"strings"

	"github.com/hfdaily/paperlens/internal/model"
)

// Labels of the analyzer's fixed three-field response template. Lines are
// matched by exact prefix; everything after the label on that line is the
// value.
const (
	labelTitleZH       = "**标题中文翻译**："
	labelSummaryZH     = "**摘要中文翻译**："
	labelModelFunction = "**模型功能**："
)

// AnalysisFields holds the parsed assistant output. Empty fields trigger
// the fallback substitutions in buildResult.
type AnalysisFields struct {
	TitleZH       string
	SummaryZH     string
	ModelFunction string
}

// ParseAnalysisResponse parses the tagged-line response. Unrecognized
// lines are ignored; a response missing all three labels yields an
// all-empty result, which downstream fallbacks turn into an
// English-passthrough record. Format drift is never a hard error.
func ParseAnalysisResponse(response string) AnalysisFields {
	var fields AnalysisFields

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, labelTitleZH):
			fields.TitleZH = strings.TrimSpace(strings.TrimPrefix(line, labelTitleZH))
		case strings.HasPrefix(line, labelSummaryZH):
			fields.SummaryZH = strings.TrimSpace(strings.TrimPrefix(line, labelSummaryZH))
		case strings.HasPrefix(line, labelModelFunction):
			fields.ModelFunction = strings.TrimSpace(strings.TrimPrefix(line, labelModelFunction))
		}
	}

	return fields
}

// BuildAnalysisPrompt renders the fixed translation/analysis prompt for
// one paper.
func BuildAnalysisPrompt(paper model.CanonicalPaper) string {
	orNone := func(s string) string {
		if s == "" {
			return model.SentinelNone
		}
		return s
	}

	summary := paper.Summary
	if summary == "" || summary == model.SentinelNone {
		summary = model.SentinelNoSummary
	}

	return fmt.Sprintf(`你是一个AI论文翻译和分析专家。请基于提供的论文信息进行翻译和分析，严格按照指定格式输出结果。

## 输出格式要求：
**标题中文翻译**：[必须将英文标题翻译成准确的中文，保持技术术语的专业性]
**摘要中文翻译**：[必须将英文摘要翻译成中文，即使摘要很长也要完整翻译]
**模型功能**：[基于标题和摘要分析的主要功能和用途，50字以内]

## 重要注意事项：
- 必须严格按照上述格式输出，每行以对应标签开头
- 每个字段后面直接跟具体内容，不要使用方括号
- 标题中文翻译和摘要中文翻译是必填项，绝对不能写"暂无"或留空
- 翻译要准确专业，保持技术术语的准确性
- 模型功能要简洁明了，突出核心价值
- 如果摘要过长，请提取核心内容进行翻译，但不能省略

【待翻译和分析的论文信息】：
论文ID：%s
英文标题：%s
作者：%s
发表日期：%s
英文摘要：%s
GitHub仓库：%s
项目页面：%s

请务必完成标题和摘要的中文翻译，这是必须的任务。`,
		paper.ID,
		paper.Title,
		orNone(paper.Authors),
		orNone(paper.PublishDate),
		summary,
		orNone(paper.GithubRepo),
		orNone(paper.ProjectPage),
	)
}
