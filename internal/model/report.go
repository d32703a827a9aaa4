package model

import "fmt"

// AnalysisResult is the analyzer's output for one paper. TitleZH and
// SummaryZH are never empty: when the assistant omits them the analyzer
// substitutes the English originals (summary truncated to 200 runes).
type AnalysisResult struct {
	ID            string `json:"id"`
	TitleEN       string `json:"title_en"`
	TitleZH       string `json:"title_zh"`
	URL           string `json:"url"`
	Authors       string `json:"authors"`
	PublishDate   string `json:"publish_date"`
	SummaryEN     string `json:"summary_en"`
	SummaryZH     string `json:"summary_zh"`
	GithubRepo    string `json:"github_repo"`
	ProjectPage   string `json:"project_page"`
	ModelFunction string `json:"model_function"`
}

// DailyReport aggregates one day's analysis results.
type DailyReport struct {
	Date        string           `json:"date"`
	TotalPapers int              `json:"total_papers"`
	Results     []AnalysisResult `json:"analysis_results"`
}

// NewDailyReport builds the aggregate for a completed analyzer pass.
func NewDailyReport(date string, results []AnalysisResult) *DailyReport {
	return &DailyReport{
		Date:        date,
		TotalPapers: len(results),
		Results:     results,
	}
}

// BatchStats tracks per-item outcomes across one analyzer batch. All items
// are accounted for: Total == Skipped + Processed and
// Processed == Succeeded + Failed.
type BatchStats struct {
	Total     int `json:"total"`
	Skipped   int `json:"skipped"`
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// SuccessRate reports succeeded/processed as a percentage string. A batch
// where everything was skipped reports 0.0%.
func (s BatchStats) SuccessRate() string {
	if s.Processed == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(s.Succeeded)/float64(s.Processed)*100)
}
