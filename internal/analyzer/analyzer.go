package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hfdaily/paperlens/internal/llm"
	"github.com/hfdaily/paperlens/internal/logger"
	"github.com/hfdaily/paperlens/internal/model"
	"github.com/hfdaily/paperlens/internal/progress"
	"github.com/hfdaily/paperlens/internal/store"
)

const (
	// defaultCallDeadline is the hard wall clock per assistant call,
	// enforced independently of the retry client's own timeouts.
	defaultCallDeadline = 90 * time.Second

	defaultMaxAttempts  = 3
	defaultAttemptDelay = 2 * time.Second

	// summaryTruncateLen bounds the English-summary fallback for SummaryZH.
	summaryTruncateLen = 200
)

// ErrCallDeadline reports that an assistant call outran the hard ceiling.
// The in-flight call is abandoned, not cancelled; the attempt cap bounds
// how many such calls can pile up.
var ErrCallDeadline = errors.New("assistant call exceeded deadline")

// Analyzer produces one translated/summarized analysis record per
// canonical paper. Papers are processed strictly sequentially; results are
// persisted per item so a partially completed day resumes where it
// stopped.
type Analyzer struct {
	store  *store.Store
	client *llm.RetryableClient
	useAI  bool
	silent bool
	log    logger.Logger

	callDeadline time.Duration
	maxAttempts  int
	attemptDelay time.Duration
}

// New creates an analyzer. Assistant construction failure degrades to the
// rule-based fallback path rather than propagating: the capability is
// carried as an explicit flag, never hidden global state.
func New(cfg *model.Config, st *store.Store) *Analyzer {
	a := &Analyzer{
		store:        st,
		silent:       cfg.Output.Silent,
		log:          logger.New("analyzer", cfg.Logging.Level),
		callDeadline: defaultCallDeadline,
		maxAttempts:  defaultMaxAttempts,
		attemptDelay: defaultAttemptDelay,
	}
	if cfg.Output.Silent {
		a.log = logger.Silent("analyzer")
	}

	if cfg.LLM.Provider != "" {
		provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
		if err != nil || provider == nil {
			a.log.Warnf("assistant client unavailable, falling back to basic results: %v", err)
		} else {
			a.client = llm.NewRetryableClient(provider, cfg.LLM.MaxRetries, cfg.LLM.RetryDelay, llm.PacerFromModel(cfg.LLM))
			a.useAI = true
		}
	}

	return a
}

// UsesAssistant reports whether assistant-backed analysis is active.
func (a *Analyzer) UsesAssistant() bool {
	return a.useAI
}

// AnalyzeBatch analyzes papers in input order. When date is non-empty,
// papers already present in that day's report are skipped and each new
// result is persisted immediately. A single paper's failure never aborts
// the batch; the returned stats account for every input item.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, papers []model.CanonicalPaper, date string) ([]model.AnalysisResult, model.BatchStats) {
	stats := model.BatchStats{Total: len(papers)}
	if len(papers) == 0 {
		a.log.Warnf("no papers to analyze")
		return []model.AnalysisResult{}, stats
	}

	a.log.Infof("analyzing %d papers sequentially", len(papers))

	existing := map[string]struct{}{}
	if date != "" {
		ids, err := a.store.ExistingIDs(date)
		if err != nil {
			a.log.Warnf("load existing results for %s: %v", date, err)
		} else {
			existing = ids
		}
	}

	results := make([]model.AnalysisResult, 0, len(papers))

	for i, paper := range papers {
		if _, done := existing[paper.ID]; date != "" && done {
			stats.Skipped++
			a.log.Infof("skip already analyzed paper %s", paper.ID)
			continue
		}

		stats.Processed++
		a.log.Infof("analyzing %d/%d: %s - %s", i+1, len(papers), paper.ID, paper.Title)

		result := a.AnalyzeSingle(ctx, paper)
		if result == nil {
			stats.Failed++
			a.log.Errorf("analysis failed: %s", paper.ID)
			continue
		}

		if date != "" {
			if err := a.store.AppendResult(date, *result); err != nil {
				// The in-memory result is kept for this run even when the
				// write fails.
				a.log.Errorf("persist result %s: %v", paper.ID, err)
			}
		}

		results = append(results, *result)
		stats.Succeeded++
		a.log.Infof("analysis complete: %s (%d/%d)", paper.ID, i+1, len(papers))
	}

	a.log.Infof("batch done: total=%d skipped=%d processed=%d succeeded=%d failed=%d rate=%s",
		stats.Total, stats.Skipped, stats.Processed, stats.Succeeded, stats.Failed, stats.SuccessRate())

	return results, stats
}

// AnalyzeSingle analyzes one paper. With the assistant disabled it
// synthesizes a basic result from the paper's own fields and never touches
// the network. Otherwise it attempts up to maxAttempts assistant calls,
// each raced against the 90 s deadline, and returns nil after the final
// attempt yields nothing usable.
func (a *Analyzer) AnalyzeSingle(ctx context.Context, paper model.CanonicalPaper) *model.AnalysisResult {
	if !a.useAI || a.client == nil {
		return a.basicResult(paper)
	}

	prompt := BuildAnalysisPrompt(paper)
	messages := llm.UserText(prompt)

	var response string
	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		if attempt > 0 {
			a.log.Warnf("retrying %s (attempt %d/%d)", paper.ID, attempt+1, a.maxAttempts)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(a.attemptDelay):
			}
		}

		var sp *progress.Spinner
		if !a.silent {
			label := model.TruncateRunes(paper.Translation, 30)
			sp = progress.Start(fmt.Sprintf("分析论文: %s...", label))
		}

		start := time.Now()
		text, err := a.chatWithDeadline(ctx, messages)
		if sp != nil {
			sp.Stop()
		}

		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			a.log.Warnf("assistant call for %s failed after %.1fs: %v", paper.ID, time.Since(start).Seconds(), err)
			continue
		}

		// The retry client maps empty text to ErrEmptyResponse, so a nil
		// error means text is non-empty.
		response = text
		a.log.Infof("assistant responded for %s in %.1fs", paper.ID, time.Since(start).Seconds())
		break
	}

	if response == "" {
		a.log.Errorf("all attempts exhausted for %s", paper.ID)
		return nil
	}

	fields := ParseAnalysisResponse(response)
	return a.buildResult(paper, fields)
}

// chatWithDeadline issues the client call on a side goroutine and races it
// against the hard deadline. On deadline the goroutine is abandoned (its
// buffered channel send cannot block); true cancellation depends on the
// underlying transport honoring the context, which is tolerated but not
// required.
func (a *Analyzer) chatWithDeadline(ctx context.Context, messages []llm.Message) (string, error) {
	type outcome struct {
		text string
		err  error
	}

	ch := make(chan outcome, 1)
	go func() {
		text, err := a.client.Chat(ctx, messages)
		ch <- outcome{text: text, err: err}
	}()

	timer := time.NewTimer(a.callDeadline)
	defer timer.Stop()

	select {
	case out := <-ch:
		return out.text, out.err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return "", fmt.Errorf("%w (%s)", ErrCallDeadline, a.callDeadline)
	}
}

// basicResult synthesizes an analysis record without the assistant.
func (a *Analyzer) basicResult(paper model.CanonicalPaper) *model.AnalysisResult {
	return &model.AnalysisResult{
		ID:            paper.ID,
		TitleEN:       paper.Title,
		TitleZH:       paper.Translation,
		URL:           paper.URL,
		Authors:       paper.Authors,
		PublishDate:   FormatPublishDate(paper.PublishDate),
		SummaryEN:     paper.Summary,
		SummaryZH:     fallbackSummaryZH(paper.Summary),
		GithubRepo:    paper.GithubRepo,
		ProjectPage:   paper.ProjectPage,
		ModelFunction: model.SentinelNone,
	}
}

// buildResult combines the paper with parsed assistant fields, applying
// the never-empty fallbacks for TitleZH and SummaryZH.
func (a *Analyzer) buildResult(paper model.CanonicalPaper, fields AnalysisFields) *model.AnalysisResult {
	titleZH := fields.TitleZH
	if titleZH == "" {
		titleZH = paper.Title
		a.log.Warnf("no title translation for %s, keeping English", paper.ID)
	}

	summaryZH := fields.SummaryZH
	if summaryZH == "" {
		summaryZH = fallbackSummaryZH(paper.Summary)
		a.log.Warnf("no summary translation for %s, keeping truncated English", paper.ID)
	}

	modelFunction := fields.ModelFunction
	if modelFunction == "" {
		modelFunction = model.SentinelNone
	}

	return &model.AnalysisResult{
		ID:            paper.ID,
		TitleEN:       paper.Title,
		TitleZH:       titleZH,
		URL:           paper.URL,
		Authors:       paper.Authors,
		PublishDate:   FormatPublishDate(paper.PublishDate),
		SummaryEN:     paper.Summary,
		SummaryZH:     summaryZH,
		GithubRepo:    paper.GithubRepo,
		ProjectPage:   paper.ProjectPage,
		ModelFunction: modelFunction,
	}
}

// fallbackSummaryZH derives the Chinese-summary substitute from the
// English summary: first 200 runes plus an ellipsis, or the no-summary
// sentinel when even that is empty.
func fallbackSummaryZH(summaryEN string) string {
	if summaryEN == "" || summaryEN == model.SentinelNone {
		return model.SentinelNoSummary
	}
	if len([]rune(summaryEN)) > summaryTruncateLen {
		return model.TruncateRunes(summaryEN, summaryTruncateLen) + "..."
	}
	return summaryEN
}
