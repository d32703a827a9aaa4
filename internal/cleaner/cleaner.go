package cleaner

import (
	"context"
	"errors"
	"fmt"

	"github.com/hfdaily/paperlens/internal/llm"
	"github.com/hfdaily/paperlens/internal/logger"
	"github.com/hfdaily/paperlens/internal/model"
	"github.com/hfdaily/paperlens/internal/progress"
	"github.com/hfdaily/paperlens/internal/store"
)

// Cleaner normalizes raw fetched records into canonical papers. Extraction
// is rule-based by default; assistant-based extraction is opt-in and falls
// back to rules whenever the assistant fails or returns nothing usable.
type Cleaner struct {
	store  *store.Store
	client *llm.RetryableClient
	useAI  bool
	silent bool
	log    logger.Logger
}

// New creates a cleaner. If assistant-based cleaning is requested but the
// provider cannot be constructed, the cleaner degrades to rule-based
// extraction instead of failing.
func New(cfg *model.Config, st *store.Store) *Cleaner {
	c := &Cleaner{
		store:  st,
		silent: cfg.Output.Silent,
		log:    logger.New("cleaner", cfg.Logging.Level),
	}
	if cfg.Output.Silent {
		c.log = logger.Silent("cleaner")
	}

	if cfg.LLM.UseAIClean && cfg.LLM.Provider != "" {
		provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
		if err != nil || provider == nil {
			c.log.Warnf("assistant client unavailable, using rule-based cleaning: %v", err)
		} else {
			c.client = llm.NewRetryableClient(provider, cfg.LLM.MaxRetries, cfg.LLM.RetryDelay, llm.PacerFromModel(cfg.LLM))
			c.useAI = true
		}
	}

	return c
}

// Clean normalizes one day's raw metadata into the cleaned file. Returns
// false on missing input or persistence failure; per-record problems only
// drop the affected record.
func (c *Cleaner) Clean(ctx context.Context, date string) bool {
	c.log.Infof("cleaning metadata for %s", date)

	records, err := c.store.LoadRawRecords(date)
	if err != nil {
		if errors.Is(err, store.ErrNoMetadata) {
			c.log.Errorf("no metadata for %s: %v", date, err)
		} else {
			c.log.Errorf("load metadata for %s: %v", date, err)
		}
		return false
	}

	papers := c.cleanRecords(ctx, records)

	if err := c.store.SaveCleaned(date, papers); err != nil {
		c.log.Errorf("save cleaned data for %s: %v", date, err)
		return false
	}

	c.log.Infof("cleaned %d of %d records into %s", len(papers), len(records), c.store.CleanedPath(date))
	return true
}

func (c *Cleaner) cleanRecords(ctx context.Context, records []model.RawRecord) []model.CanonicalPaper {
	if len(records) == 0 {
		return []model.CanonicalPaper{}
	}

	if c.useAI && c.client != nil {
		return c.cleanWithAssistant(ctx, records)
	}
	return c.cleanWithRules(records)
}

// cleanWithRules applies the deterministic per-record extraction. Records
// missing an id or title are filtered out, never reported as errors.
func (c *Cleaner) cleanWithRules(records []model.RawRecord) []model.CanonicalPaper {
	papers := make([]model.CanonicalPaper, 0, len(records))
	for _, rec := range records {
		paper, ok := ExtractPaper(rec)
		if !ok {
			c.log.Debugf("dropped record without id or title")
			continue
		}
		papers = append(papers, paper)
	}
	return papers
}

// ExtractPaper performs rule-based extraction for one raw record. The
// second return value is false when the record lacks the required id or
// title and must be dropped.
func ExtractPaper(rec model.RawRecord) (model.CanonicalPaper, bool) {
	p := rec.Payload()

	id := p.String("id")
	title := model.NormalizeTitle(p.String("title"))
	if id == "" || title == "" {
		return model.CanonicalPaper{}, false
	}

	url := p.String("url")
	if url == "" {
		url = model.ArxivAbsURL + id
	}

	return model.CanonicalPaper{
		ID:          id,
		Title:       title,
		Translation: title, // filled in properly by the analyzer
		URL:         url,
		Authors:     model.JoinAuthors(p.Strings("authors")),
		PublishDate: p.String("publishedAt", "publishedDate", "published"),
		Summary:     p.String("summary"),
		GithubRepo:  p.String("githubRepo"),
		ProjectPage: p.String("projectPage"),
	}, true
}

// cleanWithAssistant compresses the batch into one prompt, asks the
// assistant for structured output, and merges parsed fields onto the
// rule-based baseline. Any failure falls back to rules silently.
func (c *Cleaner) cleanWithAssistant(ctx context.Context, records []model.RawRecord) []model.CanonicalPaper {
	base := c.cleanWithRules(records)

	prompt, sampled, err := BuildCleaningPrompt(records)
	if err != nil || sampled == 0 {
		c.log.Warnf("assistant cleaning prompt unavailable, using rules: %v", err)
		return base
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: "你是一个专业的数据清洗助手，负责从原始论文数据中提取结构化信息。"},
		{Role: llm.RoleUser, Content: prompt},
	}

	var sp *progress.Spinner
	if !c.silent {
		sp = progress.Start("AI数据清洗")
	}
	response, err := c.client.Chat(ctx, messages)
	if sp != nil {
		sp.Stop()
	}

	if err != nil {
		c.log.Warnf("assistant cleaning failed, using rules: %v", err)
		return base
	}

	entries := ParseCleaningResponse(response)
	if len(entries) == 0 {
		c.log.Warnf("assistant response held no parseable entries, using rules")
		return base
	}

	merged := MergeCleaned(base, entries)
	c.log.Infof("assistant cleaning merged %d of %d entries", len(entries), sampled)
	return merged
}

// MergeCleaned overlays assistant-extracted fields onto the rule-based
// baseline, keyed by paper id. Records outside the sampled window keep
// their rule-based form untouched.
func MergeCleaned(base []model.CanonicalPaper, entries []CleanedEntry) []model.CanonicalPaper {
	byID := make(map[string]CleanedEntry, len(entries))
	for _, e := range entries {
		if e.ID != "" {
			byID[e.ID] = e
		}
	}

	out := make([]model.CanonicalPaper, len(base))
	for i, paper := range base {
		if e, ok := byID[paper.ID]; ok {
			if e.Translation != "" {
				paper.Translation = e.Translation
			}
			if e.Authors != "" {
				paper.Authors = e.Authors
			}
			if e.PublishDate != "" {
				paper.PublishDate = e.PublishDate
			}
		}
		out[i] = paper
	}
	return out
}

// LoadCleaned reads a day's cleaned papers back for the analyzer stage.
func (c *Cleaner) LoadCleaned(date string) ([]model.CanonicalPaper, error) {
	if !c.store.CleanedExists(date) {
		return nil, fmt.Errorf("no cleaned data for %s, run clean first", date)
	}
	return c.store.LoadCleaned(date)
}
