package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/hfdaily/paperlens/internal/analyzer"
	"github.com/hfdaily/paperlens/internal/cleaner"
	"github.com/hfdaily/paperlens/internal/logger"
	"github.com/hfdaily/paperlens/internal/model"
	"github.com/hfdaily/paperlens/internal/notify"
	"github.com/hfdaily/paperlens/internal/store"
)

// Pipeline orchestrates the daily run for one day key:
// fetch (optional) → clean → analyze → notify. Stages run sequentially;
// each stage's outcome is tracked for the final summary card.
type Pipeline struct {
	cfg      *model.Config
	store    *store.Store
	cleaner  *cleaner.Cleaner
	analyzer *analyzer.Analyzer
	fetcher  *Fetcher
	notifier notify.Notifier
	log      logger.Logger
}

// New wires the pipeline from configuration.
func New(cfg *model.Config) *Pipeline {
	st := store.New(cfg.Output.Dir)

	return &Pipeline{
		cfg:      cfg,
		store:    st,
		cleaner:  cleaner.New(cfg, st),
		analyzer: analyzer.New(cfg, st),
		fetcher:  NewFetcher(cfg.Fetch),
		notifier: notify.NewFeishu(cfg.Notify, cfg.Logging.Level),
		log:      logger.New("pipeline", cfg.Logging.Level),
	}
}

// Store exposes the underlying result store.
func (p *Pipeline) Store() *store.Store {
	return p.store
}

// Fetch downloads and persists one day's raw metadata.
func (p *Pipeline) Fetch(ctx context.Context, date string) error {
	data, err := p.fetcher.FetchDay(ctx, date)
	if err != nil {
		return fmt.Errorf("fetch metadata: %w", err)
	}
	if err := p.store.SaveRawRecords(date, data); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}
	p.log.Infof("metadata saved: %s", p.store.MetadataPath(date))
	return nil
}

// Clean runs the cleaner stage for one day.
func (p *Pipeline) Clean(ctx context.Context, date string) bool {
	return p.cleaner.Clean(ctx, date)
}

// Analyze runs the analyzer stage for one day, consuming the cleaner's
// output. Returns the day's full report and the batch statistics.
func (p *Pipeline) Analyze(ctx context.Context, date string) (*model.DailyReport, model.BatchStats, error) {
	papers, err := p.cleaner.LoadCleaned(date)
	if err != nil {
		return nil, model.BatchStats{}, err
	}

	_, stats := p.analyzer.AnalyzeBatch(ctx, papers, date)

	// The day's report includes results persisted by earlier runs, not
	// just this invocation's additions.
	results, err := p.store.LoadReport(date)
	if err != nil {
		return nil, stats, err
	}

	return model.NewDailyReport(date, results), stats, nil
}

// RunResult summarizes one full pipeline invocation.
type RunResult struct {
	Date      string
	Succeeded []string
	Failed    []string
	Report    *model.DailyReport
	Stats     model.BatchStats
}

// Ok reports whether every stage completed.
func (r *RunResult) Ok() bool {
	return len(r.Failed) == 0
}

// Run executes the full daily pipeline. Stage failures stop downstream
// stages (analyze needs clean's output) but the summary notification is
// always attempted.
func (p *Pipeline) Run(ctx context.Context, date string, withFetch bool) *RunResult {
	result := &RunResult{Date: date}

	step := func(name string, ok bool) bool {
		if ok {
			result.Succeeded = append(result.Succeeded, name)
		} else {
			result.Failed = append(result.Failed, name)
		}
		return ok
	}

	p.log.Infof("pipeline start: %s", date)

	if withFetch {
		err := p.Fetch(ctx, date)
		if err != nil {
			p.log.Errorf("fetch failed: %v", err)
		}
		// An earlier run's metadata file for this date may still be on
		// disk; cleaning after a failed fetch would silently consume that
		// stale input. Stop here instead.
		if !step("fetch", err == nil) {
			p.notifySummary(ctx, result)
			return result
		}
	}

	if !step("clean", p.Clean(ctx, date)) {
		p.log.Errorf("clean failed, stopping before analyze")
		p.notifySummary(ctx, result)
		return result
	}

	report, stats, err := p.Analyze(ctx, date)
	if err != nil {
		p.log.Errorf("analyze failed: %v", err)
	}
	result.Report = report
	result.Stats = stats
	step("analyze", err == nil)

	p.notifySummary(ctx, result)
	return result
}

// notifySummary posts the outcome card. Notification failure is logged,
// never escalated.
func (p *Pipeline) notifySummary(ctx context.Context, result *RunResult) {
	status := notify.StatusSuccess
	title := fmt.Sprintf("📄 论文日报 %s 完成", result.Date)
	if !result.Ok() {
		status = notify.StatusFailed
		title = fmt.Sprintf("⚠️ 论文日报 %s 部分失败", result.Date)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**日期**: %s\n", result.Date)
	if len(result.Succeeded) > 0 {
		fmt.Fprintf(&b, "**成功步骤**: %s\n", strings.Join(result.Succeeded, ", "))
	}
	if len(result.Failed) > 0 {
		fmt.Fprintf(&b, "**失败步骤**: %s\n", strings.Join(result.Failed, ", "))
	}
	if result.Report != nil {
		fmt.Fprintf(&b, "**论文总数**: %d\n", result.Report.TotalPapers)
		fmt.Fprintf(&b, "**本次处理**: %d (成功 %d, 失败 %d, 跳过 %d, 成功率 %s)\n",
			result.Stats.Processed, result.Stats.Succeeded, result.Stats.Failed,
			result.Stats.Skipped, result.Stats.SuccessRate())
	}

	if err := p.notifier.Send(ctx, title, b.String(), status); err != nil {
		p.log.Warnf("notification failed: %v", err)
	}
}
