package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hfdaily/paperlens/internal/pipeline"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [date]",
	Short: "Translate and summarize one day's cleaned papers",
	Long: `Analyze consumes cleaned/{date}_clean.json and maintains
reports/{date}_report.json incrementally.

Each paper is processed sequentially: papers already present in the day's
report are skipped, each new result is persisted immediately, and a single
paper's failure never aborts the batch. Without a configured assistant the
analyzer synthesizes basic results from the paper's own fields.

Example:
  paperlens analyze 2025-07-31
  paperlens analyze --llm-provider openai --llm-model gpt-4o-mini 2025-07-31`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "assistant provider (openai, zhipu, ollama)")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "", "assistant model name")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	date, err := dateArg(args)
	if err != nil {
		return err
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	applyLLMFlags(cfg)
	if err := requireProviderKey(cfg); err != nil {
		return err
	}

	p := pipeline.New(cfg)
	report, stats, err := p.Analyze(context.Background(), date)
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	if !silent {
		fmt.Fprintf(os.Stderr, "\nReport: %s\n", p.Store().ReportPath(date))
		fmt.Fprintf(os.Stderr, "Papers in report: %d\n", report.TotalPapers)
		fmt.Fprintf(os.Stderr, "Processed: %d (succeeded %d, failed %d, skipped %d, rate %s)\n",
			stats.Processed, stats.Succeeded, stats.Failed, stats.Skipped, stats.SuccessRate())
	}

	if stats.Failed > 0 && stats.Succeeded == 0 && stats.Processed > 0 {
		return fmt.Errorf("all %d processed papers failed", stats.Processed)
	}
	return nil
}
