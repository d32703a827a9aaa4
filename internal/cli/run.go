package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hfdaily/paperlens/internal/pipeline"
)

var withFetch bool

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [date]",
	Short: "Run the full daily pipeline",
	Long: `Run executes the full pipeline for a date: optional fetch, then
clean, then analyze, and finally posts a summary card to the configured
webhook (if any).

The pipeline is resumable: rerunning a partially completed day skips papers
already present in the report and only processes the remainder.

Example:
  paperlens run --fetch 2025-07-31
  paperlens run 2025-07-31`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&withFetch, "fetch", false, "download metadata before cleaning")
	runCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "assistant provider (openai, zhipu, ollama)")
	runCmd.Flags().StringVar(&llmModel, "llm-model", "", "assistant model name")
	runCmd.Flags().BoolVar(&useAIClean, "use-ai", false, "use the assistant for metadata cleaning")
}

func runRun(cmd *cobra.Command, args []string) error {
	date, err := dateArg(args)
	if err != nil {
		return err
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	applyLLMFlags(cfg)
	if useAIClean {
		cfg.LLM.UseAIClean = true
	}
	if err := requireProviderKey(cfg); err != nil {
		return err
	}

	p := pipeline.New(cfg)
	result := p.Run(context.Background(), date, withFetch)

	if !silent {
		fmt.Fprintf(os.Stderr, "\nDate: %s\n", result.Date)
		if result.Report != nil {
			fmt.Fprintf(os.Stderr, "Papers in report: %d\n", result.Report.TotalPapers)
		}
		fmt.Fprintf(os.Stderr, "Processed: %d (succeeded %d, failed %d, skipped %d, rate %s)\n",
			result.Stats.Processed, result.Stats.Succeeded, result.Stats.Failed,
			result.Stats.Skipped, result.Stats.SuccessRate())
	}

	if !result.Ok() {
		return fmt.Errorf("pipeline finished with errors for %s", result.Date)
	}
	return nil
}
