package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hfdaily/paperlens/internal/cleaner"
	"github.com/hfdaily/paperlens/internal/store"
)

var (
	llmProvider string
	llmModel    string
	useAIClean  bool
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean [date]",
	Short: "Normalize one day's raw metadata into canonical papers",
	Long: `Clean reads metadata/{date}.json and writes cleaned/{date}_clean.json.

Extraction is rule-based by default. With --use-ai the batch is compressed
into one assistant prompt and the parsed output is merged onto the
rule-based baseline; any assistant failure falls back to rules silently.

Example:
  paperlens clean 2025-07-31
  paperlens clean --use-ai --llm-provider zhipu 2025-07-31`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().BoolVar(&useAIClean, "use-ai", false, "use the assistant for semantic extraction")
	cleanCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "assistant provider (openai, zhipu, ollama)")
	cleanCmd.Flags().StringVar(&llmModel, "llm-model", "", "assistant model name")
}

func runClean(cmd *cobra.Command, args []string) error {
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
	if cfg.LLM.UseAIClean {
		if err := requireProviderKey(cfg); err != nil {
			return err
		}
	}

	st := store.New(cfg.Output.Dir)
	c := cleaner.New(cfg, st)

	if !c.Clean(context.Background(), date) {
		return fmt.Errorf("clean failed for %s", date)
	}
	return nil
}
