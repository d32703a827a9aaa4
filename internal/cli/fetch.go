package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hfdaily/paperlens/internal/pipeline"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch [date]",
	Short: "Download one day's paper metadata",
	Long: `Fetch downloads the daily papers feed for the given date and stores
the raw JSON response under metadata/{date}.json.

Transient upstream errors (429, 5xx) are retried with exponential backoff.

Example:
  paperlens fetch 2025-07-31`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	date, err := dateArg(args)
	if err != nil {
		return err
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p := pipeline.New(cfg)
	if err := p.Fetch(context.Background(), date); err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	if !silent {
		fmt.Fprintf(os.Stderr, "Metadata: %s\n", p.Store().MetadataPath(date))
	}
	return nil
}
