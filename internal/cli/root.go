package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hfdaily/paperlens/internal/model"
)

var (
	cfgFile string
	silent  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "paperlens",
	Short: "paperlens - daily paper metadata cleaning, translation and reporting",
	Long: `paperlens is a daily pipeline over academic paper metadata.

For one day key (YYYY-MM-DD) it fetches raw paper metadata, cleans it
into a canonical shape, asks a language model to translate and summarize
each entry, and pushes a formatted report card to a chat webhook.

Every stage is resumable: already-processed papers are skipped on rerun,
and a partially completed day picks up where it stopped. When no language
model is configured the pipeline degrades to deterministic rule-based
processing instead of failing.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("paperlens v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.paperlens/config.yaml)")
	rootCmd.PersistentFlags().String("output-dir", "data/daily_reports", "root directory for metadata, cleaned data and reports")
	rootCmd.PersistentFlags().BoolVar(&silent, "silent", false, "suppress progress output, log errors only")

	// Bind flags to viper
	_ = viper.BindPFlag("output.dir", rootCmd.PersistentFlags().Lookup("output-dir"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.paperlens")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match PAPERLENS_*
	viper.SetEnvPrefix("PAPERLENS")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

// buildConfig layers viper state (flags, env, config file) over the
// defaults and resolves credentials from the environment.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Output.Silent = silent

	// API keys never live in the config file.
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "zhipu", "glm":
			cfg.LLM.APIKey = os.Getenv("ZHIPU_API_KEY")
		}
	}
	if cfg.Notify.WebhookURL == "" {
		cfg.Notify.WebhookURL = os.Getenv("FEISHU_WEBHOOK")
	}

	return cfg, nil
}

// applyLLMFlags overrides the configured provider/model with command
// flags and re-resolves the matching credential.
func applyLLMFlags(cfg *model.Config) {
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.APIKey = ""
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "zhipu", "glm":
			cfg.LLM.APIKey = os.Getenv("ZHIPU_API_KEY")
		}
	}
}

// requireProviderKey fails early when a remote provider is selected
// without a credential. Ollama runs locally and needs none.
func requireProviderKey(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "openai":
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "zhipu", "glm":
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ZHIPU_API_KEY environment variable not set")
		}
	}
	return nil
}

// dateArg resolves the optional positional day key, defaulting to today.
func dateArg(args []string) (string, error) {
	if len(args) == 0 {
		return time.Now().Format("2006-01-02"), nil
	}

	date := args[0]
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	return date, nil
}
