package model

import "time"

// Config is the full pipeline configuration. Defaults come from
// DefaultConfig; the CLI layers viper (flags, PAPERLENS_* env, config
// file) on top.
type Config struct {
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	LLM     LLMConfig     `yaml:"llm" mapstructure:"llm"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Notify  NotifyConfig  `yaml:"notify" mapstructure:"notify"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// OutputConfig controls the on-disk data layout. All stage files live under
// Dir: metadata/{date}.json, cleaned/{date}_clean.json,
// reports/{date}_report.json.
type OutputConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Silent bool   `yaml:"silent" mapstructure:"silent"`
}

// LLMConfig configures the structuring assistant.
type LLMConfig struct {
	// Provider name: "openai", "zhipu", "ollama", "" (disabled)
	Provider string `yaml:"provider" mapstructure:"provider"`

	Model   string `yaml:"model" mapstructure:"model"`
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout is the provider-level HTTP timeout in seconds. The analyzer
	// additionally enforces its own 90 s wall clock per call.
	Timeout   int `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens"`

	MaxRetries int           `yaml:"max_retries" mapstructure:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay" mapstructure:"retry_delay"`

	// RequestsPerSecond paces assistant calls across retries. Zero
	// disables pacing.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`

	// UseAIClean opts the cleaner into assistant-based extraction. The
	// analyzer uses the assistant whenever Provider is set.
	UseAIClean bool `yaml:"use_ai_clean" mapstructure:"use_ai_clean"`
}

// FetchConfig configures the daily-papers metadata fetcher.
type FetchConfig struct {
	BaseURL           string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	MaxRetries        int           `yaml:"max_retries" mapstructure:"max_retries"`
}

// NotifyConfig configures the chat webhook notifier. An empty WebhookURL
// disables notification entirely.
type NotifyConfig struct {
	WebhookURL string        `yaml:"webhook_url" mapstructure:"webhook_url"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Dir: "data/daily_reports",
		},
		LLM: LLMConfig{
			Provider:          "",
			Timeout:           120,
			MaxTokens:         2000,
			MaxRetries:        3,
			RetryDelay:        2 * time.Second,
			RequestsPerSecond: 1,
		},
		Fetch: FetchConfig{
			BaseURL:           "https://huggingface.co/api/daily_papers",
			Timeout:           30 * time.Second,
			UserAgent:         "paperlens/0.1 (+https://github.com/hfdaily/paperlens)",
			RequestsPerSecond: 1,
			Burst:             2,
			MaxRetries:        3,
		},
		Notify: NotifyConfig{
			Timeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
