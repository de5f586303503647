package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pride-gateway/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ArchiveConfig holds settings for the PRIDE Archive REST client.
type ArchiveConfig struct {
	HTTPConfig `yaml:",inline"`

	// PageSize is the default number of projects per search page (default 25).
	PageSize int `json:"page_size" yaml:"page_size"`

	// SortField orders search results (default "downloadCount").
	SortField string `json:"sort_field" yaml:"sort_field"`

	// SortDirection is ASC or DESC (default "DESC").
	SortDirection string `json:"sort_direction" yaml:"sort_direction"`
}

// LLMConfig holds settings for the language model provider used by the
// analysis and synthesis stages.
type LLMConfig struct {
	// Provider selects the backend: "gemini" or "anthropic".
	Provider string `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "gemini-2.0-flash",
	// "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the provider API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// AnalysisTimeout bounds a single intent-analysis call (default 15s).
	AnalysisTimeout time.Duration `json:"analysis_timeout" yaml:"analysis_timeout"`

	// SynthesisTimeout bounds a single synthesis call (default 60s).
	SynthesisTimeout time.Duration `json:"synthesis_timeout" yaml:"synthesis_timeout"`
}

// PipelineConfig holds settings for the question pipeline.
type PipelineConfig struct {
	// ToolTimeout bounds a single archive tool call (default 60s).
	ToolTimeout time.Duration `json:"tool_timeout" yaml:"tool_timeout"`

	// DetailTimeout bounds a single project-detail fetch (default 45s).
	DetailTimeout time.Duration `json:"detail_timeout" yaml:"detail_timeout"`

	// MaxDetailFetch is how many top accessions get a detail fetch (default 3).
	MaxDetailFetch int `json:"max_detail_fetch" yaml:"max_detail_fetch"`

	// MaxInferredFilters caps filters derived from facet data (default 5).
	MaxInferredFilters int `json:"max_inferred_filters" yaml:"max_inferred_filters"`
}

// AnalyticsConfig holds settings for the question analytics store.
type AnalyticsConfig struct {
	// DatabasePath is the SQLite database file (default "analytics.db").
	DatabasePath string `json:"database_path" yaml:"database_path"`
}

// NotifyConfig holds settings for Slack notifications.
type NotifyConfig struct {
	// WebhookURL is the Slack incoming-webhook URL. Empty disables
	// notifications.
	WebhookURL string `json:"webhook_url,omitempty" yaml:"webhook_url,omitempty"`

	// NotifyQuestions sends a short Slack message per answered question.
	NotifyQuestions bool `json:"notify_questions" yaml:"notify_questions"`
}

// ServerConfig holds settings for the HTTP gateway server.
type ServerConfig struct {
	// Host is the listen address (default "0.0.0.0").
	Host string `json:"host" yaml:"host"`

	// Port is the listen port (default 8000).
	Port int `json:"port" yaml:"port"`
}

// AppConfig groups all component configurations for the gateway.
type AppConfig struct {
	Server    ServerConfig    `json:"server" yaml:"server"`
	Archive   ArchiveConfig   `json:"archive" yaml:"archive"`
	LLM       LLMConfig       `json:"llm" yaml:"llm"`
	Pipeline  PipelineConfig  `json:"pipeline" yaml:"pipeline"`
	Analytics AnalyticsConfig `json:"analytics" yaml:"analytics"`
	Notify    NotifyConfig    `json:"notify" yaml:"notify"`
}

// DefaultAppConfig returns an AppConfig populated with defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Archive: ArchiveConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "pride-gateway/0.1",
			},
			PageSize:      25,
			SortField:     "downloadCount",
			SortDirection: "DESC",
		},
		LLM: LLMConfig{
			Provider:         "gemini",
			Model:            "gemini-2.0-flash",
			AnalysisTimeout:  15 * time.Second,
			SynthesisTimeout: 60 * time.Second,
		},
		Pipeline: PipelineConfig{
			ToolTimeout:        60 * time.Second,
			DetailTimeout:      45 * time.Second,
			MaxDetailFetch:     3,
			MaxInferredFilters: 5,
		},
		Analytics: AnalyticsConfig{
			DatabasePath: "analytics.db",
		},
	}
}
