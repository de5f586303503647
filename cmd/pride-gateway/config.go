// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/pride-gateway/pkg/types"
)

// appConfig builds the runtime configuration: defaults, overlaid with any
// viper-bound values (config file or PRIDE_GATEWAY_* environment), with
// API keys and the webhook URL falling back to .secrets/.
func appConfig() types.AppConfig {
	cfg := types.DefaultAppConfig()

	setString(&cfg.Server.Host, "server.host")
	setInt(&cfg.Server.Port, "server.port")

	setDuration(&cfg.Archive.Timeout, "archive.timeout")
	setInt(&cfg.Archive.PageSize, "archive.page_size")
	setString(&cfg.Archive.SortField, "archive.sort_field")
	setString(&cfg.Archive.SortDirection, "archive.sort_direction")

	setString(&cfg.LLM.Provider, "llm.provider")
	setString(&cfg.LLM.Model, "llm.model")
	setString(&cfg.LLM.APIKey, "llm.api_key")
	setDuration(&cfg.LLM.AnalysisTimeout, "llm.analysis_timeout")
	setDuration(&cfg.LLM.SynthesisTimeout, "llm.synthesis_timeout")

	setDuration(&cfg.Pipeline.ToolTimeout, "pipeline.tool_timeout")
	setDuration(&cfg.Pipeline.DetailTimeout, "pipeline.detail_timeout")
	setInt(&cfg.Pipeline.MaxDetailFetch, "pipeline.max_detail_fetch")
	setInt(&cfg.Pipeline.MaxInferredFilters, "pipeline.max_inferred_filters")

	setString(&cfg.Analytics.DatabasePath, "analytics.database_path")

	setString(&cfg.Notify.WebhookURL, "notify.webhook_url")
	if viper.IsSet("notify.notify_questions") {
		cfg.Notify.NotifyQuestions = viper.GetBool("notify.notify_questions")
	}

	// Secrets fill in anything the config left empty.
	switch cfg.LLM.Provider {
	case "anthropic":
		cfg.LLM.APIKey = secretDefault("anthropic-api-key", cfg.LLM.APIKey)
	default:
		cfg.LLM.APIKey = secretDefault("gemini-api-key", cfg.LLM.APIKey)
	}
	cfg.Notify.WebhookURL = secretDefault("slack-webhook-url", cfg.Notify.WebhookURL)

	return cfg
}

func setString(dst *string, key string) {
	if v := viper.GetString(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := viper.GetInt(key); v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := viper.GetDuration(key); v != 0 {
		*dst = v
	}
}
