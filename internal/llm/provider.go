// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm abstracts the language model behind the analysis and
// synthesis stages. Providers return plain completion text; prompt
// construction and output parsing stay with the callers.
package llm

import (
	"context"
	"fmt"

	"github.com/pdiddy/pride-gateway/pkg/types"
)

// Provider produces a text completion for a prompt.
type Provider interface {
	// Name returns the provider identifier ("gemini", "anthropic").
	Name() string

	// Complete sends prompt and returns the completion text. An empty
	// completion is an error.
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewProvider constructs the provider selected by cfg.Provider. The
// switch happens once here; call sites hold the interface.
func NewProvider(cfg types.LLMConfig) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoCredential
	}
	switch cfg.Provider {
	case "gemini", "":
		return NewGemini(cfg), nil
	case "anthropic":
		return NewAnthropic(cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// ErrNoCredential is returned when no API key is configured. The
// pipeline treats it as a signal to plan without the model.
var ErrNoCredential = fmt.Errorf("no llm api key configured")
