// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/pride-gateway/pkg/types"
)

// geminiAPIBase is the Gemini generateContent endpoint root. Declared as
// a var so tests can substitute an httptest server.
var geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta"

// Gemini calls the Google Gemini generateContent API over plain HTTP.
type Gemini struct {
	APIKey string
	Model  string
	Client *http.Client

	// BaseURL overrides geminiAPIBase when non-empty.
	BaseURL string
}

// NewGemini returns a Gemini provider from cfg.
func NewGemini(cfg types.LLMConfig) *Gemini {
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Gemini{
		APIKey: cfg.APIKey,
		Model:  model,
		Client: &http.Client{},
	}
}

func (g *Gemini) Name() string { return "gemini" }

// Complete sends prompt as a single user turn and concatenates the text
// parts of the first candidate.
func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encoding Gemini request: %w", err)
	}

	base := g.BaseURL
	if base == "" {
		base = geminiAPIBase
	}
	reqURL := fmt.Sprintf("%s/models/%s:generateContent", base, g.Model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.APIKey)

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("Gemini API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("Gemini API returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var gr geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("parsing Gemini response: %w", err)
	}

	if len(gr.Candidates) == 0 {
		return "", fmt.Errorf("Gemini returned no candidates")
	}
	var sb strings.Builder
	for _, part := range gr.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("Gemini returned an empty completion")
	}
	return text, nil
}

// Gemini API JSON structures.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}
