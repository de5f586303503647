// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline turns a natural-language question about the PRIDE
// Archive into tool calls and a synthesized answer. Every stage has a
// deterministic fallback; a question never fails outright because the
// language model is unavailable.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/pdiddy/pride-gateway/internal/llm"
	"github.com/pdiddy/pride-gateway/internal/tools"
	"github.com/pdiddy/pride-gateway/pkg/types"
)

// analysisPromptTmpl instructs the model to plan tool calls for a
// question. It must answer with a single JSON object.
var analysisPromptTmpl = template.Must(template.New("analysis").Parse(`You are the query planner for a proteomics data archive. Given a user question, decide which archive tools to call.

Available tools:
{{range .Tools}}- {{.Name}}: {{.Description}}
{{end}}
Rules:
- Call get_pride_facets first when the question can be narrowed by metadata (organism, disease, instrument, year) or asks what data is available.
- Call fetch_projects only when the user wants actual project results, with the question text as the keyword.
- Do not call get_project_details here; detail lookups for top results happen automatically.
- Use at most one fetch_projects call.

Respond with a single JSON object and no other text:
{"intent": "<short_snake_case_label>", "tools_to_call": [{"tool_name": "...", "parameters": {"...": "..."}}]}

All parameter values must be strings.

Question: {{.Question}}
`))

// Analysis failure reasons, distinguishable with errors.Is so callers
// can report why the deterministic planner took over.
var (
	ErrNoJSON       = errors.New("no JSON object in analysis response")
	ErrEmptyPlan    = errors.New("analysis produced no usable tool calls")
	ErrNoCredential = llm.ErrNoCredential
)

// Analyzer plans tool calls with a language model.
type Analyzer struct {
	Provider llm.Provider
	Timeout  time.Duration
}

// Analyze asks the model for a plan. Unknown tool names are dropped from
// the response; a plan with no remaining calls is an error.
func (a *Analyzer) Analyze(ctx context.Context, question string) (types.AnalysisPlan, error) {
	if a.Provider == nil {
		return types.AnalysisPlan{}, ErrNoCredential
	}

	var buf bytes.Buffer
	err := analysisPromptTmpl.Execute(&buf, struct {
		Tools    []tools.Descriptor
		Question string
	}{tools.Catalog(), question})
	if err != nil {
		return types.AnalysisPlan{}, fmt.Errorf("rendering analysis prompt: %w", err)
	}

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := a.Provider.Complete(callCtx, buf.String())
	if err != nil {
		return types.AnalysisPlan{}, fmt.Errorf("analysis call: %w", err)
	}

	plan, err := parsePlan(raw)
	if err != nil {
		return types.AnalysisPlan{}, err
	}

	kept := plan.ToolsToCall[:0]
	for _, call := range plan.ToolsToCall {
		if tools.Known(call.ToolName) {
			kept = append(kept, call)
		}
	}
	plan.ToolsToCall = kept
	if len(plan.ToolsToCall) == 0 {
		return types.AnalysisPlan{}, ErrEmptyPlan
	}
	return plan, nil
}

// parsePlan decodes the model output as JSON, falling back to the first
// balanced {...} substring when the model wrapped the object in prose.
func parsePlan(raw string) (types.AnalysisPlan, error) {
	var plan types.AnalysisPlan
	if err := json.Unmarshal([]byte(raw), &plan); err == nil {
		return plan, nil
	}

	obj, ok := firstJSONObject(raw)
	if !ok {
		return types.AnalysisPlan{}, ErrNoJSON
	}
	if err := json.Unmarshal([]byte(obj), &plan); err != nil {
		return types.AnalysisPlan{}, fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	return plan, nil
}

// firstJSONObject scans for the first brace-balanced object, skipping
// braces inside string literals.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
