// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/pride-gateway/internal/llm"
	"github.com/pdiddy/pride-gateway/internal/tools"
	"github.com/pdiddy/pride-gateway/pkg/types"
)

// Pipeline answers one question end to end: analyze, execute,
// synthesize, with deterministic fallbacks on both model stages.
type Pipeline struct {
	Analyzer    *Analyzer
	Coordinator *Coordinator
	Synthesizer *Synthesizer

	// Progress receives one line per state transition. Defaults to
	// io.Discard.
	Progress io.Writer
}

// New wires a pipeline from a tool runner and an optional provider. A
// nil provider is valid: both model stages then use their fallbacks.
func New(runner *tools.Runner, provider llm.Provider, llmCfg types.LLMConfig, cfg types.PipelineConfig) *Pipeline {
	return &Pipeline{
		Analyzer:    &Analyzer{Provider: provider, Timeout: llmCfg.AnalysisTimeout},
		Coordinator: &Coordinator{Runner: runner, Cfg: cfg},
		Synthesizer: &Synthesizer{Provider: provider, Timeout: llmCfg.SynthesisTimeout},
		Progress:    io.Discard,
	}
}

// Run processes one question. It never returns an error: analysis
// failures fall back to the deterministic planner, synthesis failures to
// the deterministic formatter, and tool failures are recorded in the
// result. Success is false only when no tool call succeeded.
func (p *Pipeline) Run(ctx context.Context, question string) types.PipelineResult {
	start := time.Now()
	result := types.PipelineResult{
		RequestID: uuid.NewString(),
		Question:  question,
	}

	p.transition(result.RequestID, types.StateReceived)

	p.transition(result.RequestID, types.StateAnalyzing)
	plan, err := p.Analyzer.Analyze(ctx, question)
	if err != nil {
		p.transition(result.RequestID, types.StateFallbackPlanning)
		plan = FallbackPlan(question, 0)
		result.UsedFallbackPlan = true
	}
	result.Intent = plan.Intent

	p.transition(result.RequestID, types.StateExecuting)
	exec := p.Coordinator.Execute(ctx, question, plan)
	result.ToolsCalled = exec.ToolNames()
	result.Success = exec.OKCount() > 0
	result.ErrorMessage = exec.FirstError()

	p.transition(result.RequestID, types.StateSynthesizing)
	answer, err := p.Synthesizer.Synthesize(ctx, question, plan.Intent, exec)
	if err != nil {
		p.transition(result.RequestID, types.StateFallbackFormatting)
		answer = FallbackFormat(question, plan.Intent, exec)
		result.UsedFallbackFormat = true
	}
	result.FinalResponse = answer

	p.transition(result.RequestID, types.StateCompleted)
	result.Duration = time.Since(start)
	return result
}

func (p *Pipeline) transition(id string, state types.PipelineState) {
	w := p.Progress
	if w == nil {
		w = io.Discard
	}
	fmt.Fprintf(w, "[%s] %s\n", id, state)
}
