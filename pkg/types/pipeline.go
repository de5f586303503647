// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"time"
)

// ToolCall is one planned invocation of an archive tool.
type ToolCall struct {
	// ToolName identifies the tool (e.g. "fetch_projects").
	ToolName string `json:"tool_name" yaml:"tool_name"`

	// Parameters are the string-valued arguments for the call.
	Parameters map[string]string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// OutcomeKind classifies how a tool call ended.
type OutcomeKind string

const (
	OutcomeOK       OutcomeKind = "ok"
	OutcomeTimedOut OutcomeKind = "timed_out"
	OutcomeErrored  OutcomeKind = "errored"
)

// ToolResult is the recorded outcome of one executed tool call.
type ToolResult struct {
	// ToolName identifies the tool that produced this result.
	ToolName string `json:"tool_name" yaml:"tool_name"`

	// Outcome classifies the call: ok, timed_out, or errored.
	Outcome OutcomeKind `json:"outcome" yaml:"outcome"`

	// Response is the raw JSON payload on success.
	Response json.RawMessage `json:"response,omitempty" yaml:"response,omitempty"`

	// Err carries the failure message when the call did not succeed.
	Err string `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the call succeeded.
func (r ToolResult) OK() bool { return r.Outcome == OutcomeOK }

// AnalysisPlan is the analyzer's (or fallback planner's) output: an
// intent label plus the ordered tool calls to execute.
type AnalysisPlan struct {
	// Intent labels the question (e.g. "search_projects",
	// "get_available_data").
	Intent string `json:"intent" yaml:"intent"`

	// ToolsToCall is the ordered list of planned calls.
	ToolsToCall []ToolCall `json:"tools_to_call" yaml:"tools_to_call"`
}

// PipelineState names a stage of the question pipeline.
type PipelineState string

const (
	StateReceived           PipelineState = "received"
	StateAnalyzing          PipelineState = "analyzing"
	StateFallbackPlanning   PipelineState = "fallback_planning"
	StateExecuting          PipelineState = "executing"
	StateSynthesizing       PipelineState = "synthesizing"
	StateFallbackFormatting PipelineState = "fallback_formatting"
	StateCompleted          PipelineState = "completed"
)

// PipelineResult is the pipeline's answer to one question. Run always
// produces a result; internal failures degrade to fallbacks instead of
// surfacing to the caller.
type PipelineResult struct {
	// RequestID is the unique id assigned to this run.
	RequestID string `json:"request_id" yaml:"request_id"`

	// Question is the user question as received.
	Question string `json:"question" yaml:"question"`

	// Intent is the plan's intent label.
	Intent string `json:"intent" yaml:"intent"`

	// FinalResponse is the synthesized (or fallback-formatted) markdown.
	FinalResponse string `json:"final_response" yaml:"final_response"`

	// ToolsCalled lists the tool names that were executed, in order.
	ToolsCalled []string `json:"tools_called" yaml:"tools_called"`

	// UsedFallbackPlan records that intent analysis failed and the
	// deterministic planner produced the plan.
	UsedFallbackPlan bool `json:"used_fallback_plan" yaml:"used_fallback_plan"`

	// UsedFallbackFormat records that synthesis failed and the
	// deterministic formatter produced the response.
	UsedFallbackFormat bool `json:"used_fallback_format" yaml:"used_fallback_format"`

	// Success is false only when every planned tool call failed.
	Success bool `json:"success" yaml:"success"`

	// ErrorMessage summarizes the first failure, if any.
	ErrorMessage string `json:"error_message,omitempty" yaml:"error_message,omitempty"`

	// Duration is the wall-clock time of the whole run.
	Duration time.Duration `json:"duration" yaml:"duration"`
}
