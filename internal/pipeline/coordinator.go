// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/pride-gateway/internal/tools"
	"github.com/pdiddy/pride-gateway/pkg/types"
)

// ebiProjectBase is the public project page root used for answer links.
const ebiProjectBase = "https://www.ebi.ac.uk/pride/archive/projects/"

// accessionsResult is the synthetic pseudo-result appended after
// execution so the synthesizer sees the full accession list even though
// no tool returns it directly.
const accessionsResult = "project_accessions"

// Execution is everything the coordinator learned from running a plan.
type Execution struct {
	// Results holds one entry per executed call, in execution order,
	// including failures and the synthetic accessions entry.
	Results []types.ToolResult

	// Facets is the parsed facet catalog when a facets call succeeded.
	Facets types.FacetSet

	// TopAccessions are the accessions that got a detail fetch.
	TopAccessions []string

	// AllAccessions is the full accession list from the search page.
	AllAccessions []string

	// Details are the successfully fetched detail records, keyed by
	// accession.
	Details map[string]types.ProjectDetail

	// Total is the archive's reported hit count across all pages.
	Total int

	// SearchRan records that a project search executed (successfully or
	// not), so zero results can be distinguished from no search.
	SearchRan bool
}

// OKCount returns how many calls succeeded.
func (e *Execution) OKCount() int {
	n := 0
	for _, r := range e.Results {
		if r.OK() {
			n++
		}
	}
	return n
}

// FirstError returns the first recorded failure message, if any.
func (e *Execution) FirstError() string {
	for _, r := range e.Results {
		if !r.OK() {
			return r.ToolName + ": " + r.Err
		}
	}
	return ""
}

// ToolNames returns the executed tool names in order.
func (e *Execution) ToolNames() []string {
	names := make([]string, 0, len(e.Results))
	for _, r := range e.Results {
		names = append(names, r.ToolName)
	}
	return names
}

// Coordinator executes an analysis plan against the archive tools.
type Coordinator struct {
	Runner *tools.Runner
	Cfg    types.PipelineConfig
}

// Execute runs the plan sequentially. Each call is wrapped with its own
// timeout and its outcome recorded in place; a failed call never aborts
// the plan. After a successful facets call the coordinator derives a
// project search from the question and the facet catalog, which replaces
// any search the planner asked for. The first accessions of a successful
// search get detail fetches, and a synthetic accessions entry closes the
// result list.
func (c *Coordinator) Execute(ctx context.Context, question string, plan types.AnalysisPlan) *Execution {
	exec := &Execution{Details: map[string]types.ProjectDetail{}}
	derivedSearch := false

	for _, call := range plan.ToolsToCall {
		// A planner search is superseded by the facets-derived one.
		if call.ToolName == tools.ToolSearch && derivedSearch {
			continue
		}

		result := c.runCall(ctx, call, c.toolTimeout())
		exec.Results = append(exec.Results, result)

		switch call.ToolName {
		case tools.ToolFacets:
			if !result.OK() {
				continue
			}
			var facets types.FacetSet
			if err := json.Unmarshal(result.Response, &facets); err != nil {
				continue
			}
			exec.Facets = facets

			if plan.Intent == "get_available_data" {
				continue
			}
			derived := c.deriveSearch(question, facets, plan)
			searchResult := c.runCall(ctx, derived, c.toolTimeout())
			exec.Results = append(exec.Results, searchResult)
			derivedSearch = true
			c.recordSearch(exec, searchResult)

		case tools.ToolSearch:
			c.recordSearch(exec, result)
		}
	}

	c.fetchDetails(ctx, exec)
	c.appendAccessions(exec)
	return exec
}

// deriveSearch builds the post-facets search call: lower-cased question
// as keyword plus inferred filters. The planner's page size is kept when
// it supplied one.
func (c *Coordinator) deriveSearch(question string, facets types.FacetSet, plan types.AnalysisPlan) types.ToolCall {
	pageSize := 25
	for _, call := range plan.ToolsToCall {
		if call.ToolName == tools.ToolSearch {
			if n, err := strconv.Atoi(call.Parameters["page_size"]); err == nil && n > 0 {
				pageSize = n
			}
		}
	}

	params := map[string]string{
		"keyword":   strings.ToLower(question),
		"page_size": strconv.Itoa(pageSize),
		"page":      "0",
	}
	if filter := InferFilters(question, facets, c.Cfg.MaxInferredFilters); filter != "" {
		params["filter"] = filter
	}
	return types.ToolCall{ToolName: tools.ToolSearch, Parameters: params}
}

// recordSearch parses a search result into accessions and total.
func (c *Coordinator) recordSearch(exec *Execution, result types.ToolResult) {
	exec.SearchRan = true
	if !result.OK() {
		return
	}
	var sr types.SearchResult
	if err := json.Unmarshal(result.Response, &sr); err != nil {
		return
	}
	exec.Total = sr.Total
	for _, p := range sr.Projects {
		if p.Accession != "" {
			exec.AllAccessions = append(exec.AllAccessions, p.Accession)
		}
	}
}

// fetchDetails fetches detail records for the leading accessions.
// Individual failures are recorded and the loop continues.
func (c *Coordinator) fetchDetails(ctx context.Context, exec *Execution) {
	maxFetch := c.Cfg.MaxDetailFetch
	if maxFetch <= 0 {
		maxFetch = 3
	}
	for _, acc := range exec.AllAccessions {
		if len(exec.TopAccessions) >= maxFetch {
			break
		}
		exec.TopAccessions = append(exec.TopAccessions, acc)

		call := types.ToolCall{
			ToolName:   tools.ToolDetails,
			Parameters: map[string]string{"project_accession": acc},
		}
		result := c.runCall(ctx, call, c.detailTimeout())
		exec.Results = append(exec.Results, result)
		if !result.OK() {
			continue
		}
		var detail types.ProjectDetail
		if err := json.Unmarshal(result.Response, &detail); err != nil {
			continue
		}
		exec.Details[acc] = detail
	}
}

// appendAccessions adds the synthetic accession-list entry when the
// search produced any accessions.
func (c *Coordinator) appendAccessions(exec *Execution) {
	if len(exec.AllAccessions) == 0 {
		return
	}
	links := make(map[string]string, len(exec.AllAccessions))
	for _, acc := range exec.AllAccessions {
		links[acc] = ebiProjectBase + acc
	}
	payload, err := json.Marshal(struct {
		Accessions []string          `json:"accessions"`
		Total      int               `json:"total"`
		EBILinks   map[string]string `json:"ebi_links"`
	}{exec.AllAccessions, exec.Total, links})
	if err != nil {
		return
	}
	exec.Results = append(exec.Results, types.ToolResult{
		ToolName: accessionsResult,
		Outcome:  types.OutcomeOK,
		Response: payload,
	})
}

// runCall executes one tool call under its own timeout and classifies
// the outcome.
func (c *Coordinator) runCall(ctx context.Context, call types.ToolCall, timeout time.Duration) types.ToolResult {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := c.Runner.Run(callCtx, call)
	if err != nil {
		outcome := types.OutcomeErrored
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = types.OutcomeTimedOut
		}
		return types.ToolResult{ToolName: call.ToolName, Outcome: outcome, Err: err.Error()}
	}
	return types.ToolResult{ToolName: call.ToolName, Outcome: types.OutcomeOK, Response: payload}
}

func (c *Coordinator) toolTimeout() time.Duration {
	if c.Cfg.ToolTimeout > 0 {
		return c.Cfg.ToolTimeout
	}
	return 60 * time.Second
}

func (c *Coordinator) detailTimeout() time.Duration {
	if c.Cfg.DetailTimeout > 0 {
		return c.Cfg.DetailTimeout
	}
	return 45 * time.Second
}
