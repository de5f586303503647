// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"strconv"
	"strings"

	"github.com/pdiddy/pride-gateway/internal/tools"
	"github.com/pdiddy/pride-gateway/pkg/types"
)

// metadataTriggers are phrases that mark a question as asking what data
// exists rather than asking for projects. Matched case-insensitively as
// substrings.
var metadataTriggers = []string{
	"organism",
	"available",
	"filter",
	"facet",
	"what can",
	"what are",
	"list",
	"show me what",
}

// FallbackPlan builds a plan without the language model. It is total:
// every question yields a non-empty plan.
//
// Questions about available metadata get a facets-only plan; everything
// else gets facets plus a keyword search so filter inference can still
// narrow the search.
func FallbackPlan(question string, pageSize int) types.AnalysisPlan {
	if pageSize <= 0 {
		pageSize = 25
	}

	lower := strings.ToLower(question)
	for _, trigger := range metadataTriggers {
		if strings.Contains(lower, trigger) {
			return types.AnalysisPlan{
				Intent: "get_available_data",
				ToolsToCall: []types.ToolCall{
					{ToolName: tools.ToolFacets},
				},
			}
		}
	}

	return types.AnalysisPlan{
		Intent: "search_projects",
		ToolsToCall: []types.ToolCall{
			{ToolName: tools.ToolFacets},
			{ToolName: tools.ToolSearch, Parameters: map[string]string{
				"keyword":   question,
				"page_size": strconv.Itoa(pageSize),
				"page":      "0",
			}},
		},
	}
}
