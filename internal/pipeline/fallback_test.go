// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"reflect"
	"testing"

	"github.com/pdiddy/pride-gateway/internal/tools"
)

func TestFallbackPlan(t *testing.T) {
	tests := []struct {
		name       string
		question   string
		wantIntent string
		wantCalls  []string
	}{
		{
			name:       "organism question is metadata",
			question:   "What organisms are covered?",
			wantIntent: "get_available_data",
			wantCalls:  []string{tools.ToolFacets},
		},
		{
			name:       "available data question is metadata",
			question:   "what data is AVAILABLE for mouse?",
			wantIntent: "get_available_data",
			wantCalls:  []string{tools.ToolFacets},
		},
		{
			name:       "filter question is metadata",
			question:   "how can I filter by instrument",
			wantIntent: "get_available_data",
			wantCalls:  []string{tools.ToolFacets},
		},
		{
			name:       "list question is metadata",
			question:   "list the experiment types",
			wantIntent: "get_available_data",
			wantCalls:  []string{tools.ToolFacets},
		},
		{
			name:       "project question searches",
			question:   "human plasma TMT proteome 2023",
			wantIntent: "search_projects",
			wantCalls:  []string{tools.ToolFacets, tools.ToolSearch},
		},
		{
			name:       "empty question still plans",
			question:   "",
			wantIntent: "search_projects",
			wantCalls:  []string{tools.ToolFacets, tools.ToolSearch},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := FallbackPlan(tt.question, 25)
			if plan.Intent != tt.wantIntent {
				t.Errorf("Intent = %q, want %q", plan.Intent, tt.wantIntent)
			}
			var got []string
			for _, call := range plan.ToolsToCall {
				got = append(got, call.ToolName)
			}
			if !reflect.DeepEqual(got, tt.wantCalls) {
				t.Errorf("calls = %v, want %v", got, tt.wantCalls)
			}
		})
	}
}

func TestFallbackPlanSearchParameters(t *testing.T) {
	plan := FallbackPlan("mouse liver proteome", 10)
	if len(plan.ToolsToCall) != 2 {
		t.Fatalf("got %d calls, want 2", len(plan.ToolsToCall))
	}
	search := plan.ToolsToCall[1]
	if search.Parameters["keyword"] != "mouse liver proteome" {
		t.Errorf("keyword = %q", search.Parameters["keyword"])
	}
	if search.Parameters["page_size"] != "10" {
		t.Errorf("page_size = %q, want 10", search.Parameters["page_size"])
	}
	if search.Parameters["page"] != "0" {
		t.Errorf("page = %q, want 0", search.Parameters["page"])
	}
}

func TestFallbackPlanDeterministic(t *testing.T) {
	a := FallbackPlan("some question about data", 25)
	b := FallbackPlan("some question about data", 25)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("plans differ across runs: %+v vs %+v", a, b)
	}
}
