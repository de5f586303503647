// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tools defines the archive tool catalog and executes tool calls.
// The catalog is static: the same four descriptors back the MCP tools/list
// response and the pipeline's analysis prompt.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pdiddy/pride-gateway/internal/archive"
	"github.com/pdiddy/pride-gateway/pkg/types"
)

// Tool names.
const (
	ToolFacets  = "get_pride_facets"
	ToolSearch  = "fetch_projects"
	ToolDetails = "get_project_details"
	ToolFiles   = "get_project_files"
)

// Descriptor describes one tool: its name, a prose description for the
// analysis prompt, and a JSON Schema for its parameters.
type Descriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// Catalog returns the tool descriptors in their canonical order. The
// returned slice is freshly allocated; the descriptors themselves are
// immutable.
func Catalog() []Descriptor {
	return []Descriptor{
		{
			Name: ToolFacets,
			Description: "List the facet catalog of the PRIDE Archive: every facet category " +
				"(organisms, diseases, experiment types, instruments, keywords, ...) with its " +
				"values and project counts. Call this first to learn what metadata is available.",
			InputSchema: schema(map[string]property{
				"facet_page_size": {Type: "integer", Description: "Facet values per category (default 100)."},
				"facet_page":      {Type: "integer", Description: "Facet page number, starting at 0."},
			}, nil),
		},
		{
			Name: ToolSearch,
			Description: "Search PRIDE projects by keyword with optional metadata filters. " +
				"Filters use the syntax field==value, comma-joined, e.g. " +
				"organisms==Homo sapiens (human),diseases==breast cancer.",
			InputSchema: schema(map[string]property{
				"keyword":   {Type: "string", Description: "Free-text search keyword."},
				"filter":    {Type: "string", Description: "Optional field==value filters, comma-joined."},
				"page_size": {Type: "integer", Description: "Projects per page (default 25)."},
				"page":      {Type: "integer", Description: "Page number, starting at 0."},
			}, []string{"keyword"}),
		},
		{
			Name: ToolDetails,
			Description: "Fetch the full metadata record of one PRIDE project by accession " +
				"(e.g. PXD012345): description, organisms, instruments, experiment types, dates.",
			InputSchema: schema(map[string]property{
				"project_accession": {Type: "string", Description: "PRIDE project accession."},
			}, []string{"project_accession"}),
		},
		{
			Name: ToolFiles,
			Description: "List the data files of one PRIDE project by accession, optionally " +
				"restricted to a file type such as RAW or RESULT.",
			InputSchema: schema(map[string]property{
				"project_accession": {Type: "string", Description: "PRIDE project accession."},
				"file_type":         {Type: "string", Description: "Optional file type filter."},
			}, []string{"project_accession"}),
		},
	}
}

// Runner executes tool calls against the archive client.
type Runner struct {
	Archive *archive.Client
}

// Run executes a single tool call and returns the result payload as JSON.
// Unknown tool names are an error; archive failures pass through wrapped.
func (r *Runner) Run(ctx context.Context, call types.ToolCall) (json.RawMessage, error) {
	switch call.ToolName {
	case ToolFacets:
		facets, err := r.Archive.Facets(ctx,
			intParam(call.Parameters, "facet_page_size"),
			intParam(call.Parameters, "facet_page"))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", call.ToolName, err)
		}
		return marshal(facets)

	case ToolSearch:
		res, err := r.Archive.Search(ctx,
			call.Parameters["keyword"],
			call.Parameters["filter"],
			intParam(call.Parameters, "page_size"),
			intParam(call.Parameters, "page"))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", call.ToolName, err)
		}
		return marshal(res)

	case ToolDetails:
		acc := call.Parameters["project_accession"]
		if acc == "" {
			return nil, fmt.Errorf("%s: missing project_accession", call.ToolName)
		}
		detail, err := r.Archive.Project(ctx, acc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", call.ToolName, err)
		}
		return marshal(detail)

	case ToolFiles:
		acc := call.Parameters["project_accession"]
		if acc == "" {
			return nil, fmt.Errorf("%s: missing project_accession", call.ToolName)
		}
		files, err := r.Archive.Files(ctx, acc, call.Parameters["file_type"])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", call.ToolName, err)
		}
		return marshal(files)

	default:
		return nil, fmt.Errorf("unknown tool %q", call.ToolName)
	}
}

// Known reports whether name is in the catalog.
func Known(name string) bool {
	switch name {
	case ToolFacets, ToolSearch, ToolDetails, ToolFiles:
		return true
	}
	return false
}

func intParam(params map[string]string, key string) int {
	v, ok := params[key]
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func marshal(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding tool result: %w", err)
	}
	return data, nil
}

type property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

func schema(props map[string]property, required []string) json.RawMessage {
	s := struct {
		Type       string              `json:"type"`
		Properties map[string]property `json:"properties"`
		Required   []string            `json:"required,omitempty"`
	}{Type: "object", Properties: props, Required: required}
	data, err := json.Marshal(s)
	if err != nil {
		panic(err) // static schemas, cannot fail
	}
	return data
}
