// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/pride-gateway/internal/archive"
	"github.com/pdiddy/pride-gateway/pkg/types"
)

func testRunner(t *testing.T, handler http.HandlerFunc) *Runner {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	c := archive.NewClient(types.ArchiveConfig{PageSize: 25})
	c.HTTP = ts.Client()
	c.BaseURL = ts.URL
	return &Runner{Archive: c}
}

func TestCatalogNamesAndSchemas(t *testing.T) {
	cat := Catalog()
	if len(cat) != 4 {
		t.Fatalf("catalog has %d tools, want 4", len(cat))
	}

	want := []string{ToolFacets, ToolSearch, ToolDetails, ToolFiles}
	for i, d := range cat {
		if d.Name != want[i] {
			t.Errorf("tool %d = %q, want %q", i, d.Name, want[i])
		}
		var s map[string]any
		if err := json.Unmarshal(d.InputSchema, &s); err != nil {
			t.Errorf("%s schema is not valid JSON: %v", d.Name, err)
		}
		if s["type"] != "object" {
			t.Errorf("%s schema type = %v", d.Name, s["type"])
		}
	}

	for _, name := range want {
		if !Known(name) {
			t.Errorf("Known(%q) = false", name)
		}
	}
	if Known("delete_everything") {
		t.Error("Known accepted an unknown name")
	}
}

func TestRunDispatch(t *testing.T) {
	tests := []struct {
		name     string
		call     types.ToolCall
		wantPath string
		body     string
		contains string
	}{
		{
			name:     "facets",
			call:     types.ToolCall{ToolName: ToolFacets},
			wantPath: "/facet/projects",
			body:     `{"organisms": {"Homo sapiens (human)": 10}}`,
			contains: "Homo sapiens",
		},
		{
			name: "search",
			call: types.ToolCall{ToolName: ToolSearch, Parameters: map[string]string{
				"keyword": "plasma", "page_size": "5",
			}},
			wantPath: "/search/projects",
			body:     `[{"accession": "PXD000010", "title": "Plasma"}]`,
			contains: "PXD000010",
		},
		{
			name: "details",
			call: types.ToolCall{ToolName: ToolDetails, Parameters: map[string]string{
				"project_accession": "PXD000010",
			}},
			wantPath: "/projects/PXD000010",
			body:     `{"accession": "PXD000010", "title": "Plasma"}`,
			contains: "Plasma",
		},
		{
			name: "files",
			call: types.ToolCall{ToolName: ToolFiles, Parameters: map[string]string{
				"project_accession": "PXD000010",
			}},
			wantPath: "/projects/PXD000010/files",
			body:     `[{"fileName": "a.raw"}]`,
			contains: "a.raw",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			r := testRunner(t, func(w http.ResponseWriter, req *http.Request) {
				gotPath = req.URL.Path
				w.Write([]byte(tt.body))
			})

			out, err := r.Run(context.Background(), tt.call)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if gotPath != tt.wantPath {
				t.Errorf("path = %q, want %q", gotPath, tt.wantPath)
			}
			if !strings.Contains(string(out), tt.contains) {
				t.Errorf("result %s does not contain %q", out, tt.contains)
			}
		})
	}
}

func TestRunUnknownTool(t *testing.T) {
	r := testRunner(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	})
	_, err := r.Run(context.Background(), types.ToolCall{ToolName: "no_such_tool"})
	if err == nil || !strings.Contains(err.Error(), "unknown tool") {
		t.Fatalf("err = %v, want unknown tool error", err)
	}
}

func TestRunMissingAccession(t *testing.T) {
	r := testRunner(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	})
	for _, name := range []string{ToolDetails, ToolFiles} {
		_, err := r.Run(context.Background(), types.ToolCall{ToolName: name})
		if err == nil || !strings.Contains(err.Error(), "project_accession") {
			t.Errorf("%s: err = %v, want missing accession error", name, err)
		}
	}
}

func TestRunPropagatesUpstreamError(t *testing.T) {
	r := testRunner(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := r.Run(context.Background(), types.ToolCall{ToolName: ToolFacets})
	if err == nil || !strings.Contains(err.Error(), "HTTP 500") {
		t.Fatalf("err = %v, want HTTP 500 error", err)
	}
}
