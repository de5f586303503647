// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pdiddy/pride-gateway/pkg/types"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	old := prideArchiveBase
	prideArchiveBase = ts.URL
	t.Cleanup(func() { prideArchiveBase = old })

	return NewClient(types.ArchiveConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "pride-gateway-test/0.1"},
		PageSize:   25,
	})
}

func TestFacets(t *testing.T) {
	var gotQuery string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/facet/projects" {
			t.Errorf("path = %q, want /facet/projects", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"organisms": {"Homo sapiens (human)": 4521, "Mus musculus (mouse)": 1873},
			"diseases": {"breast cancer": 312}
		}`))
	})

	facets, err := c.Facets(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("Facets: %v", err)
	}

	if got := facets["organisms"]["Mus musculus (mouse)"]; got != 1873 {
		t.Errorf("mouse count = %d, want 1873", got)
	}
	if got := facets["diseases"]["breast cancer"]; got != 312 {
		t.Errorf("breast cancer count = %d, want 312", got)
	}
	if gotQuery != "facetPage=0&facetPageSize=100" {
		t.Errorf("query = %q, want default paging", gotQuery)
	}
}

func TestSearch(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("keyword") != "mouse proteome" {
			t.Errorf("keyword = %q", q.Get("keyword"))
		}
		if q.Get("filter") != "organisms==Mus musculus (mouse)" {
			t.Errorf("filter = %q", q.Get("filter"))
		}
		if q.Get("sortDirection") != "DESC" || q.Get("sortFields") != "downloadCount" {
			t.Errorf("sort params = %q / %q", q.Get("sortDirection"), q.Get("sortFields"))
		}
		w.Header().Set("X-Total-Count", "18")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"accession": "PXD001001", "title": "Mouse liver proteome",
			 "organisms": [{"name": "Mus musculus (mouse)"}],
			 "submissionDate": "2024-03-01"},
			{"accession": "PXD001002", "title": "Mouse brain proteome",
			 "organisms": ["Mus musculus (mouse)"]}
		]`))
	})

	res, err := c.Search(context.Background(), "mouse proteome", "organisms==Mus musculus (mouse)", 5, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if res.Total != 18 {
		t.Errorf("Total = %d, want 18 (from X-Total-Count)", res.Total)
	}
	if len(res.Projects) != 2 {
		t.Fatalf("got %d projects, want 2", len(res.Projects))
	}
	if res.Projects[0].Accession != "PXD001001" {
		t.Errorf("first accession = %q", res.Projects[0].Accession)
	}
	// Object-form and string-form organisms both decode.
	for i, p := range res.Projects {
		if len(p.Organisms) != 1 || p.Organisms[0] != "Mus musculus (mouse)" {
			t.Errorf("project %d organisms = %v", i, p.Organisms)
		}
	}
}

func TestSearchTotalFallsBackToPageLength(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"accession": "PXD000001", "title": "one"}]`))
	})

	res, err := c.Search(context.Background(), "anything", "", 25, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Total != 1 {
		t.Errorf("Total = %d, want 1 without X-Total-Count", res.Total)
	}
}

func TestProject(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/PXD012345" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{
			"accession": "PXD012345",
			"title": "Human plasma deep proteome",
			"projectDescription": "TMT quantification of plasma.",
			"organisms": [{"name": "Homo sapiens (human)"}],
			"instruments": [{"name": "Orbitrap Fusion"}],
			"experimentTypes": [{"name": "Shotgun proteomics"}],
			"keywords": ["plasma", "TMT"],
			"submissionDate": "2023-11-20",
			"publicationDate": "2024-01-15"
		}`))
	})

	detail, err := c.Project(context.Background(), "PXD012345")
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if detail.Title != "Human plasma deep proteome" {
		t.Errorf("Title = %q", detail.Title)
	}
	if len(detail.Instruments) != 1 || detail.Instruments[0] != "Orbitrap Fusion" {
		t.Errorf("Instruments = %v", detail.Instruments)
	}
	if detail.PublicationDate != "2024-01-15" {
		t.Errorf("PublicationDate = %q", detail.PublicationDate)
	}
}

func TestFiles(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/PXD012345/files" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("fileType") != "RAW" {
			t.Errorf("fileType = %q", r.URL.Query().Get("fileType"))
		}
		w.Write([]byte(`[
			{"fileName": "run01.raw", "fileSizeBytes": 1048576,
			 "fileCategory": {"value": "RAW"},
			 "publicFileLocations": [
				{"name": "Aspera Protocol", "value": "aspera://x/run01.raw"},
				{"name": "FTP Protocol", "value": "ftp://ftp.pride.ebi.ac.uk/run01.raw"}
			 ]}
		]`))
	})

	files, err := c.Files(context.Background(), "PXD012345", "RAW")
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("got %d files, want 1", len(files))
	}
	if files[0].DownloadLink != "ftp://ftp.pride.ebi.ac.uk/run01.raw" {
		t.Errorf("DownloadLink = %q, want the FTP location", files[0].DownloadLink)
	}
	if files[0].FileType != "RAW" {
		t.Errorf("FileType = %q", files[0].FileType)
	}
}

func TestNon200ReturnsStatusError(t *testing.T) {
	tests := []struct {
		name string
		code int
		call func(c *Client) error
	}{
		{"facets 500", http.StatusInternalServerError, func(c *Client) error {
			_, err := c.Facets(context.Background(), 0, 0)
			return err
		}},
		{"search 502", http.StatusBadGateway, func(c *Client) error {
			_, err := c.Search(context.Background(), "x", "", 25, 0)
			return err
		}},
		{"project 404", http.StatusNotFound, func(c *Client) error {
			_, err := c.Project(context.Background(), "PXD999999")
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.code)
			})
			err := tt.call(c)
			if err == nil {
				t.Fatal("expected error")
			}
			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("error %T is not a StatusError", err)
			}
			if se.Code != tt.code {
				t.Errorf("Code = %d, want %d", se.Code, tt.code)
			}
		})
	}
}
