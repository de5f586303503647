// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive is a client for the PRIDE Archive v3 REST API. It covers
// the four read paths the gateway exposes as tools: facet listing, project
// search, project detail, and project file listing.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/pride-gateway/internal/httputil"
	"github.com/pdiddy/pride-gateway/pkg/types"
)

// prideArchiveBase is the PRIDE Archive v3 API root. Declared as a var so
// tests can substitute an httptest server.
var prideArchiveBase = "https://www.ebi.ac.uk/pride/ws/archive/v3"

// Client queries the PRIDE Archive.
type Client struct {
	HTTP *http.Client
	Cfg  types.ArchiveConfig

	// BaseURL is the API root. NewClient sets it from prideArchiveBase;
	// tests point it at an httptest server.
	BaseURL string
}

// NewClient returns a Client using cfg's timeout.
func NewClient(cfg types.ArchiveConfig) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: cfg.Timeout},
		Cfg:     cfg,
		BaseURL: prideArchiveBase,
	}
}

// Facets fetches the facet catalog: every facet category with its value
// counts. facetPageSize 0 means 100, facetPage 0 is the first page.
func (c *Client) Facets(ctx context.Context, facetPageSize, facetPage int) (types.FacetSet, error) {
	if facetPageSize <= 0 {
		facetPageSize = 100
	}
	params := url.Values{
		"facetPageSize": {strconv.Itoa(facetPageSize)},
		"facetPage":     {strconv.Itoa(facetPage)},
	}

	var raw map[string]map[string]int
	if err := c.getJSON(ctx, "/facet/projects", params, &raw); err != nil {
		return nil, err
	}
	return types.FacetSet(raw), nil
}

// Search queries projects by keyword and optional filter. The filter uses
// the archive's `field==value` syntax, comma-joined for multiple fields.
// Page numbering starts at 0.
func (c *Client) Search(ctx context.Context, keyword, filter string, pageSize, page int) (types.SearchResult, error) {
	if pageSize <= 0 {
		pageSize = c.Cfg.PageSize
	}
	if pageSize <= 0 {
		pageSize = 25
	}

	params := url.Values{
		"keyword":       {keyword},
		"pageSize":      {strconv.Itoa(pageSize)},
		"page":          {strconv.Itoa(page)},
		"sortDirection": {c.sortDirection()},
		"sortFields":    {c.sortField()},
	}
	if filter != "" {
		params.Set("filter", filter)
	}

	reqURL := c.BaseURL + "/search/projects?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return types.SearchResult{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.Cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0)
	if err != nil {
		return types.SearchResult{}, fmt.Errorf("PRIDE API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.SearchResult{}, &StatusError{Path: "/search/projects", Code: resp.StatusCode}
	}

	var rows []projectRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return types.SearchResult{}, fmt.Errorf("parsing PRIDE search response: %w", err)
	}

	result := types.SearchResult{Total: len(rows)}
	if h := resp.Header.Get("X-Total-Count"); h != "" {
		if n, convErr := strconv.Atoi(h); convErr == nil {
			result.Total = n
		}
	}
	for _, row := range rows {
		result.Projects = append(result.Projects, types.ProjectSummary{
			Accession:      row.Accession,
			Title:          row.Title,
			Organisms:      row.Organisms.Names(),
			SubmissionDate: row.SubmissionDate,
		})
	}
	return result, nil
}

// Project fetches the full metadata record for one accession.
func (c *Client) Project(ctx context.Context, accession string) (types.ProjectDetail, error) {
	var row projectRow
	if err := c.getJSON(ctx, "/projects/"+url.PathEscape(accession), nil, &row); err != nil {
		return types.ProjectDetail{}, err
	}
	return types.ProjectDetail{
		Accession:          row.Accession,
		Title:              row.Title,
		ProjectDescription: row.ProjectDescription,
		Organisms:          row.Organisms.Names(),
		Instruments:        row.Instruments.Names(),
		ExperimentTypes:    row.ExperimentTypes.Names(),
		Keywords:           row.Keywords,
		SubmissionDate:     row.SubmissionDate,
		PublicationDate:    row.PublicationDate,
	}, nil
}

// Files lists the files attached to one project, optionally restricted to
// a file type (e.g. "RAW", "RESULT").
func (c *Client) Files(ctx context.Context, accession, fileType string) ([]types.ProjectFile, error) {
	var params url.Values
	if fileType != "" {
		params = url.Values{"fileType": {fileType}}
	}

	var rows []fileRow
	if err := c.getJSON(ctx, "/projects/"+url.PathEscape(accession)+"/files", params, &rows); err != nil {
		return nil, err
	}

	files := make([]types.ProjectFile, 0, len(rows))
	for _, row := range rows {
		files = append(files, types.ProjectFile{
			FileName:     row.FileName,
			FileType:     row.FileCategory.Value,
			FileSize:     row.FileSizeBytes,
			DownloadLink: row.downloadLink(),
		})
	}
	return files, nil
}

// getJSON performs a GET against path and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.BaseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.Cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0)
	if err != nil {
		return fmt.Errorf("PRIDE API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Path: path, Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing PRIDE response for %s: %w", path, err)
	}
	return nil
}

func (c *Client) sortDirection() string {
	if c.Cfg.SortDirection != "" {
		return c.Cfg.SortDirection
	}
	return "DESC"
}

func (c *Client) sortField() string {
	if c.Cfg.SortField != "" {
		return c.Cfg.SortField
	}
	return "downloadCount"
}

// StatusError is returned for any non-200 archive response so callers can
// report the upstream status code.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("PRIDE API returned HTTP %d for %s", e.Code, e.Path)
}

// PRIDE API JSON structures. The v3 API mixes plain strings and
// {name, accession} objects for list-valued fields depending on the
// endpoint, so nameList accepts both.
type projectRow struct {
	Accession          string   `json:"accession"`
	Title              string   `json:"title"`
	ProjectDescription string   `json:"projectDescription"`
	Organisms          nameList `json:"organisms"`
	Instruments        nameList `json:"instruments"`
	ExperimentTypes    nameList `json:"experimentTypes"`
	Keywords           []string `json:"keywords"`
	SubmissionDate     string   `json:"submissionDate"`
	PublicationDate    string   `json:"publicationDate"`
}

type fileRow struct {
	FileName            string        `json:"fileName"`
	FileSizeBytes       int64         `json:"fileSizeBytes"`
	FileCategory        categoryValue `json:"fileCategory"`
	PublicFileLocations []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"publicFileLocations"`
}

// downloadLink prefers the FTP location, falling back to the first one.
func (f fileRow) downloadLink() string {
	for _, loc := range f.PublicFileLocations {
		if strings.Contains(strings.ToLower(loc.Name), "ftp") {
			return loc.Value
		}
	}
	if len(f.PublicFileLocations) > 0 {
		return f.PublicFileLocations[0].Value
	}
	return ""
}

type categoryValue struct {
	Value string `json:"value"`
}

// UnmarshalJSON accepts either a bare string or a {value: ...} object.
func (c *categoryValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Value = s
		return nil
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	c.Value = obj.Value
	return nil
}

// nameList is a list of names that may arrive as plain strings or as
// {name: ...} objects.
type nameList []string

func (n *nameList) UnmarshalJSON(data []byte) error {
	var plain []string
	if err := json.Unmarshal(data, &plain); err == nil {
		*n = plain
		return nil
	}
	var objs []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &objs); err != nil {
		return err
	}
	names := make([]string, 0, len(objs))
	for _, o := range objs {
		if o.Name != "" {
			names = append(names, o.Name)
		}
	}
	*n = names
	return nil
}

// Names returns the list as a plain string slice.
func (n nameList) Names() []string { return []string(n) }
