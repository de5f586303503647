// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FacetSet maps a facet category (e.g. "organisms") to its value counts.
type FacetSet map[string]map[string]int

// ProjectSummary is one row of a project search result.
type ProjectSummary struct {
	// Accession is the PRIDE project accession (e.g. "PXD012345").
	Accession string `json:"accession" yaml:"accession"`

	// Title is the project title.
	Title string `json:"title" yaml:"title"`

	// Organisms lists the organism names attached to the project.
	Organisms []string `json:"organisms,omitempty" yaml:"organisms,omitempty"`

	// SubmissionDate is the submission date as reported by the archive.
	SubmissionDate string `json:"submissionDate,omitempty" yaml:"submission_date,omitempty"`
}

// SearchResult is a page of project search hits plus the archive's
// reported total across all pages.
type SearchResult struct {
	// Projects is the current page of hits.
	Projects []ProjectSummary `json:"projects" yaml:"projects"`

	// Total is the number of hits across all pages. When the archive
	// omits the count header it falls back to len(Projects).
	Total int `json:"total" yaml:"total"`
}

// ProjectDetail holds the full metadata record for one project.
type ProjectDetail struct {
	Accession          string   `json:"accession" yaml:"accession"`
	Title              string   `json:"title" yaml:"title"`
	ProjectDescription string   `json:"projectDescription,omitempty" yaml:"project_description,omitempty"`
	Organisms          []string `json:"organisms,omitempty" yaml:"organisms,omitempty"`
	Instruments        []string `json:"instruments,omitempty" yaml:"instruments,omitempty"`
	ExperimentTypes    []string `json:"experimentTypes,omitempty" yaml:"experiment_types,omitempty"`
	Keywords           []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	SubmissionDate     string   `json:"submissionDate,omitempty" yaml:"submission_date,omitempty"`
	PublicationDate    string   `json:"publicationDate,omitempty" yaml:"publication_date,omitempty"`
}

// ProjectFile describes one file attached to a project.
type ProjectFile struct {
	FileName     string `json:"fileName" yaml:"file_name"`
	FileType     string `json:"fileCategory,omitempty" yaml:"file_type,omitempty"`
	FileSize     int64  `json:"fileSizeBytes,omitempty" yaml:"file_size,omitempty"`
	DownloadLink string `json:"downloadLink,omitempty" yaml:"download_link,omitempty"`
}
