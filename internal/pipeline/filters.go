// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/pride-gateway/pkg/types"
)

// yearPattern matches a four-digit year of this century in the question.
var yearPattern = regexp.MustCompile(`20\d{2}`)

// filterCategories are the facet categories eligible for value matching,
// in priority order.
var filterCategories = []string{"organisms", "diseases", "experimentTypes", "keywords"}

// InferFilters derives archive search filters from the question and the
// facet catalog. A year mentioned in the question becomes a
// submissionDate filter when the archive actually has that year; facet
// values that overlap the question text (either direction,
// case-insensitive) become field==value filters. A value overlaps when
// it appears in the question, or when a question word of four letters or
// more appears in the value. At most max filters are returned,
// comma-joined in the archive's filter syntax.
//
// Facet values within a category are visited in sorted order so the same
// question always yields the same filter string.
func InferFilters(question string, facets types.FacetSet, max int) string {
	if max <= 0 {
		max = 5
	}

	lower := strings.ToLower(question)
	words := questionWords(lower)
	var filters []string

	if year := yearPattern.FindString(question); year != "" {
		for value := range facets["submissionDate"] {
			if strings.HasPrefix(value, year) {
				filters = append(filters, "submissionDate=="+year)
				break
			}
		}
	}

	for _, category := range filterCategories {
		values := facets[category]
		if len(values) == 0 {
			continue
		}

		sorted := make([]string, 0, len(values))
		for value := range values {
			sorted = append(sorted, value)
		}
		sort.Strings(sorted)

		for _, value := range sorted {
			if len(filters) >= max {
				return strings.Join(filters[:max], ",")
			}
			if valueMatches(lower, words, strings.ToLower(value)) {
				filters = append(filters, category+"=="+value)
			}
		}
	}

	if len(filters) > max {
		filters = filters[:max]
	}
	return strings.Join(filters, ",")
}

func valueMatches(question string, words []string, value string) bool {
	if strings.Contains(question, value) {
		return true
	}
	for _, w := range words {
		if strings.Contains(value, w) {
			return true
		}
	}
	return false
}

// questionWords splits the lower-cased question into words of four
// letters or more; shorter words match too many facet values.
func questionWords(lower string) []string {
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	var words []string
	for _, f := range fields {
		if len(f) >= 4 {
			words = append(words, f)
		}
	}
	return words
}
