// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/pdiddy/pride-gateway/internal/llm"
	"github.com/pdiddy/pride-gateway/pkg/types"
)

// synthesisPromptTmpl renders the tool results into a prompt asking the
// model for a markdown answer. The rules keep the model from inventing
// numbers or metadata the tools never returned.
var synthesisPromptTmpl = template.Must(template.New("synthesis").Parse(`You are the answer writer for a proteomics data archive assistant. Write a markdown answer to the user's question from the tool results below.

Rules:
- When reporting how many projects matched, use the reported total hit count, never the number of projects on the page.
- Describe projects only with fields present in the results. Never invent titles, organisms, dates, or counts.
- Present the top projects with their EBI links ({{.LinkBase}}<accession>).
- Add an "Other Project Accessions" section only when there are accessions beyond the detailed ones.
- If a tool failed, answer from the remaining results without mentioning internal errors.

Question: {{.Question}}
Intent: {{.Intent}}

Tool results:
{{range .Results}}### {{.ToolName}} ({{.Outcome}})
{{if .OK}}{{printf "%s" .Response}}{{else}}failed: {{.Err}}{{end}}

{{end}}`))

// Synthesizer writes the final answer with a language model.
type Synthesizer struct {
	Provider llm.Provider
	Timeout  time.Duration
}

// Synthesize renders the prompt and asks the model for the answer.
func (s *Synthesizer) Synthesize(ctx context.Context, question, intent string, exec *Execution) (string, error) {
	if s.Provider == nil {
		return "", ErrNoCredential
	}

	var buf bytes.Buffer
	err := synthesisPromptTmpl.Execute(&buf, struct {
		Question string
		Intent   string
		LinkBase string
		Results  []types.ToolResult
	}{question, intent, ebiProjectBase, exec.Results})
	if err != nil {
		return "", fmt.Errorf("rendering synthesis prompt: %w", err)
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	answer, err := s.Provider.Complete(callCtx, buf.String())
	if err != nil {
		return "", fmt.Errorf("synthesis call: %w", err)
	}
	return answer, nil
}

// FallbackFormat builds a deterministic markdown answer straight from
// the execution record. It is total: it always returns a non-empty
// answer, whatever succeeded or failed.
func FallbackFormat(question, intent string, exec *Execution) string {
	var sb strings.Builder

	switch {
	case exec.SearchRan:
		formatSearch(&sb, exec)
	case len(exec.Facets) > 0:
		formatFacets(&sb, exec.Facets)
	default:
		sb.WriteString("The archive could not be reached for this question. ")
		sb.WriteString("Please try again in a moment.\n")
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func formatSearch(sb *strings.Builder, exec *Execution) {
	fmt.Fprintf(sb, "Found **%d** matching projects in the PRIDE Archive.\n\n", exec.Total)
	if len(exec.AllAccessions) == 0 {
		return
	}

	sb.WriteString("## Top Projects\n\n")
	for _, acc := range exec.TopAccessions {
		fmt.Fprintf(sb, "### [%s](%s%s)\n", acc, ebiProjectBase, acc)
		detail, ok := exec.Details[acc]
		if !ok {
			sb.WriteString("\n")
			continue
		}
		if detail.Title != "" {
			fmt.Fprintf(sb, "**%s**\n\n", detail.Title)
		}
		writeList(sb, "Organisms", detail.Organisms)
		writeList(sb, "Instruments", detail.Instruments)
		writeList(sb, "Experiment types", detail.ExperimentTypes)
		if detail.SubmissionDate != "" {
			fmt.Fprintf(sb, "- Submitted: %s\n", detail.SubmissionDate)
		}
		if detail.ProjectDescription != "" {
			fmt.Fprintf(sb, "\n%s\n", detail.ProjectDescription)
		}
		sb.WriteString("\n")
	}

	if len(exec.AllAccessions) > len(exec.TopAccessions) {
		sb.WriteString("## Other Project Accessions\n\n")
		for _, acc := range exec.AllAccessions[len(exec.TopAccessions):] {
			fmt.Fprintf(sb, "- [%s](%s%s)\n", acc, ebiProjectBase, acc)
		}
	}
}

func writeList(sb *strings.Builder, label string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(sb, "- %s: %s\n", label, strings.Join(values, ", "))
}

// formatFacets lists each facet category with its most frequent values.
func formatFacets(sb *strings.Builder, facets types.FacetSet) {
	sb.WriteString("## Available PRIDE Archive Metadata\n\n")

	categories := make([]string, 0, len(facets))
	for c := range facets {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	for _, category := range categories {
		values := facets[category]
		if len(values) == 0 {
			continue
		}
		fmt.Fprintf(sb, "### %s\n", category)

		type valueCount struct {
			value string
			count int
		}
		ranked := make([]valueCount, 0, len(values))
		for v, n := range values {
			ranked = append(ranked, valueCount{v, n})
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].count != ranked[j].count {
				return ranked[i].count > ranked[j].count
			}
			return ranked[i].value < ranked[j].value
		})

		shown := ranked
		if len(shown) > 10 {
			shown = shown[:10]
		}
		for _, vc := range shown {
			fmt.Fprintf(sb, "- %s (%d projects)\n", vc.value, vc.count)
		}
		sb.WriteString("\n")
	}
}
