// Package narrative turns a scoring summary into a short written report.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ReadinessBot/internal/scoring"
)

// ErrEmptyResponse is returned when the text service answers without content.
var ErrEmptyResponse = errors.New("narrative: empty response")

// Generator produces report text for a summary.
type Generator interface {
	Generate(ctx context.Context, s scoring.Summary) (string, error)
}

const systemPrompt = `You are an organizational excellence consultant.
Write a short readiness report (at most 150 words) for the organization
based on the evaluation summary. Name the strongest and the weakest area
and give two concrete next steps. Plain text, no markdown headings.`

// Prompt renders the summary as the user message sent to the text service.
func Prompt(s scoring.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Domain: %s\n", s.DomainName)
	fmt.Fprintf(&b, "Total score: %.2f of %d (%d%%, band %s)\n",
		s.Total, scoring.MaxScore, s.Percentage, s.Band)
	fmt.Fprintf(&b, "Answered criteria: %d of %d\n", s.Progress.Current, s.Progress.Total)
	b.WriteString("Elements:\n")
	for _, e := range s.Elements {
		fmt.Fprintf(&b, "- %s: %.2f of %.2f (%d%%)\n", e.Name, e.Score, e.Max, e.Percentage())
	}
	if s.Strongest != nil {
		fmt.Fprintf(&b, "Strongest: %s\n", s.Strongest.Name)
	}
	if s.Weakest != nil {
		fmt.Fprintf(&b, "Weakest: %s\n", s.Weakest.Name)
	}
	return b.String()
}
