// Package report renders analysis and bulk-operation outcomes as plain
// text for the command surface.
package report

import (
	"fmt"
	"strings"

	"github.com/nikbrunner/tagsense/internal/bulk"
	"github.com/nikbrunner/tagsense/internal/duplicates"
	"github.com/nikbrunner/tagsense/internal/pattern"
)

// RenderAnalysis formats label patterns, category groupings, and batch
// statistics.
func RenderAnalysis(a pattern.Analysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Label patterns: %d\n", len(a.LabelPatterns))
	for _, p := range a.LabelPatterns {
		fmt.Fprintf(&b, "  %s (%s): %d bookmark(s), avg confidence %.2f (%s)\n",
			p.Label, p.Category, p.Count, p.AvgConfidence, p.ConfidenceBand)
	}

	fmt.Fprintf(&b, "\nCategories: %d\n", len(a.CategoryPatterns))
	for _, cp := range a.CategoryPatterns {
		fmt.Fprintf(&b, "  %s: %d label(s) across %d bookmark(s)\n",
			cp.Category, len(cp.Labels), cp.TotalBookmarks)
	}

	fmt.Fprintf(&b, "\nTotals:\n")
	fmt.Fprintf(&b, "  labels applied: %d\n", a.Stats.TotalLabels)
	fmt.Fprintf(&b, "  unique labels: %d\n", a.Stats.UniqueLabels)
	fmt.Fprintf(&b, "  labels per bookmark: %.2f\n", a.Stats.AvgLabelsPerBookmark)
	fmt.Fprintf(&b, "  patterns by band: %d high / %d medium / %d low\n",
		a.Stats.HighConfidencePatterns, a.Stats.MediumConfidencePatterns, a.Stats.LowConfidencePatterns)
	fmt.Fprintf(&b, "  distinct domains: %d\n", a.Stats.TotalDomains)

	return b.String()
}

// RenderResult formats a bulk operation outcome with its error list.
func RenderResult(r bulk.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Applied: %d, failed: %d, skipped: %d\n", r.Success, r.Failed, r.Skipped)
	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, "Errors:\n")
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "  %s: %s\n", e.BookmarkID, e.Error)
		}
	}

	return b.String()
}

// RenderDuplicates formats duplicate candidates for review.
func RenderDuplicates(candidates []duplicates.Candidate) string {
	if len(candidates) == 0 {
		return "No duplicate candidates found.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Duplicate candidates: %d\n", len(candidates))
	for _, c := range candidates {
		fmt.Fprintf(&b, "  %s (%s)\n", c.Existing.Title, c.Existing.URL)
		fmt.Fprintf(&b, "    overall %.2f (url %.2f, title %.2f, content %.2f)\n",
			c.Similarity.Overall, c.Similarity.URL, c.Similarity.Title, c.Similarity.Content)
		for _, d := range c.Differences {
			fmt.Fprintf(&b, "    - %s\n", d)
		}
	}
	return b.String()
}
