// Package pattern folds per-bookmark label suggestions into
// cross-bookmark patterns with aggregate statistics.
package pattern

import (
	"log"
	"net/url"
	"sort"

	"github.com/nikbrunner/tagsense/internal/model"
)

// LabelPattern generalizes one (label, category) pair across bookmarks.
type LabelPattern struct {
	Label          string               `json:"label"`
	Category       model.Category       `json:"category"`
	BookmarkIDs    []string             `json:"bookmarkIds"` // unique, sorted
	Count          int                  `json:"count"`
	AvgConfidence  float64              `json:"avgConfidence"`
	ConfidenceBand model.ConfidenceBand `json:"confidenceBand"`
}

// CategoryPattern groups label patterns of one category.
type CategoryPattern struct {
	Category       model.Category `json:"category"`
	Labels         []LabelPattern `json:"labels"` // sorted by count descending
	TotalBookmarks int            `json:"totalBookmarks"`
}

// Stats summarizes a whole aggregation pass.
type Stats struct {
	TotalLabels              int     `json:"totalLabels"`
	UniqueLabels             int     `json:"uniqueLabels"`
	AvgLabelsPerBookmark     float64 `json:"avgLabelsPerBookmark"`
	HighConfidencePatterns   int     `json:"highConfidencePatterns"`
	MediumConfidencePatterns int     `json:"mediumConfidencePatterns"`
	LowConfidencePatterns    int     `json:"lowConfidencePatterns"`
	TotalDomains             int     `json:"totalDomains"`
}

// Analysis is the full output of one aggregation pass.
type Analysis struct {
	LabelPatterns    []LabelPattern    `json:"labelPatterns"`
	CategoryPatterns []CategoryPattern `json:"categoryPatterns"`
	Stats            Stats             `json:"stats"`
}

type patternKey struct {
	label    string
	category model.Category
}

type patternAccum struct {
	bookmarkIDs map[string]struct{}
	confidences []float64
}

// Aggregate recomputes patterns and statistics from scratch for a batch
// of annotated bookmarks. It is pure: running it twice on an unchanged
// batch yields identical output.
func Aggregate(batch []model.AnnotatedBookmark) Analysis {
	accums := make(map[patternKey]*patternAccum)

	for _, ab := range batch {
		for _, s := range ab.AllSuggestions() {
			key := patternKey{label: s.Label, category: s.Category}
			acc, ok := accums[key]
			if !ok {
				acc = &patternAccum{bookmarkIDs: make(map[string]struct{})}
				accums[key] = acc
			}
			// A bookmark counts once toward membership, but every
			// occurrence's confidence contributes to the mean.
			acc.bookmarkIDs[ab.Bookmark.ID] = struct{}{}
			acc.confidences = append(acc.confidences, s.Confidence)
		}
	}

	labelPatterns := make([]LabelPattern, 0, len(accums))
	for key, acc := range accums {
		ids := make([]string, 0, len(acc.bookmarkIDs))
		for id := range acc.bookmarkIDs {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		sum := 0.0
		for _, c := range acc.confidences {
			sum += c
		}
		avg := sum / float64(len(acc.confidences))

		labelPatterns = append(labelPatterns, LabelPattern{
			Label:          key.label,
			Category:       key.category,
			BookmarkIDs:    ids,
			Count:          len(ids),
			AvgConfidence:  avg,
			ConfidenceBand: model.BandFor(avg),
		})
	}

	// Count descending; deterministic tie-break so repeated runs on the
	// same batch produce identical output.
	sort.Slice(labelPatterns, func(i, j int) bool {
		if labelPatterns[i].Count != labelPatterns[j].Count {
			return labelPatterns[i].Count > labelPatterns[j].Count
		}
		if labelPatterns[i].Label != labelPatterns[j].Label {
			return labelPatterns[i].Label < labelPatterns[j].Label
		}
		return labelPatterns[i].Category < labelPatterns[j].Category
	})

	return Analysis{
		LabelPatterns:    labelPatterns,
		CategoryPatterns: groupByCategory(labelPatterns),
		Stats:            computeStats(batch, labelPatterns),
	}
}

// groupByCategory builds one CategoryPattern per category present in
// the label patterns, preserving the count-descending label order.
func groupByCategory(labelPatterns []LabelPattern) []CategoryPattern {
	byCategory := make(map[model.Category][]LabelPattern)
	for _, p := range labelPatterns {
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	categories := make([]model.Category, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	result := make([]CategoryPattern, 0, len(categories))
	for _, c := range categories {
		patterns := byCategory[c]

		union := make(map[string]struct{})
		for _, p := range patterns {
			for _, id := range p.BookmarkIDs {
				union[id] = struct{}{}
			}
		}

		result = append(result, CategoryPattern{
			Category:       c,
			Labels:         patterns,
			TotalBookmarks: len(union),
		})
	}
	return result
}

func computeStats(batch []model.AnnotatedBookmark, labelPatterns []LabelPattern) Stats {
	stats := Stats{UniqueLabels: len(labelPatterns)}

	for _, p := range labelPatterns {
		stats.TotalLabels += p.Count
		switch p.ConfidenceBand {
		case model.BandHigh:
			stats.HighConfidencePatterns++
		case model.BandMedium:
			stats.MediumConfidencePatterns++
		default:
			stats.LowConfidencePatterns++
		}
	}

	if len(batch) > 0 {
		stats.AvgLabelsPerBookmark = float64(stats.TotalLabels) / float64(len(batch))
	}

	domains := make(map[string]struct{})
	for _, ab := range batch {
		u, err := url.Parse(ab.Bookmark.URL)
		if err != nil || u.Hostname() == "" {
			log.Printf("warning: skipping unparsable URL in domain stats: %q", ab.Bookmark.URL)
			continue
		}
		domains[u.Hostname()] = struct{}{}
	}
	stats.TotalDomains = len(domains)

	return stats
}
