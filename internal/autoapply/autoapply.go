// Package autoapply decides which AI label suggestions are confident
// enough to attach to a bookmark without user review.
package autoapply

import (
	"sort"

	"github.com/nikbrunner/tagsense/internal/model"
)

// Decision partitions a suggestion sequence. AutoApplied and Remaining
// are disjoint and together cover the input.
type Decision struct {
	AutoApplied []model.LabelSuggestion `json:"autoApplied"`
	Remaining   []model.LabelSuggestion `json:"remaining"`
}

// Decide partitions suggestions into auto-applied and remaining ones.
// It is pure: repeated calls with identical inputs return identical
// results. Rules, first match wins:
//
//  1. auto-apply disabled: nothing applied
//  2. no confidence threshold configured: nothing applied
//  3. the bookmark already carries labels from any source: nothing
//     applied, preserving prior curation
//  4. no suggestion reaches the threshold: nothing applied
//
// Otherwise the qualifying suggestions, sorted by confidence
// descending, are applied up to MaxLabels. Remaining keeps the input
// order minus those whose label text was applied; the exclusion key is
// the label text alone, not (label, category).
func Decide(suggestions []model.LabelSuggestion, settings model.AutoApplySettings, existingLabelCount int) Decision {
	if !settings.Enabled || settings.ConfidenceThreshold <= 0 || existingLabelCount > 0 {
		return passthrough(suggestions)
	}

	var qualifying []model.LabelSuggestion
	for _, s := range suggestions {
		if s.Confidence >= settings.ConfidenceThreshold {
			qualifying = append(qualifying, s)
		}
	}
	if len(qualifying) == 0 {
		return passthrough(suggestions)
	}

	sort.SliceStable(qualifying, func(i, j int) bool {
		return qualifying[i].Confidence > qualifying[j].Confidence
	})

	maxLabels := settings.MaxLabels
	if maxLabels < 1 {
		maxLabels = 1
	}
	applied := qualifying[:min(maxLabels, len(qualifying))]

	appliedNames := make(map[string]struct{}, len(applied))
	for _, s := range applied {
		appliedNames[s.Label] = struct{}{}
	}

	remaining := make([]model.LabelSuggestion, 0, len(suggestions))
	for _, s := range suggestions {
		if _, ok := appliedNames[s.Label]; !ok {
			remaining = append(remaining, s)
		}
	}

	return Decision{AutoApplied: applied, Remaining: remaining}
}

// passthrough is the safe default: nothing applied, input untouched.
func passthrough(suggestions []model.LabelSuggestion) Decision {
	remaining := make([]model.LabelSuggestion, len(suggestions))
	copy(remaining, suggestions)
	return Decision{AutoApplied: []model.LabelSuggestion{}, Remaining: remaining}
}
