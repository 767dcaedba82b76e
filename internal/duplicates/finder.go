// Package duplicates finds likely duplicate bookmarks for a candidate
// URL against an existing collection.
package duplicates

import (
	"sort"
	"strings"

	"github.com/nikbrunner/tagsense/internal/model"
	"github.com/nikbrunner/tagsense/internal/similarity"
)

// Threshold is the minimum overall similarity for a pair to be
// reported as a duplicate candidate.
const Threshold = 0.7

// Candidate is one likely-duplicate pairing with its field scores and
// a human-readable list of what differs between the two bookmarks.
type Candidate struct {
	Existing    model.BookmarkRef `json:"existingBookmark"`
	New         model.BookmarkRef `json:"newBookmark"`
	Similarity  similarity.Scores `json:"similarity"`
	Differences []string          `json:"differences"`
}

// Find compares the candidate bookmark against every existing bookmark
// and returns candidates at or above Threshold, best match first.
// It never fails; unparsable URLs degrade through the scorer's raw
// string fallback.
func Find(candidate model.BookmarkRef, existing []model.BookmarkRef) []Candidate {
	var results []Candidate

	for _, e := range existing {
		scores := similarity.Score(candidate, e)
		if scores.Overall < Threshold {
			continue
		}

		results = append(results, Candidate{
			Existing:    e,
			New:         candidate,
			Similarity:  scores,
			Differences: describeDifferences(e, candidate),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Similarity.Overall > results[j].Similarity.Overall
	})

	return results
}

// describeDifferences compares URL, title, and description independently.
func describeDifferences(a, b model.BookmarkRef) []string {
	var diffs []string

	if a.URL != b.URL {
		if similarity.NormalizeURL(a.URL) == similarity.NormalizeURL(b.URL) {
			diffs = append(diffs, "Minor URL differences (tracking parameters, www, or trailing slash)")
		} else {
			diffs = append(diffs, "Different URLs")
		}
	}

	titleA := strings.ToLower(strings.TrimSpace(a.Title))
	titleB := strings.ToLower(strings.TrimSpace(b.Title))
	if titleA != titleB {
		diffs = append(diffs, "Different titles")
	}

	switch {
	case a.Description != "" && b.Description != "" && a.Description != b.Description:
		diffs = append(diffs, "Different descriptions")
	case (a.Description == "") != (b.Description == ""):
		diffs = append(diffs, "One has a description, the other does not")
	}

	return diffs
}
