package search

import (
	"github.com/nikbrunner/tagsense/internal/model"
	"github.com/sahilm/fuzzy"
)

// Result represents a fuzzy search match.
type Result struct {
	Bookmark       *model.Bookmark
	MatchedIndexes []int
	Score          int
}

// bookmarkTitles implements fuzzy.Source for a bookmark slice.
type bookmarkTitles []*model.Bookmark

func (bt bookmarkTitles) String(i int) string {
	return bt[i].Title
}

func (bt bookmarkTitles) Len() int {
	return len(bt)
}

// FuzzySearchBookmarks searches bookmarks by title using fuzzy matching.
// Returns results sorted by match score (best first).
func FuzzySearchBookmarks(bookmarks []model.Bookmark, query string) []Result {
	if query == "" {
		return nil
	}

	// Build slice of bookmark pointers
	source := make(bookmarkTitles, len(bookmarks))
	for i := range bookmarks {
		source[i] = &bookmarks[i]
	}

	matches := fuzzy.FindFrom(query, source)

	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Bookmark:       source[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}

// FuzzySearchLabels matches the query against the distinct label names
// carried by the bookmarks, best match first.
func FuzzySearchLabels(bookmarks []model.Bookmark, query string) []string {
	if query == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var names []string
	for _, b := range bookmarks {
		for _, l := range b.Labels {
			if _, ok := seen[l.Name]; ok {
				continue
			}
			seen[l.Name] = struct{}{}
			names = append(names, l.Name)
		}
	}

	matches := fuzzy.Find(query, names)

	result := make([]string, len(matches))
	for i, m := range matches {
		result[i] = m.Str
	}
	return result
}
