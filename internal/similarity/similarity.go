// Package similarity scores how alike two bookmarks are across their
// URL, title, and content fields.
package similarity

import (
	"net/url"
	"strings"

	"github.com/nikbrunner/tagsense/internal/model"
)

// Scores holds per-field and overall similarity for a bookmark pair.
// All values are in [0,1].
type Scores struct {
	URL     float64 `json:"url"`
	Title   float64 `json:"title"`
	Content float64 `json:"content"`
	Overall float64 `json:"overall"`
}

// Field weights. URL dominates because it is the strongest duplicate signal.
const (
	urlWeight     = 0.5
	titleWeight   = 0.3
	contentWeight = 0.2
)

// trackingParams are query parameters stripped during URL normalization.
var trackingParams = []string{
	"utm_source",
	"utm_medium",
	"utm_campaign",
	"utm_content",
	"utm_term",
	"fbclid",
	"gclid",
}

// Score compares two bookmarks field by field. It has no side effects
// and never fails; malformed URLs degrade to raw string comparison.
func Score(a, b model.BookmarkRef) Scores {
	normA := NormalizeURL(a.URL)
	normB := NormalizeURL(b.URL)

	urlScore := 1.0
	if normA != normB {
		urlScore = StringSimilarity(normA, normB)
	}

	titleScore := StringSimilarity(
		strings.ToLower(strings.TrimSpace(a.Title)),
		strings.ToLower(strings.TrimSpace(b.Title)),
	)

	// Content only contributes when both sides have something to compare.
	contentScore := 0.0
	if a.Description != "" && b.Description != "" {
		contentScore = StringSimilarity(
			strings.ToLower(a.Description),
			strings.ToLower(b.Description),
		)
	}

	return Scores{
		URL:     urlScore,
		Title:   titleScore,
		Content: contentScore,
		Overall: urlWeight*urlScore + titleWeight*titleScore + contentWeight*contentScore,
	}
}

// NormalizeURL canonicalizes a URL for comparison: lowercase, tracking
// parameters removed, trailing slash dropped, leading "www." stripped.
// Unparsable URLs fall back to the raw lowercased string.
func NormalizeURL(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))

	u, err := url.Parse(lowered)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return lowered
	}

	query := u.Query()
	for _, param := range trackingParams {
		query.Del(param)
	}

	host := strings.TrimPrefix(u.Host, "www.")

	path := strings.TrimSuffix(u.Path, "/")
	if path == "" {
		path = "/"
	}

	normalized := u.Scheme + "://" + host + path
	if encoded := query.Encode(); encoded != "" {
		normalized += "?" + encoded
	}
	return normalized
}

// StringSimilarity returns 1 - editDistance/maxLen in [0,1]. Two equal
// strings (including two empty ones) score 1.0.
func StringSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	maxLen := max(len(r1), len(r2))
	if maxLen == 0 {
		return 1.0
	}

	return 1.0 - float64(levenshtein(r1, r2))/float64(maxLen)
}

// levenshtein computes the classic edit distance with unit costs,
// using a two-row rolling table.
func levenshtein(r1, r2 []rune) int {
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}
