// Package bulk applies or rejects label sets across many bookmarks,
// one store mutation at a time, isolating per-item failures.
package bulk

import (
	"context"
	"time"

	"github.com/nikbrunner/tagsense/internal/model"
	"github.com/nikbrunner/tagsense/internal/pattern"
)

// Store is the mutation surface the executor drives. Implementations
// must tolerate repeated calls with the same label set.
type Store interface {
	AddLabels(id string, labels []model.Label) error
}

// DefaultDelay is the pause between store mutations. Items are applied
// sequentially to respect rate limits of the downstream store.
const DefaultDelay = 50 * time.Millisecond

// DefaultHighConfidenceThreshold gates AcceptHighConfidence when the
// caller passes no threshold.
const DefaultHighConfidenceThreshold = model.HighConfidenceCutoff

// Progress is reported to the observer after each processed item.
type Progress struct {
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Current   string `json:"current"` // title of the current item
}

// ProgressFunc observes progress. It is invoked synchronously between
// items and must return quickly.
type ProgressFunc func(Progress)

// ItemError records one failed store mutation.
type ItemError struct {
	BookmarkID string `json:"bookmarkId"`
	Error      string `json:"error"`
}

// Result accumulates the outcome of one bulk operation. Failures are
// never retried automatically.
type Result struct {
	Success int         `json:"success"`
	Failed  int         `json:"failed"`
	Skipped int         `json:"skipped"`
	Errors  []ItemError `json:"errors"`
}

// Executor runs bulk label operations against a store.
type Executor struct {
	Store Store
	// Delay between items; DefaultDelay if zero.
	Delay time.Duration
	// OnProgress is optional; nil means no progress reporting.
	OnProgress ProgressFunc
}

// item is one unit of work: a bookmark and the labels to attach to it.
// An item with no labels is counted as skipped.
type item struct {
	bookmark model.Bookmark
	labels   []model.LabelSuggestion
}

// ApplyLabels attaches a fixed label set to every listed bookmark.
func (e *Executor) ApplyLabels(ctx context.Context, bookmarks []model.AnnotatedBookmark, labels []model.LabelSuggestion) Result {
	if len(labels) == 0 {
		return emptyResult()
	}

	items := make([]item, 0, len(bookmarks))
	for _, ab := range bookmarks {
		items = append(items, item{bookmark: ab.Bookmark, labels: labels})
	}
	return e.run(ctx, items)
}

// AcceptHighConfidence applies each bookmark's remaining labels at or
// above threshold. A threshold of zero or less means
// DefaultHighConfidenceThreshold. Bookmarks with no qualifying labels
// are skipped, not failed.
func (e *Executor) AcceptHighConfidence(ctx context.Context, bookmarks []model.AnnotatedBookmark, threshold float64) Result {
	if threshold <= 0 {
		threshold = DefaultHighConfidenceThreshold
	}

	items := make([]item, 0, len(bookmarks))
	for _, ab := range bookmarks {
		var qualifying []model.LabelSuggestion
		for _, s := range ab.Remaining {
			if s.Confidence >= threshold {
				qualifying = append(qualifying, s)
			}
		}
		items = append(items, item{bookmark: ab.Bookmark, labels: qualifying})
	}
	return e.run(ctx, items)
}

// AcceptAll applies every remaining label per bookmark. An empty
// remaining list counts as skipped.
func (e *Executor) AcceptAll(ctx context.Context, bookmarks []model.AnnotatedBookmark) Result {
	items := make([]item, 0, len(bookmarks))
	for _, ab := range bookmarks {
		items = append(items, item{bookmark: ab.Bookmark, labels: ab.Remaining})
	}
	return e.run(ctx, items)
}

// ApplyPattern applies one pattern's label to the bookmarks that are
// members of the pattern and still carry that exact (label, category)
// among their remaining labels.
func (e *Executor) ApplyPattern(ctx context.Context, p pattern.LabelPattern, bookmarks []model.AnnotatedBookmark) Result {
	members := make(map[string]struct{}, len(p.BookmarkIDs))
	for _, id := range p.BookmarkIDs {
		members[id] = struct{}{}
	}

	var items []item
	for _, ab := range bookmarks {
		if _, ok := members[ab.Bookmark.ID]; !ok {
			continue
		}
		for _, s := range ab.Remaining {
			if s.Label == p.Label && s.Category == p.Category {
				items = append(items, item{bookmark: ab.Bookmark, labels: []model.LabelSuggestion{s}})
				break
			}
		}
	}
	return e.run(ctx, items)
}

// RejectAll discards the bookmarks' remaining suggestions. Rejection is
// ephemeral: nothing is persisted and the store is never called.
func (e *Executor) RejectAll(bookmarks []model.AnnotatedBookmark) Result {
	result := emptyResult()
	result.Success = len(bookmarks)
	return result
}

// run processes items strictly sequentially: one store mutation in
// flight at a time, a pause between items, progress after each. A
// failed item is recorded and the batch continues. Cancellation is
// honored between items; the accumulated result is returned as-is.
func (e *Executor) run(ctx context.Context, items []item) Result {
	result := emptyResult()
	if len(items) == 0 {
		return result
	}

	for i, it := range items {
		if ctx.Err() != nil {
			break
		}

		switch {
		case len(it.labels) == 0:
			result.Skipped++
		default:
			if err := e.Store.AddLabels(it.bookmark.ID, toLabels(it.labels)); err != nil {
				result.Failed++
				result.Errors = append(result.Errors, ItemError{
					BookmarkID: it.bookmark.ID,
					Error:      err.Error(),
				})
			} else {
				result.Success++
			}
		}

		if e.OnProgress != nil {
			e.OnProgress(Progress{
				Total:     len(items),
				Completed: i + 1,
				Current:   it.bookmark.Title,
			})
		}

		if i < len(items)-1 {
			e.pause(ctx)
		}
	}

	return result
}

// pause waits the inter-item delay, or returns early on cancellation.
func (e *Executor) pause(ctx context.Context) {
	delay := e.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func toLabels(suggestions []model.LabelSuggestion) []model.Label {
	labels := make([]model.Label, len(suggestions))
	for i, s := range suggestions {
		labels[i] = model.Label{
			Name:       s.Label,
			Category:   s.Category,
			Source:     model.SourceAI,
			Confidence: s.Confidence,
		}
	}
	return labels
}

func emptyResult() Result {
	return Result{Errors: []ItemError{}}
}
