// Package analyze runs the suggestion pipeline over a batch of
// bookmarks: gather suggestions, partition them through the auto-apply
// rules, and aggregate label patterns. All state is passed explicitly;
// the package holds none.
package analyze

import (
	"log"

	"github.com/nikbrunner/tagsense/internal/ai"
	"github.com/nikbrunner/tagsense/internal/autoapply"
	"github.com/nikbrunner/tagsense/internal/fetcher"
	"github.com/nikbrunner/tagsense/internal/model"
	"github.com/nikbrunner/tagsense/internal/pattern"
)

// Provider abstracts the AI suggestion source.
type Provider interface {
	SuggestLabels(input ai.Input) (*ai.Response, error)
}

// ContentFetcher abstracts best-effort page metadata retrieval.
type ContentFetcher interface {
	Fetch(rawURL string) fetcher.Metadata
}

// Analyzer wires the pipeline's collaborators and settings together.
type Analyzer struct {
	Provider Provider
	// Fetcher is optional; nil skips content retrieval and the
	// provider sees only URL and title.
	Fetcher  ContentFetcher
	Settings model.AutoApplySettings
}

// Annotate partitions precomputed suggestions for one bookmark. The
// bookmark's current label count gates auto-apply.
func Annotate(b model.Bookmark, suggestions []model.LabelSuggestion, settings model.AutoApplySettings) model.AnnotatedBookmark {
	decision := autoapply.Decide(suggestions, settings, len(b.Labels))
	return model.AnnotatedBookmark{
		Bookmark:    b,
		AutoApplied: decision.AutoApplied,
		Remaining:   decision.Remaining,
	}
}

// AnnotateAll obtains suggestions for each bookmark and partitions
// them. A provider failure yields zero suggestions for that bookmark
// and is logged, never surfaced.
func (a *Analyzer) AnnotateAll(bookmarks []model.Bookmark) []model.AnnotatedBookmark {
	vocabulary := existingLabelNames(bookmarks)

	annotated := make([]model.AnnotatedBookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		annotated = append(annotated, Annotate(b, a.suggest(b, vocabulary), a.Settings))
	}
	return annotated
}

// Analyze runs the full pipeline and aggregates patterns over the
// annotated batch.
func (a *Analyzer) Analyze(bookmarks []model.Bookmark) ([]model.AnnotatedBookmark, pattern.Analysis) {
	annotated := a.AnnotateAll(bookmarks)
	return annotated, pattern.Aggregate(annotated)
}

// suggest builds the provider input for one bookmark and fetches its
// suggestions.
func (a *Analyzer) suggest(b model.Bookmark, vocabulary []string) []model.LabelSuggestion {
	input := ai.Input{
		URL:            b.URL,
		Title:          b.Title,
		Content:        b.Description,
		ExistingLabels: vocabulary,
	}

	if a.Fetcher != nil {
		meta := a.Fetcher.Fetch(b.URL)
		if input.Title == "" {
			input.Title = meta.Title
		}
		if meta.Content != "" {
			input.Content = meta.Content
		} else if input.Content == "" {
			input.Content = meta.Description
		}
	}

	resp, err := a.Provider.SuggestLabels(input)
	if err != nil {
		log.Printf("warning: suggestions for %s unavailable: %v", b.URL, err)
		return nil
	}
	return resp.Labels
}

// existingLabelNames collects the distinct label vocabulary across the
// batch, in first-seen order.
func existingLabelNames(bookmarks []model.Bookmark) []string {
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
	return names
}
