package analyze_test

import (
	"errors"
	"testing"

	"github.com/nikbrunner/tagsense/internal/ai"
	"github.com/nikbrunner/tagsense/internal/analyze"
	"github.com/nikbrunner/tagsense/internal/model"
)

// fakeProvider returns canned suggestions per URL, or an error.
type fakeProvider struct {
	byURL map[string][]model.LabelSuggestion
	fail  bool
	seen  []ai.Input
}

func (p *fakeProvider) SuggestLabels(input ai.Input) (*ai.Response, error) {
	p.seen = append(p.seen, input)
	if p.fail {
		return nil, errors.New("provider unavailable")
	}
	return &ai.Response{Labels: p.byURL[input.URL]}, nil
}

var autoApplyOn = model.AutoApplySettings{Enabled: true, ConfidenceThreshold: 0.8, MaxLabels: 2}

func TestAnnotate_PartitionIsDisjoint(t *testing.T) {
	b := model.Bookmark{ID: "b1", URL: "https://go.dev"}
	suggestions := []model.LabelSuggestion{
		{Label: "go", Category: model.CategoryTopic, Confidence: 0.95},
		{Label: "docs", Category: model.CategoryType, Confidence: 0.5},
	}

	ab := analyze.Annotate(b, suggestions, autoApplyOn)

	if len(ab.AutoApplied)+len(ab.Remaining) != len(suggestions) {
		t.Errorf("partition does not cover input: applied %d + remaining %d != %d",
			len(ab.AutoApplied), len(ab.Remaining), len(suggestions))
	}
	for _, applied := range ab.AutoApplied {
		for _, rem := range ab.Remaining {
			if applied.Label == rem.Label && applied.Category == rem.Category {
				t.Errorf("suggestion %v present in both halves", applied)
			}
		}
	}
}

func TestAnnotateAll_ProviderFailureMeansZeroSuggestions(t *testing.T) {
	provider := &fakeProvider{fail: true}
	a := &analyze.Analyzer{Provider: provider, Settings: autoApplyOn}

	annotated := a.AnnotateAll([]model.Bookmark{{ID: "b1", URL: "https://go.dev"}})

	if len(annotated) != 1 {
		t.Fatalf("expected 1 annotated bookmark, got %d", len(annotated))
	}
	if len(annotated[0].AutoApplied) != 0 || len(annotated[0].Remaining) != 0 {
		t.Errorf("expected zero suggestions on provider failure, got %+v", annotated[0])
	}
}

func TestAnnotateAll_ExistingLabelsBlockAutoApply(t *testing.T) {
	provider := &fakeProvider{byURL: map[string][]model.LabelSuggestion{
		"https://go.dev": {{Label: "go", Category: model.CategoryTopic, Confidence: 0.99}},
	}}
	a := &analyze.Analyzer{Provider: provider, Settings: autoApplyOn}

	labeled := model.Bookmark{
		ID:  "b1",
		URL: "https://go.dev",
		Labels: []model.Label{
			{Name: "curated", Category: model.CategoryTopic, Source: model.SourceUser},
		},
	}

	annotated := a.AnnotateAll([]model.Bookmark{labeled})

	if len(annotated[0].AutoApplied) != 0 {
		t.Errorf("pre-labeled bookmark must not auto-apply, got %v", annotated[0].AutoApplied)
	}
	if len(annotated[0].Remaining) != 1 {
		t.Errorf("Remaining = %v, want the suggestion kept for review", annotated[0].Remaining)
	}
}

func TestAnnotateAll_PassesVocabularyToProvider(t *testing.T) {
	provider := &fakeProvider{}
	a := &analyze.Analyzer{Provider: provider, Settings: autoApplyOn}

	bookmarks := []model.Bookmark{
		{ID: "b1", URL: "https://a.com", Labels: []model.Label{
			{Name: "go", Category: model.CategoryTopic, Source: model.SourceUser},
		}},
		{ID: "b2", URL: "https://b.com"},
	}

	a.AnnotateAll(bookmarks)

	if len(provider.seen) != 2 {
		t.Fatalf("expected 2 provider calls, got %d", len(provider.seen))
	}
	if len(provider.seen[1].ExistingLabels) != 1 || provider.seen[1].ExistingLabels[0] != "go" {
		t.Errorf("ExistingLabels = %v, want [go]", provider.seen[1].ExistingLabels)
	}
}

func TestAnalyze_AggregatesAcrossBatch(t *testing.T) {
	provider := &fakeProvider{byURL: map[string][]model.LabelSuggestion{
		"https://a.com": {{Label: "news", Category: model.CategoryTopic, Confidence: 0.9}},
		"https://b.com": {{Label: "news", Category: model.CategoryTopic, Confidence: 0.7}},
	}}
	// auto-apply off: everything stays in remaining, all of it aggregated
	a := &analyze.Analyzer{Provider: provider, Settings: model.AutoApplySettings{}}

	_, analysis := a.Analyze([]model.Bookmark{
		{ID: "b1", URL: "https://a.com"},
		{ID: "b2", URL: "https://b.com"},
	})

	if len(analysis.LabelPatterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(analysis.LabelPatterns))
	}
	if analysis.LabelPatterns[0].Count != 2 {
		t.Errorf("Count = %d, want 2", analysis.LabelPatterns[0].Count)
	}
}
