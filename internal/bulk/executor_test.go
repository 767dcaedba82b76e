package bulk_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nikbrunner/tagsense/internal/bulk"
	"github.com/nikbrunner/tagsense/internal/model"
	"github.com/nikbrunner/tagsense/internal/pattern"
)

// fakeStore records AddLabels calls and fails for configured IDs.
type fakeStore struct {
	calls   []string
	labels  map[string][]model.Label
	failIDs map[string]bool
}

func newFakeStore(failIDs ...string) *fakeStore {
	fail := make(map[string]bool)
	for _, id := range failIDs {
		fail[id] = true
	}
	return &fakeStore{labels: make(map[string][]model.Label), failIDs: fail}
}

func (s *fakeStore) AddLabels(id string, labels []model.Label) error {
	s.calls = append(s.calls, id)
	if s.failIDs[id] {
		return errors.New("store rejected update")
	}
	s.labels[id] = append(s.labels[id], labels...)
	return nil
}

func annotated(id, title string, remaining ...model.LabelSuggestion) model.AnnotatedBookmark {
	return model.AnnotatedBookmark{
		Bookmark:  model.Bookmark{ID: id, Title: title, URL: "https://example.com/" + id},
		Remaining: remaining,
	}
}

func testExecutor(store bulk.Store) *bulk.Executor {
	return &bulk.Executor{Store: store, Delay: time.Millisecond}
}

func TestApplyLabels_FailureIsolation(t *testing.T) {
	store := newFakeStore("b2")
	exec := testExecutor(store)

	bookmarks := []model.AnnotatedBookmark{
		annotated("b1", "First"),
		annotated("b2", "Second"),
		annotated("b3", "Third"),
	}
	labels := []model.LabelSuggestion{
		{Label: "go", Category: model.CategoryTopic, Confidence: 0.9},
	}

	result := exec.ApplyLabels(context.Background(), bookmarks, labels)

	if result.Success != 2 || result.Failed != 1 || result.Skipped != 0 {
		t.Errorf("result = %+v, want success 2 / failed 1 / skipped 0", result)
	}
	if len(result.Errors) != 1 || result.Errors[0].BookmarkID != "b2" {
		t.Errorf("Errors = %v, want one entry for b2", result.Errors)
	}
	// All three items must have been attempted, in caller order.
	if len(store.calls) != 3 || store.calls[0] != "b1" || store.calls[2] != "b3" {
		t.Errorf("calls = %v, want [b1 b2 b3]", store.calls)
	}
}

func TestApplyLabels_EmptyLabelSetShortCircuits(t *testing.T) {
	store := newFakeStore()
	exec := testExecutor(store)

	result := exec.ApplyLabels(context.Background(), []model.AnnotatedBookmark{annotated("b1", "First")}, nil)

	if result.Success != 0 || result.Failed != 0 || result.Skipped != 0 {
		t.Errorf("result = %+v, want empty", result)
	}
	if len(store.calls) != 0 {
		t.Errorf("expected no store calls, got %v", store.calls)
	}
}

func TestAcceptHighConfidence_SkipsUnqualified(t *testing.T) {
	store := newFakeStore()
	exec := testExecutor(store)

	bookmarks := []model.AnnotatedBookmark{
		annotated("b1", "First",
			model.LabelSuggestion{Label: "go", Category: model.CategoryTopic, Confidence: 0.9},
			model.LabelSuggestion{Label: "meh", Category: model.CategoryTopic, Confidence: 0.4},
		),
		annotated("b2", "Second",
			model.LabelSuggestion{Label: "low", Category: model.CategoryTopic, Confidence: 0.5},
		),
	}

	result := exec.AcceptHighConfidence(context.Background(), bookmarks, 0)

	if result.Success != 1 || result.Skipped != 1 || result.Failed != 0 {
		t.Errorf("result = %+v, want success 1 / skipped 1", result)
	}
	if len(store.labels["b1"]) != 1 || store.labels["b1"][0].Name != "go" {
		t.Fatalf("b1 labels = %v, want just the high-confidence one", store.labels["b1"])
	}
	if store.labels["b1"][0].Source != model.SourceAI {
		t.Errorf("applied label source = %q, want ai", store.labels["b1"][0].Source)
	}
}

func TestAcceptAll_EmptyRemainingSkips(t *testing.T) {
	store := newFakeStore()
	exec := testExecutor(store)

	bookmarks := []model.AnnotatedBookmark{
		annotated("b1", "First",
			model.LabelSuggestion{Label: "go", Category: model.CategoryTopic, Confidence: 0.3},
		),
		annotated("b2", "Second"),
	}

	result := exec.AcceptAll(context.Background(), bookmarks)

	if result.Success != 1 || result.Skipped != 1 {
		t.Errorf("result = %+v, want success 1 / skipped 1", result)
	}
}

func TestApplyPattern_FiltersMembership(t *testing.T) {
	store := newFakeStore()
	exec := testExecutor(store)

	p := pattern.LabelPattern{
		Label:       "news",
		Category:    model.CategoryTopic,
		BookmarkIDs: []string{"b1", "b2"},
	}
	bookmarks := []model.AnnotatedBookmark{
		// member, still carries the label
		annotated("b1", "First", model.LabelSuggestion{Label: "news", Category: model.CategoryTopic, Confidence: 0.8}),
		// member, but the label was already moved out of remaining
		annotated("b2", "Second"),
		// carries the label but is not a pattern member
		annotated("b3", "Third", model.LabelSuggestion{Label: "news", Category: model.CategoryTopic, Confidence: 0.8}),
		// member, same label text in a different category does not count
		annotated("b4", "Fourth", model.LabelSuggestion{Label: "news", Category: model.CategoryType, Confidence: 0.8}),
	}

	result := exec.ApplyPattern(context.Background(), p, bookmarks)

	if result.Success != 1 || result.Failed != 0 || result.Skipped != 0 {
		t.Errorf("result = %+v, want exactly one success", result)
	}
	if len(store.calls) != 1 || store.calls[0] != "b1" {
		t.Errorf("calls = %v, want [b1]", store.calls)
	}
}

func TestApplyPattern_NoCandidatesShortCircuits(t *testing.T) {
	store := newFakeStore()
	exec := testExecutor(store)

	p := pattern.LabelPattern{Label: "news", Category: model.CategoryTopic, BookmarkIDs: []string{"absent"}}

	result := exec.ApplyPattern(context.Background(), p, []model.AnnotatedBookmark{annotated("b1", "First")})

	if result.Success != 0 || result.Failed != 0 || result.Skipped != 0 {
		t.Errorf("result = %+v, want empty", result)
	}
	if len(store.calls) != 0 {
		t.Errorf("expected no store calls, got %v", store.calls)
	}
}

func TestRejectAll_NeverCallsStore(t *testing.T) {
	store := newFakeStore()
	exec := testExecutor(store)

	bookmarks := []model.AnnotatedBookmark{
		annotated("b1", "First", model.LabelSuggestion{Label: "go", Category: model.CategoryTopic, Confidence: 0.9}),
		annotated("b2", "Second"),
	}

	result := exec.RejectAll(bookmarks)

	if result.Success != 2 {
		t.Errorf("Success = %d, want 2", result.Success)
	}
	if len(store.calls) != 0 {
		t.Errorf("RejectAll must not touch the store, got calls %v", store.calls)
	}
}

func TestRun_ProgressSequence(t *testing.T) {
	store := newFakeStore()
	var seen []bulk.Progress
	exec := &bulk.Executor{
		Store:      store,
		Delay:      time.Millisecond,
		OnProgress: func(p bulk.Progress) { seen = append(seen, p) },
	}

	bookmarks := []model.AnnotatedBookmark{
		annotated("b1", "First"),
		annotated("b2", "Second"),
	}
	labels := []model.LabelSuggestion{{Label: "go", Category: model.CategoryTopic, Confidence: 0.9}}

	exec.ApplyLabels(context.Background(), bookmarks, labels)

	if len(seen) != 2 {
		t.Fatalf("expected 2 progress reports, got %d", len(seen))
	}
	if seen[0].Completed != 1 || seen[0].Total != 2 || seen[0].Current != "First" {
		t.Errorf("first progress = %+v", seen[0])
	}
	if seen[1].Completed != 2 || seen[1].Current != "Second" {
		t.Errorf("second progress = %+v", seen[1])
	}
}

func TestRun_CancellationBetweenItems(t *testing.T) {
	store := newFakeStore()
	ctx, cancel := context.WithCancel(context.Background())

	exec := &bulk.Executor{
		Store: store,
		Delay: time.Millisecond,
		OnProgress: func(p bulk.Progress) {
			if p.Completed == 1 {
				cancel()
			}
		},
	}

	bookmarks := []model.AnnotatedBookmark{
		annotated("b1", "First"),
		annotated("b2", "Second"),
		annotated("b3", "Third"),
	}
	labels := []model.LabelSuggestion{{Label: "go", Category: model.CategoryTopic, Confidence: 0.9}}

	result := exec.ApplyLabels(ctx, bookmarks, labels)

	if result.Success != 1 {
		t.Errorf("Success = %d, want 1 before cancellation", result.Success)
	}
	if len(store.calls) != 1 {
		t.Errorf("calls = %v, want only the first item", store.calls)
	}
}
