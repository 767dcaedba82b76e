package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nikbrunner/tagsense/internal/ai"
	"github.com/nikbrunner/tagsense/internal/analyze"
	"github.com/nikbrunner/tagsense/internal/bulk"
	"github.com/nikbrunner/tagsense/internal/duplicates"
	"github.com/nikbrunner/tagsense/internal/fetcher"
	"github.com/nikbrunner/tagsense/internal/model"
	"github.com/nikbrunner/tagsense/internal/report"
	"github.com/nikbrunner/tagsense/internal/search"
	"github.com/nikbrunner/tagsense/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		return
	}

	switch os.Args[1] {
	case "help", "--help", "-h":
		printHelp()
	case "analyze":
		runAnalyze()
	case "dupes":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Usage: tagsense dupes <url> [title]\n")
			os.Exit(1)
		}
		title := ""
		if len(os.Args) >= 4 {
			title = strings.Join(os.Args[3:], " ")
		}
		runDupes(os.Args[2], title)
	case "apply":
		if len(os.Args) < 4 {
			fmt.Fprintf(os.Stderr, "Usage: tagsense apply <label[:category]> <query>\n")
			os.Exit(1)
		}
		runApply(os.Args[2], strings.Join(os.Args[3:], " "))
	case "accept":
		if len(os.Args) < 4 || (os.Args[2] != "all" && os.Args[2] != "high") {
			fmt.Fprintf(os.Stderr, "Usage: tagsense accept <all|high> <query>\n")
			os.Exit(1)
		}
		runAccept(os.Args[2], strings.Join(os.Args[3:], " "))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	help := `tagsense - label intelligence for your bookmarks

Usage:
  tagsense analyze               Suggest labels for all bookmarks and report patterns
  tagsense dupes <url> [title]   Find likely duplicates of a URL in the collection
  tagsense apply <label[:category]> <query>
                                 Bulk-apply a label to fuzzy-matched bookmarks
  tagsense accept <all|high> <query>
                                 Persist remaining suggestions for matched bookmarks
  tagsense help                  Show this help

Categories: topic (default), type, priority

Configuration:
  ~/.config/tagsense/config.json        auto-apply settings
  ~/.config/tagsense/bookmarks.db       bookmark store (SQLite)
  ANTHROPIC_API_KEY                     suggestion provider credentials
`
	fmt.Print(help)
}

// openStore opens the configured store or exits.
func openStore() storage.Store {
	store, err := storage.OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		os.Exit(1)
	}
	return store
}

// loadSettings loads auto-apply settings, falling back to defaults.
func loadSettings() model.AutoApplySettings {
	path, err := storage.DefaultConfigFilePath()
	if err != nil {
		return model.DefaultAutoApplySettings()
	}
	config, err := storage.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: using default settings: %v\n", err)
		return model.DefaultAutoApplySettings()
	}
	return config.AutoApply
}

// newAnalyzer builds the suggestion pipeline or exits if the provider
// is not configured.
func newAnalyzer() *analyze.Analyzer {
	client, err := ai.NewClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return &analyze.Analyzer{
		Provider: client,
		Fetcher:  fetcher.New(10 * time.Second),
		Settings: loadSettings(),
	}
}

// newExecutor builds a bulk executor with a terminal progress line.
func newExecutor(store storage.Store) *bulk.Executor {
	return &bulk.Executor{
		Store: store,
		OnProgress: func(p bulk.Progress) {
			fmt.Printf("\r[%d/%d] %s\x1b[K", p.Completed, p.Total, p.Current)
			if p.Completed == p.Total {
				fmt.Println()
			}
		},
	}
}

func runAnalyze() {
	store := openStore()
	defer store.Close()

	bookmarks, err := store.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing bookmarks: %v\n", err)
		os.Exit(1)
	}
	if len(bookmarks) == 0 {
		fmt.Println("No bookmarks to analyze.")
		return
	}

	analyzer := newAnalyzer()
	annotated, analysis := analyzer.Analyze(bookmarks)

	// Persist whatever the auto-apply rules accepted.
	exec := &bulk.Executor{Store: store}
	autoApplied := 0
	for _, ab := range annotated {
		if len(ab.AutoApplied) == 0 {
			continue
		}
		result := exec.ApplyLabels(
			context.Background(),
			[]model.AnnotatedBookmark{ab},
			ab.AutoApplied,
		)
		autoApplied += result.Success
	}
	if autoApplied > 0 {
		fmt.Printf("Auto-applied labels on %d bookmark(s).\n\n", autoApplied)
	}

	fmt.Print(report.RenderAnalysis(analysis))
}

func runDupes(rawURL, title string) {
	store := openStore()
	defer store.Close()

	bookmarks, err := store.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing bookmarks: %v\n", err)
		os.Exit(1)
	}

	existing := make([]model.BookmarkRef, len(bookmarks))
	for i, b := range bookmarks {
		existing[i] = b.Ref()
	}

	candidate := model.BookmarkRef{URL: rawURL, Title: title}
	fmt.Print(report.RenderDuplicates(duplicates.Find(candidate, existing)))
}

func runApply(labelSpec, query string) {
	name, category := parseLabelSpec(labelSpec)

	store := openStore()
	defer store.Close()

	targets := matchBookmarks(store, query)
	if len(targets) == 0 {
		fmt.Println("No bookmarks match the query.")
		return
	}

	label := model.LabelSuggestion{Label: name, Category: category, Confidence: 1.0}
	result := newExecutor(store).ApplyLabels(context.Background(), targets, []model.LabelSuggestion{label})

	fmt.Print(report.RenderResult(result))
}

func runAccept(mode, query string) {
	store := openStore()
	defer store.Close()

	targets := matchBookmarks(store, query)
	if len(targets) == 0 {
		fmt.Println("No bookmarks match the query.")
		return
	}

	analyzer := newAnalyzer()
	plain := make([]model.Bookmark, len(targets))
	for i, t := range targets {
		plain[i] = t.Bookmark
	}
	annotated := analyzer.AnnotateAll(plain)

	exec := newExecutor(store)
	var result bulk.Result
	if mode == "high" {
		result = exec.AcceptHighConfidence(context.Background(), annotated, bulk.DefaultHighConfidenceThreshold)
	} else {
		result = exec.AcceptAll(context.Background(), annotated)
	}

	fmt.Print(report.RenderResult(result))
}

// matchBookmarks fuzzy-matches the query against bookmark titles.
func matchBookmarks(store storage.Store, query string) []model.AnnotatedBookmark {
	bookmarks, err := store.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing bookmarks: %v\n", err)
		os.Exit(1)
	}

	results := search.FuzzySearchBookmarks(bookmarks, query)
	targets := make([]model.AnnotatedBookmark, len(results))
	for i, r := range results {
		targets[i] = model.AnnotatedBookmark{Bookmark: *r.Bookmark}
	}
	return targets
}

// parseLabelSpec splits "name:category"; the category defaults to topic.
func parseLabelSpec(spec string) (string, model.Category) {
	name, categoryStr, found := strings.Cut(spec, ":")
	if !found {
		return name, model.CategoryTopic
	}

	switch model.Category(categoryStr) {
	case model.CategoryTopic, model.CategoryType, model.CategoryPriority:
		return name, model.Category(categoryStr)
	default:
		fmt.Fprintf(os.Stderr, "Unknown category %q, using topic\n", categoryStr)
		return name, model.CategoryTopic
	}
}
