package fetcher_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nikbrunner/tagsense/internal/fetcher"
)

const testPage = `<!DOCTYPE html>
<html>
<head>
<title>Go Documentation</title>
<meta name="description" content="Official docs for the Go language">
<script>var noise = "ignore me";</script>
</head>
<body>
<h1>Getting started</h1>
<p>Welcome to Go.</p>
</body>
</html>`

func TestFetch_ExtractsMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(testPage))
	}))
	defer srv.Close()

	meta := fetcher.New(2 * time.Second).Fetch(srv.URL)

	if meta.Title != "Go Documentation" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.Description != "Official docs for the Go language" {
		t.Errorf("Description = %q", meta.Description)
	}
	if meta.ContentType != "text/html" {
		t.Errorf("ContentType = %q", meta.ContentType)
	}
	if !strings.Contains(meta.Content, "Getting started") {
		t.Errorf("Content preview missing body text: %q", meta.Content)
	}
	if strings.Contains(meta.Content, "ignore me") {
		t.Errorf("Content preview must skip scripts: %q", meta.Content)
	}
}

func TestFetch_NonHTMLContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	meta := fetcher.New(2 * time.Second).Fetch(srv.URL + "/papers/some-paper")

	if meta.ContentType != "application/pdf" {
		t.Errorf("ContentType = %q", meta.ContentType)
	}
	if meta.Content != "" {
		t.Errorf("Content = %q, want empty for non-HTML", meta.Content)
	}
}

func TestFetch_ServerErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	meta := fetcher.New(2 * time.Second).Fetch(srv.URL + "/broken-page")

	if meta.ContentType != "unknown" {
		t.Errorf("ContentType = %q, want unknown", meta.ContentType)
	}
	if !strings.Contains(meta.Title, "broken page") {
		t.Errorf("Title = %q, want URL-derived fallback", meta.Title)
	}
}

func TestFetch_UnreachableNeverFails(t *testing.T) {
	meta := fetcher.New(100 * time.Millisecond).Fetch("http://127.0.0.1:1/nothing-here")

	if meta.ContentType != "unknown" {
		t.Errorf("ContentType = %q, want unknown", meta.ContentType)
	}
	if meta.Title == "" {
		t.Error("fallback title must not be empty")
	}
}
