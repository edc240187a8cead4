package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetchSuccess(t *testing.T) {
	body := `<?xml version="1.0"?><rss version="2.0"><channel><title>T</title></channel></rss>`
	var gotUserAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "feedkeep-test/1.0")
	data, err := fetcher.Fetch(context.Background(), server.URL)

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if string(data) != body {
		t.Errorf("Expected body %q, got %q", body, string(data))
	}
	if gotUserAgent != "feedkeep-test/1.0" {
		t.Errorf("Expected configured user agent, got %q", gotUserAgent)
	}
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "feedkeep-test/1.0")
	_, err := fetcher.Fetch(context.Background(), server.URL)

	if err == nil {
		t.Fatal("Expected error for 404 response")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected FetchError, got: %T", err)
	}
	if fetchErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got: %d", fetchErr.StatusCode)
	}
	if fetchErr.URL != server.URL {
		t.Errorf("Expected URL %q, got %q", server.URL, fetchErr.URL)
	}
}

func TestFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte("too late"))
	}))
	defer server.Close()

	fetcher := NewFetcher(100*time.Millisecond, "feedkeep-test/1.0")

	start := time.Now()
	_, err := fetcher.Fetch(context.Background(), server.URL)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("Expected timeout error")
	}
	if elapsed > 400*time.Millisecond {
		t.Errorf("Expected fetch to abort near the deadline, took: %v", elapsed)
	}
}

func TestFetchInvalidURL(t *testing.T) {
	fetcher := NewFetcher(time.Second, "feedkeep-test/1.0")
	if _, err := fetcher.Fetch(context.Background(), "://not-a-url"); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestFetchArticleUsesBrowserIdentity(t *testing.T) {
	var gotUserAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body><p>Article</p></body></html>"))
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "feedkeep-test/1.0")
	data, err := fetcher.FetchArticle(context.Background(), server.URL)

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(data) == 0 {
		t.Error("Expected non-empty article body")
	}
	// Article pages get a browser identity; many sites reject bot agents.
	if !strings.Contains(gotUserAgent, "Mozilla") {
		t.Errorf("Expected browser user agent, got %q", gotUserAgent)
	}
}

func TestFetchArticleRejectsNonHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "feedkeep-test/1.0")
	if _, err := fetcher.FetchArticle(context.Background(), server.URL); err == nil {
		t.Error("Expected error for non-HTML content type")
	}
}
