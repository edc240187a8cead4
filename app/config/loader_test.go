package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSubscriptions(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "subscriptions.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write subscriptions file: %v", err)
	}
	return path
}

func TestLoadSubscriptions(t *testing.T) {
	path := writeSubscriptions(t, `
feeds:
  - name: Example News
    url: https://example.com/feed.xml
  - name: Other Blog
    url: https://other.example/atom.xml
    active: false
`)

	subs, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("Expected 2 subscriptions, got: %d", len(subs))
	}

	if subs[0].Name != "Example News" || subs[0].URL != "https://example.com/feed.xml" {
		t.Errorf("Unexpected first subscription: %+v", subs[0])
	}
	if subs[0].Active != nil {
		t.Error("Expected unset active flag to stay nil")
	}
	if subs[1].Active == nil || *subs[1].Active {
		t.Error("Expected explicit active=false preserved")
	}
}

func TestLoadDeduplicatesByURL(t *testing.T) {
	path := writeSubscriptions(t, `
feeds:
  - name: First
    url: https://example.com/feed.xml
  - name: Second
    url: https://example.com/feed.xml
`)

	subs, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("Expected 1 subscription after dedup, got: %d", len(subs))
	}
	if subs[0].Name != "First" {
		t.Errorf("Expected first occurrence kept, got: %q", subs[0].Name)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	subs, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error for empty path, got: %v", err)
	}
	if subs != nil {
		t.Errorf("Expected no subscriptions, got: %v", subs)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeSubscriptions(t, "feeds: [::not yaml")
	if _, err := Load(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoadRejectsInvalidURL(t *testing.T) {
	cases := []string{
		"feeds:\n  - name: No URL\n",
		"feeds:\n  - url: ftp://example.com/feed.xml\n",
	}
	for _, content := range cases {
		path := writeSubscriptions(t, content)
		if _, err := Load(path); err == nil {
			t.Errorf("Expected validation error for %q", content)
		}
	}
}
