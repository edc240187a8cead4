package feed

import (
	"strings"
	"testing"
)

func TestSanitizeStripsMarkup(t *testing.T) {
	input := `<p>Hello <b>world</b>, this is <a href="https://example.com">a link</a>.</p>`
	expected := "Hello world, this is a link."

	if got := Sanitize(input); got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestSanitizeRemovesDangerousElements(t *testing.T) {
	input := `<p>Before</p><script>alert("xss")</script><style>p { color: red }</style>` +
		`<iframe src="https://evil.example"></iframe><p>After</p>`

	got := Sanitize(input)
	if strings.Contains(got, "alert") {
		t.Errorf("Expected script content removed, got %q", got)
	}
	if strings.Contains(got, "color") {
		t.Errorf("Expected style content removed, got %q", got)
	}
	if !strings.Contains(got, "Before") || !strings.Contains(got, "After") {
		t.Errorf("Expected surrounding text preserved, got %q", got)
	}
}

func TestSanitizePlainTextUnchanged(t *testing.T) {
	input := "Plain text without any markup."
	if got := Sanitize(input); got != input {
		t.Errorf("Expected plain text unchanged, got %q", got)
	}
}

func TestSanitizeCollapsesWhitespace(t *testing.T) {
	input := "<p>Multiple    spaces\n\nand\tnewlines</p>"
	expected := "Multiple spaces and newlines"

	if got := Sanitize(input); got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestSanitizeEmptyInput(t *testing.T) {
	if got := Sanitize(""); got != "" {
		t.Errorf("Expected empty output for empty input, got %q", got)
	}
	if got := Sanitize("<p></p>"); got != "" {
		t.Errorf("Expected empty output for empty element, got %q", got)
	}
}

func TestSanitizeMalformedHTML(t *testing.T) {
	// Sanitization is total: broken markup still yields its text.
	input := "<p>Unclosed paragraph <b>bold text"
	got := Sanitize(input)
	if !strings.Contains(got, "Unclosed paragraph") || !strings.Contains(got, "bold text") {
		t.Errorf("Expected text extracted from malformed markup, got %q", got)
	}
}

func TestSanitizeBlocksPreservesParagraphBreaks(t *testing.T) {
	input := "<article><h1>Title</h1><p>First paragraph.</p><p>Second paragraph.</p></article>"
	got := SanitizeBlocks(input)

	lines := strings.Split(got, "\n")
	nonEmpty := 0
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			nonEmpty++
		}
	}
	if nonEmpty != 3 {
		t.Errorf("Expected 3 text lines, got %d in %q", nonEmpty, got)
	}
	if strings.Contains(got, "<") {
		t.Errorf("Expected no markup in output, got %q", got)
	}
}

func TestSanitizeBlocksCollapsesBlankRuns(t *testing.T) {
	input := "<div><p>One</p><div></div><div></div><div></div><p>Two</p></div>"
	got := SanitizeBlocks(input)

	if strings.Contains(got, "\n\n\n") {
		t.Errorf("Expected blank runs collapsed, got %q", got)
	}
	if !strings.Contains(got, "One") || !strings.Contains(got, "Two") {
		t.Errorf("Expected both paragraphs present, got %q", got)
	}
}

func TestSanitizeBlocksSkipsScripts(t *testing.T) {
	input := "<p>Visible</p><script>var hidden = true;</script>"
	got := SanitizeBlocks(input)

	if strings.Contains(got, "hidden") {
		t.Errorf("Expected script content removed, got %q", got)
	}
	if got == "" || !strings.Contains(got, "Visible") {
		t.Errorf("Expected visible text kept, got %q", got)
	}
}
