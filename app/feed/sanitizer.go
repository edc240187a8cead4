package feed

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Sanitization never fails: malformed HTML is parsed best-effort and plain
// text input passes through unchanged modulo whitespace normalization.

var skipSelector = "script,style,noscript,template,iframe"

var skipElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true, "iframe": true,
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"fieldset": true, "figcaption": true, "figure": true, "footer": true,
	"form": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "header": true, "hr": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "td": true, "th": true, "tr": true, "ul": true,
}

var multiNewline = regexp.MustCompile(`\n{3,}`)

// Sanitize strips markup from an HTML fragment and joins the remaining text
// with single spaces. Used for feed item summaries and content.
func Sanitize(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc.Find(skipSelector).Remove()

	return strings.Join(strings.Fields(doc.Text()), " ")
}

// SanitizeBlocks strips markup while keeping block-level elements on their
// own lines, with runs of blank lines collapsed. Used for full-article text.
func SanitizeBlocks(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return Sanitize(fragment)
	}

	var w blockWriter
	for _, node := range doc.Selection.Nodes {
		w.walk(node)
	}
	w.flush()

	text := strings.Join(w.lines, "\n")
	text = multiNewline.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

type blockWriter struct {
	lines   []string
	current []string
}

func (w *blockWriter) flush() {
	w.lines = append(w.lines, strings.Join(w.current, " "))
	w.current = nil
}

func (w *blockWriter) walk(n *html.Node) {
	if n.Type == html.TextNode {
		w.current = append(w.current, strings.Fields(n.Data)...)
		return
	}

	if n.Type == html.ElementNode && skipElements[n.Data] {
		return
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		w.flush()
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}

	if block {
		w.flush()
	}
}
