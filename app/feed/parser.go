package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
	"golang.org/x/text/language"
)

// Parser turns raw feed bytes into normalized metadata and items. Malformed
// input is handled best-effort: a strict parse failure triggers a repair
// pass, and the caller is told via the warning flag so it can log without
// failing the pipeline.
type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses the feed. The returned bool reports non-conformant input that
// was recovered; an error means nothing could be extracted at all.
func (p *Parser) Run(data []byte) (*Metadata, []Item, bool, error) {
	warning := false

	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		parsed, err = p.gofeedParser.Parse(bytes.NewReader(repairXML(data)))
		if err != nil {
			return nil, nil, false, fmt.Errorf("failed to parse feed: %w", err)
		}
		warning = true
	}

	metadata := &Metadata{
		Title:       parsed.Title,
		Link:        parsed.Link,
		Description: parsed.Description,
		Language:    normalizeLanguage(parsed.Language),
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		items = append(items, p.normalizeItem(item))
	}

	return metadata, items, warning, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Item {
	normalized := Item{
		GUID:    item.GUID,
		Title:   item.Title,
		Link:    item.Link,
		Summary: item.Description,
		// Explicit content wins over the summary-derived fallback. The
		// summary above is taken independently of this resolution.
		Content: cmp.Or(item.Content, item.Description),
		Author:  extractAuthor(item),
		Tags:    item.Categories,
		Extras:  extractExtras(item),
	}

	normalized.Published = resolvePublished(item)

	return normalized
}

// resolvePublished applies the date policy: pre-parsed timestamp first,
// free-text parsing second, nil (caller substitutes ingestion time) last.
// An unparsable date never rejects an item.
func resolvePublished(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed
	}

	raw := cmp.Or(strings.TrimSpace(item.Published), strings.TrimSpace(item.Updated))
	if raw == "" {
		return nil
	}

	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return nil
	}

	return &t
}

func extractAuthor(item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		author := item.Authors[0]
		if name := strings.TrimSpace(author.Name); name != "" {
			return name
		}
		return strings.TrimSpace(author.Email)
	}
	if item.Author != nil {
		if name := strings.TrimSpace(item.Author.Name); name != "" {
			return name
		}
		return strings.TrimSpace(item.Author.Email)
	}
	return ""
}

func extractExtras(item *gofeed.Item) ItemExtras {
	var extras ItemExtras

	if item.Image != nil {
		extras.Image = item.Image.URL
	}

	for _, enclosure := range item.Enclosures {
		if enclosure == nil || enclosure.URL == "" {
			continue
		}
		e := Enclosure{URL: enclosure.URL, Type: enclosure.Type}
		if enclosure.Length != "" {
			if length, err := strconv.ParseInt(enclosure.Length, 10, 64); err == nil {
				e.Length = length
			}
		}
		extras.Enclosures = append(extras.Enclosures, e)
	}

	for _, content := range item.Extensions["media"]["content"] {
		if url := content.Attrs["url"]; url != "" {
			extras.Media = append(extras.Media, url)
		}
	}

	extras.Geo = extractGeo(item)

	return extras
}

func extractGeo(item *gofeed.Item) *GeoPoint {
	geoExt := item.Extensions["geo"]
	if geoExt == nil {
		return nil
	}

	latExts, longExts := geoExt["lat"], geoExt["long"]
	if len(latExts) == 0 || len(longExts) == 0 {
		return nil
	}

	lat, latErr := strconv.ParseFloat(strings.TrimSpace(latExts[0].Value), 64)
	long, longErr := strconv.ParseFloat(strings.TrimSpace(longExts[0].Value), 64)
	if latErr != nil || longErr != nil {
		return nil
	}

	return &GeoPoint{Lat: lat, Long: long}
}

// normalizeLanguage canonicalizes BCP 47 tags ("en-us" -> "en-US") and keeps
// the raw value when it does not parse as one.
func normalizeLanguage(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return ""
	}
	if tag, err := language.Parse(lang); err == nil {
		return tag.String()
	}
	return lang
}

// repairXML is the lenient fallback for feeds that are not well-formed:
// control characters illegal in XML are dropped and bare ampersands escaped.
func repairXML(data []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(data))

	for i := 0; i < len(data); i++ {
		c := data[i]
		if c < 0x20 && c != '\t' && c != '\n' && c != '\r' {
			continue
		}
		if c == '&' && !isEntityStart(data[i+1:]) {
			buf.WriteString("&amp;")
			continue
		}
		buf.WriteByte(c)
	}

	return buf.Bytes()
}

func isEntityStart(rest []byte) bool {
	limit := 12
	if len(rest) < limit {
		limit = len(rest)
	}
	for j := 0; j < limit; j++ {
		c := rest[j]
		if c == ';' {
			return j > 0
		}
		isNameByte := c == '#' || (c >= '0' && c <= '9') ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !isNameByte {
			return false
		}
	}
	return false
}
