package feed

import (
	"time"
)

// Metadata is the feed-level result of a parse. Every field is best-effort;
// callers keep their previous values when a field comes back empty.
type Metadata struct {
	Title       string
	Link        string
	Description string
	Language    string
}

// Item is one raw syndicated unit as recovered from the wire. Summary and
// Content still carry HTML; sanitization happens at persistence time.
type Item struct {
	GUID      string // Feed-native identifier, may be empty
	Title     string
	Link      string
	Published *time.Time // nil when no date could be resolved
	Summary   string     // Raw summary/description HTML
	Content   string     // Resolved content HTML (content > description)
	Author    string
	Tags      []string
	Extras    ItemExtras
}

// ItemExtras carries the known-key metadata extensions of an item. Unknown
// extension data is dropped, not preserved blindly.
type ItemExtras struct {
	Image      string
	Enclosures []Enclosure
	Media      []string
	Geo        *GeoPoint
}

type Enclosure struct {
	URL    string
	Type   string
	Length int64
}

type GeoPoint struct {
	Lat  float64
	Long float64
}
