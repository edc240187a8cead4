package database

import (
	"time"
)

type Feed struct {
	ID          int64
	Name        string
	URL         string // Feed URL, unique
	Title       string // From the most recent successful parse
	Description string
	SiteURL     string
	Language    string
	LastFetched *time.Time
	Active      bool
	ErrorCount  int
	LastError   string // Empty when NULL
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Entry struct {
	ID         string // UUID, generated at creation
	FeedID     int64
	Title      string
	Link       string
	Published  time.Time
	Summary    string // Sanitized plain text
	Content    string // Sanitized plain text, replaceable by full-article extraction
	Author     string
	OriginalID string // Feed-native item id, or the link when absent
	Extras     *EntryExtras
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// EntryExtras is the structured metadata bag persisted as JSON. Only known
// keys are kept; unrecognized feed extensions are dropped.
type EntryExtras struct {
	Image      string      `json:"image,omitempty"`
	Enclosures []Enclosure `json:"enclosures,omitempty"`
	Media      []string    `json:"media,omitempty"`
	Geo        *GeoPoint   `json:"geo,omitempty"`
}

type Enclosure struct {
	URL    string `json:"url"`
	Type   string `json:"type,omitempty"`
	Length int64  `json:"length,omitempty"`
}

type GeoPoint struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

type Tag struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
