package config

// Subscription describes a feed to register at startup. Registration is the
// administrative side of the feed lifecycle; the collection pipeline only
// mutates health and metadata fields afterwards.
type Subscription struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Active *bool  `yaml:"active"` // nil means "leave as is"
}

type subscriptionsFile struct {
	Feeds []Subscription `yaml:"feeds"`
}
