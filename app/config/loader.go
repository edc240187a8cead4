package config

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the subscriptions file and returns the feed list. An empty path
// yields no subscriptions, which is a valid configuration: feeds can also be
// created directly in the database.
func Load(path string) ([]Subscription, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subscriptions file: %w", err)
	}

	var file subscriptionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse subscriptions file: %w", err)
	}

	seen := make(map[string]bool, len(file.Feeds))
	subs := make([]Subscription, 0, len(file.Feeds))
	for i, sub := range file.Feeds {
		if err := validate(sub); err != nil {
			return nil, fmt.Errorf("invalid subscription %d: %w", i+1, err)
		}
		if seen[sub.URL] {
			continue
		}
		seen[sub.URL] = true
		subs = append(subs, sub)
	}

	return subs, nil
}

func validate(sub Subscription) error {
	if sub.URL == "" {
		return fmt.Errorf("url is required")
	}
	u, err := url.Parse(sub.URL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", sub.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %q must use http or https", sub.URL)
	}
	return nil
}
