package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Sources maps a source name to the feed URLs published under it.
type Sources map[string][]string

// LoadSources reads a sources file. Both the JSON layout
//
//	{"The New York Times": ["https://rss.nytimes.com/services/xml/rss/nyt/World.xml"]}
//
// and the equivalent YAML mapping are accepted.
func LoadSources(path string) (Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var sources Sources
	if err := yaml.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("parse sources: %w", err)
	}

	for name, feeds := range sources {
		if name == "" {
			return nil, fmt.Errorf("parse sources: empty source name")
		}
		for _, u := range feeds {
			if u == "" {
				return nil, fmt.Errorf("parse sources: empty feed url for %q", name)
			}
		}
	}

	return sources, nil
}
