package normalize

import (
	"slices"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Tags returns the union of already-clean known tags and entry terms,
// deduplicated and sorted so stored values are stable.
func Tags(known []string, terms []string) []string {
	seen := make(map[string]struct{}, len(known)+len(terms))
	tags := []string{}
	for _, group := range [][]string{known, terms} {
		for _, t := range group {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	slices.Sort(tags)
	return tags
}

// EntryTerms returns the category terms of a feed entry.
func EntryTerms(item *gofeed.Item) []string {
	if item == nil {
		return nil
	}
	return item.Categories
}
