// Package normalize turns the inconsistent author and tag representations
// found in feed entries into canonical string lists.
package normalize

import (
	"strings"
	"unicode"

	"github.com/mmcdole/gofeed"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Authors parses a free-form byline such as "By BEN HUBBARD and HWAIDA SAAD"
// into ["Ben Hubbard", "Hwaida Saad"]. An empty byline yields an empty,
// non-nil slice.
func Authors(byline string) []string {
	authors := []string{}

	names := strings.ToLower(strings.TrimSpace(byline))
	if names == "" {
		return authors
	}
	names = strings.TrimPrefix(names, "by ")

	parts := strings.Split(names, ",")
	if last := parts[len(parts)-1]; strings.Contains(last, " and ") {
		parts = append(parts[:len(parts)-1], strings.Split(last, " and ")...)
	}

	// Casers keep state and must not be shared across goroutines.
	title := cases.Title(language.English)
	for _, name := range parts {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		authors = append(authors, capitalizeAfterApostrophe(title.String(name)))
	}
	return authors
}

// capitalizeAfterApostrophe turns "O'neil" into "O'Neil". cases.Title treats
// the apostrophe as part of the word.
func capitalizeAfterApostrophe(name string) string {
	runes := []rune(name)
	for i := 2; i < len(runes); i++ {
		if (runes[i-1] == '\'' || runes[i-1] == '\u2019') && unicode.IsLetter(runes[i-2]) {
			runes[i] = unicode.ToUpper(runes[i])
		}
	}
	return string(runes)
}

// EntryAuthors picks the byline of a feed entry. The structured author name
// wins; feeds that only list several authors get them joined so Authors can
// split them again; Dublin Core creator is the last resort.
func EntryAuthors(item *gofeed.Item) []string {
	if item == nil {
		return []string{}
	}
	return Authors(entryByline(item))
}

func entryByline(item *gofeed.Item) string {
	if item.Author != nil && strings.TrimSpace(item.Author.Name) != "" {
		return item.Author.Name
	}

	var names []string
	for _, p := range item.Authors {
		if p != nil && strings.TrimSpace(p.Name) != "" {
			names = append(names, p.Name)
		}
	}
	if len(names) > 0 {
		return strings.Join(names, ", ")
	}

	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
		return strings.Join(item.DublinCoreExt.Creator, ", ")
	}
	return ""
}
