package sampler

import (
	"regexp"
	"strings"

	"corpora/internal/domain"
)

// DefaultDigestPattern marks compilation pages that span unrelated events.
const DefaultDigestPattern = "Wikinews Shorts"

// minCitations is the number of sources a page needs to become an event.
const minCitations = 2

// {{source|url=http://...|title=...|pub=Associated Press|date=July 18, 2014}}
var (
	sourcePattern   = regexp.MustCompile(`(?s)\{\{source\|url=([^|\n]+)[|\n].*?date=([^\n}]+)`)
	foreignLanguage = regexp.MustCompile(`\{\{foreign language\}\}`)
)

// Candidate is a page that qualifies as a sample event.
type Candidate struct {
	Title     string
	Citations []domain.Citation
}

// Citations returns the (url, date) pairs of source templates in text.
func Citations(text string) []domain.Citation {
	matches := sourcePattern.FindAllStringSubmatch(text, -1)
	citations := make([]domain.Citation, 0, len(matches))
	for _, m := range matches {
		citations = append(citations, domain.Citation{
			URL:  strings.TrimSpace(m[1]),
			Date: strings.TrimSpace(m[2]),
		})
	}
	return citations
}

// Evaluate decides whether page becomes an event. Only article namespace
// pages in English with at least two citations and a title that is not a
// digest qualify.
func Evaluate(page *Page, digestPatterns []string) (*Candidate, bool) {
	if page.NS != 0 || page.Text == "" {
		return nil, false
	}
	if foreignLanguage.MatchString(page.Text) {
		return nil, false
	}

	citations := Citations(page.Text)
	if len(citations) < minCitations {
		return nil, false
	}
	for _, p := range digestPatterns {
		if p != "" && strings.Contains(page.Title, p) {
			return nil, false
		}
	}

	return &Candidate{Title: page.Title, Citations: citations}, true
}
