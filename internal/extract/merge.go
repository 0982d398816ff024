package extract

import (
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"corpora/internal/domain"
	"corpora/internal/normalize"
)

// Hints are values supplied by the caller (usually a feed entry) that take
// precedence over what is extracted from the page. A nil field is absent.
type Hints struct {
	Title     *string
	Published *time.Time
	Updated   *time.Time
	// Authors, when non-nil, replaces the extracted byline even if empty.
	Authors []string
	// Tags are entry terms, unioned with tags found on the page.
	Tags []string
	// SkipImage drops the top image from the result.
	SkipImage bool
}

// Extracted holds the fields read from a page.
type Extracted struct {
	CanonicalURL string
	Title        string
	Text         string
	Image        string
	Byline       string
	Published    *time.Time
	Tags         []string
}

var titlePolicy = bluemonday.StrictPolicy()

// Merge combines extracted page fields with hints. Precedence per field:
//
//	url        canonical link, else requestURL
//	title      hint, else extracted
//	published  hint, else extracted, else now
//	updated    hint, else merged published
//	authors    hint, else parsed byline
//	tags       union(extracted, hint terms) when hints are given, else extracted
//	image      extracted unless SkipImage
func Merge(x *Extracted, hints *Hints, requestURL string, now time.Time) *domain.ArticleFields {
	out := &domain.ArticleFields{
		ExtURL:  requestURL,
		Title:   strings.TrimSpace(x.Title),
		Text:    x.Text,
		Image:   x.Image,
		Authors: normalize.Authors(x.Byline),
		Tags:    normalize.Tags(x.Tags, nil),
	}
	if x.CanonicalURL != "" {
		out.ExtURL = x.CanonicalURL
	}

	published := now.UTC()
	if x.Published != nil && !x.Published.IsZero() {
		published = x.Published.UTC()
	}

	if hints != nil {
		if hints.Title != nil {
			if t := cleanTitle(*hints.Title); t != "" {
				out.Title = t
			}
		}
		if hints.Published != nil && !hints.Published.IsZero() {
			published = hints.Published.UTC()
		}
		if hints.Authors != nil {
			out.Authors = hints.Authors
		}
		out.Tags = normalize.Tags(x.Tags, hints.Tags)
		if hints.SkipImage {
			out.Image = ""
		}
	}

	out.PublishedAt = published
	out.UpdatedAt = published
	if hints != nil && hints.Updated != nil && !hints.Updated.IsZero() {
		out.UpdatedAt = hints.Updated.UTC()
	}

	return out
}

// cleanTitle strips markup some feeds leave in entry titles.
func cleanTitle(s string) string {
	return strings.TrimSpace(html.UnescapeString(titlePolicy.Sanitize(s)))
}
