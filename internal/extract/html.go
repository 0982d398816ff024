package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	readability "github.com/go-shiori/go-readability"

	"corpora/internal/domain"
)

// parseHTML runs readability for the article body and reads the metadata
// readability does not expose (canonical link, keyword tags) with goquery.
func parseHTML(body []byte, pageURL *url.URL) (*Extracted, error) {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: readability: %v", domain.ErrDecode, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", domain.ErrDecode, err)
	}

	x := &Extracted{
		CanonicalURL: canonicalURL(doc, pageURL),
		Title:        article.Title,
		Text:         strings.TrimSpace(article.TextContent),
		Image:        article.Image,
		Byline:       article.Byline,
		Published:    article.PublishedTime,
		Tags:         metaTags(doc),
	}

	if x.Title == "" {
		x.Title = metaContent(doc, `meta[property="og:title"]`)
	}
	if x.Image == "" {
		x.Image = metaContent(doc, `meta[property="og:image"]`)
	}
	x.Image = resolve(pageURL, x.Image)

	if x.Published == nil {
		for _, sel := range []string{
			`meta[property="article:published_time"]`,
			`meta[name="pubdate"]`,
			`meta[itemprop="datePublished"]`,
		} {
			if raw := metaContent(doc, sel); raw != "" {
				if t, err := dateparse.ParseIn(raw, time.UTC); err == nil {
					x.Published = &t
					break
				}
			}
		}
	}

	return x, nil
}

func canonicalURL(doc *goquery.Document, pageURL *url.URL) string {
	if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		return resolve(pageURL, href)
	}
	if u := metaContent(doc, `meta[property="og:url"]`); u != "" {
		return resolve(pageURL, u)
	}
	return ""
}

func metaTags(doc *goquery.Document) []string {
	var tags []string
	for _, sel := range []string{`meta[name="keywords"]`, `meta[name="news_keywords"]`} {
		for _, t := range strings.Split(metaContent(doc, sel), ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	doc.Find(`meta[property="article:tag"]`).Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.AttrOr("content", "")); t != "" {
			tags = append(tags, t)
		}
	})
	return tags
}

func metaContent(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().AttrOr("content", ""))
}

func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

// ParseDate parses the loose date strings found in feeds and dump
// citations ("July 18, 2014", "2014-07-18", RFC 1123...).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	return dateparse.ParseIn(s, time.UTC)
}
