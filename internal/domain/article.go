package domain

import "time"

// Source is a publisher identity. Feeds are grouped under it.
type Source struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type Feed struct {
	ID         int64  `db:"id"`
	ExtURL     string `db:"ext_url"`
	Errors     int    `db:"errors"`
	SourceID   int64  `db:"source_id"`
	SourceName string `db:"source_name"`
}

// ArticleFields is the output of content extraction: a complete article
// record without identity or ownership.
type ArticleFields struct {
	ExtURL      string    `json:"ext_url"`
	Title       string    `json:"title"`
	Text        string    `json:"text"`
	Image       string    `json:"image,omitempty"`
	Authors     []string  `json:"authors"`
	Tags        []string  `json:"tags"`
	PublishedAt time.Time `json:"published_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Article struct {
	ID     int64 `json:"id"`
	FeedID int64 `json:"feed_id"`
	ArticleFields
	CreatedAt time.Time `json:"created_at"`
}
