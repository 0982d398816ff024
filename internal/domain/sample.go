package domain

import "time"

// SampleEvent groups sample articles that report on the same real-world
// occurrence. Title is unique.
type SampleEvent struct {
	ID    int64  `db:"id"`
	Title string `db:"title"`
}

// SampleArticle references its event by ID; articles are written one row at
// a time rather than embedded in the event.
type SampleArticle struct {
	ID      int64
	EventID int64
	ArticleFields
	CreatedAt time.Time
}

// Citation is a (URL, date) pair found in dump page markup.
type Citation struct {
	URL  string
	Date string
}
