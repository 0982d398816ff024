package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"corpora/internal/domain"
)

func TestCitations(t *testing.T) {
	text := `Flights were diverted.
{{source|url=http://bigstory.ap.org/article/why-airlines-didnt-avoid-risky-ukraine-airspace|title=Why airlines didn't avoid risky Ukraine airspace|author=David Koenig and Scott Mayerowitz|pub=Associated Press|date=July 18, 2014}}
{{source
|url=http://www.bbc.com/news/world-europe-28357880
|title=MH17 crash
|date=July 17, 2014
}}`

	// Only the single-line template form is recognised.
	assert.Equal(t, []domain.Citation{
		{URL: "http://bigstory.ap.org/article/why-airlines-didnt-avoid-risky-ukraine-airspace", Date: "July 18, 2014"},
	}, Citations(text))
}

func TestCitations_MultipleTemplates(t *testing.T) {
	text := "{{source|url=http://a.example.com/1|title=A|date=July 18, 2014}}\n" +
		"{{source|url=http://b.example.com/2|title=B|date=2014-07-19}}"

	assert.Equal(t, []domain.Citation{
		{URL: "http://a.example.com/1", Date: "July 18, 2014"},
		{URL: "http://b.example.com/2", Date: "2014-07-19"},
	}, Citations(text))
}

func TestEvaluate(t *testing.T) {
	two := "{{source|url=http://a.example.com/1|date=July 18, 2014}}\n{{source|url=http://b.example.com/2|date=July 18, 2014}}"
	one := "{{source|url=http://a.example.com/1|date=July 18, 2014}}"
	digest := []string{DefaultDigestPattern}

	tests := []struct {
		name string
		page Page
		want bool
	}{
		{"two citations", Page{Title: "Event", Text: two}, true},
		{"one citation", Page{Title: "Event", Text: one}, false},
		{"other namespace", Page{Title: "Talk:Event", NS: 1, Text: two}, false},
		{"foreign language", Page{Title: "Evento", Text: "{{foreign language}}\n" + two}, false},
		{"digest title", Page{Title: "Wikinews Shorts: July 18, 2014", Text: two}, false},
		{"empty text", Page{Title: "Event"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := Evaluate(&tt.page, digest)
			assert.Equal(t, tt.want, ok)
			if ok {
				assert.Equal(t, tt.page.Title, c.Title)
				assert.Len(t, c.Citations, 2)
			}
		})
	}
}
