package normalize

import (
	"testing"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/stretchr/testify/assert"
)

func TestAuthors(t *testing.T) {
	tests := []struct {
		name   string
		byline string
		want   []string
	}{
		{"by prefix and conjunction", "By BEN HUBBARD and HWAIDA SAAD", []string{"Ben Hubbard", "Hwaida Saad"}},
		{"single upper case", "JOHN HEIMER", []string{"John Heimer"}},
		{"plain", "John Heimer", []string{"John Heimer"}},
		{"commas then and", "by Anne Barnard, Mark Landler and Rick Gladstone", []string{"Anne Barnard", "Mark Landler", "Rick Gladstone"}},
		{"trailing comma", "Somini Sengupta,", []string{"Somini Sengupta"}},
		{"apostrophe and hyphen", "By JOHN O'NEIL and MARY-JANE SMITH", []string{"John O'Neil", "Mary-Jane Smith"}},
		{"typographic apostrophe", "by conan o\u2019brien", []string{"Conan O\u2019Brien"}},
		{"empty", "", []string{}},
		{"whitespace", "   ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authors(tt.byline))
		})
	}
}

func TestEntryAuthors(t *testing.T) {
	tests := []struct {
		name string
		item *gofeed.Item
		want []string
	}{
		{
			name: "nil entry",
			item: nil,
			want: []string{},
		},
		{
			name: "no author",
			item: &gofeed.Item{Title: "x"},
			want: []string{},
		},
		{
			name: "author detail",
			item: &gofeed.Item{Author: &gofeed.Person{Name: "By BEN HUBBARD and HWAIDA SAAD"}},
			want: []string{"Ben Hubbard", "Hwaida Saad"},
		},
		{
			name: "authors list",
			item: &gofeed.Item{Authors: []*gofeed.Person{{Name: "Jane Doe"}, {Name: "RICHARD ROE"}}},
			want: []string{"Jane Doe", "Richard Roe"},
		},
		{
			name: "dublin core creator",
			item: &gofeed.Item{DublinCoreExt: &ext.DublinCoreExtension{Creator: []string{"david koenig"}}},
			want: []string{"David Koenig"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EntryAuthors(tt.item))
		})
	}
}

func TestTags_Union(t *testing.T) {
	a := Tags([]string{"Military"}, []string{"National Security"})
	b := Tags([]string{"National Security"}, []string{"Military", "National Security"})

	assert.Equal(t, []string{"Military", "National Security"}, a)
	assert.Equal(t, a, b)
}

func TestTags_Empty(t *testing.T) {
	assert.Equal(t, []string{}, Tags(nil, nil))
	assert.Equal(t, []string{"Politics"}, Tags(nil, []string{"", " Politics "}))
}

func TestEntryTerms(t *testing.T) {
	assert.Nil(t, EntryTerms(nil))
	assert.Equal(t, []string{"World"}, EntryTerms(&gofeed.Item{Categories: []string{"World"}}))
}
