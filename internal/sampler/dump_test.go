package sampler

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corpora/internal/domain"
)

const testDump = `<mediawiki xmlns="http://www.mediawiki.org/xml/export-0.10/" version="0.10" xml:lang="en">
  <siteinfo>
    <sitename>Wikinews</sitename>
  </siteinfo>
  <page>
    <title>Rescue teams reach flooded valley</title>
    <ns>0</ns>
    <id>1</id>
    <revision>
      <id>10</id>
      <text xml:space="preserve">Rescue teams reached the valley.
{{source|url=http://a.example.com/flood|title=Flood|pub=A|date=July 18, 2014}}
{{source|url=http://b.example.com/flood|title=Flood too|pub=B|date=July 19, 2014}}</text>
    </revision>
  </page>
  <page>
    <title>Talk:Rescue teams reach flooded valley</title>
    <ns>1</ns>
    <id>2</id>
    <revision>
      <id>11</id>
      <text xml:space="preserve">Discussion &amp; notes</text>
    </revision>
  </page>
  <page>
    <title>Single sourced story</title>
    <ns>0</ns>
    <id>3</id>
    <revision>
      <id>12</id>
      <text xml:space="preserve">{{source|url=http://c.example.com/one|title=One|date=July 20, 2014}}</text>
    </revision>
  </page>
</mediawiki>`

func TestReader_StreamsPagesOneAtATime(t *testing.T) {
	tracker := &Tracker{}
	r := NewReader(strings.NewReader(testDump), tracker)

	var titles []string
	for {
		page, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, StateEvaluating, r.State())
		assert.Equal(t, 1, tracker.Live())

		titles = append(titles, page.Title)
		r.Release()
	}

	assert.Equal(t, []string{
		"Rescue teams reach flooded valley",
		"Talk:Rescue teams reach flooded valley",
		"Single sourced story",
	}, titles)
	assert.Equal(t, StateDone, r.State())
	assert.Equal(t, 1, tracker.Peak())
	assert.Equal(t, 0, tracker.Live())
}

func TestReader_DecodesPageFields(t *testing.T) {
	r := NewReader(strings.NewReader(testDump), nil)

	page, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 0, page.NS)
	assert.Equal(t, int64(1), page.ID)
	assert.Contains(t, page.Text, "{{source|url=http://a.example.com/flood")
	r.Release()

	page, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, page.NS)
	assert.Equal(t, "Discussion & notes", page.Text)
}

func TestReader_NextRequiresRelease(t *testing.T) {
	r := NewReader(strings.NewReader(testDump), nil)

	_, err := r.Next()
	require.NoError(t, err)

	_, err = r.Next()
	assert.ErrorIs(t, err, errPageHeld)
}

func TestReader_MalformedDump(t *testing.T) {
	r := NewReader(strings.NewReader(`<mediawiki><page><title>x</title><ns>zero</ns></page></mediawiki>`), nil)

	_, err := r.Next()
	assert.ErrorIs(t, err, domain.ErrDecode)
}
