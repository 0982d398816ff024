// Package sampler builds sample events from a MediaWiki pages-articles dump.
// The dump is streamed one <page> at a time so multi-gigabyte files are
// processed in bounded memory.
package sampler

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sync"

	"corpora/internal/domain"
)

// Page is one <page> record of the dump. Element names are matched by local
// name, so every export schema version decodes the same way.
type Page struct {
	Title string `xml:"title"`
	NS    int    `xml:"ns"`
	ID    int64  `xml:"id"`
	Text  string `xml:"revision>text"`
}

type State int

const (
	StateAdvancing State = iota
	StateEvaluating
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAdvancing:
		return "advancing"
	case StateEvaluating:
		return "evaluating"
	default:
		return "done"
	}
}

var errPageHeld = errors.New("previous page not released")

// Reader hands out dump pages one at a time. A page must be released before
// the next one is read.
type Reader struct {
	dec     *xml.Decoder
	state   State
	tracker *Tracker
}

func NewReader(r io.Reader, tracker *Tracker) *Reader {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	if tracker == nil {
		tracker = &Tracker{}
	}
	return &Reader{dec: dec, tracker: tracker}
}

func (r *Reader) State() State {
	return r.state
}

// Next returns the next page, or io.EOF once the dump is exhausted.
func (r *Reader) Next() (*Page, error) {
	switch r.state {
	case StateEvaluating:
		return nil, errPageHeld
	case StateDone:
		return nil, io.EOF
	}

	for {
		tok, err := r.dec.Token()
		if errors.Is(err, io.EOF) {
			r.state = StateDone
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read dump: %v", domain.ErrDecode, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "page" {
			continue
		}

		page := &Page{}
		if err := r.dec.DecodeElement(page, &start); err != nil {
			return nil, fmt.Errorf("%w: decode page: %v", domain.ErrDecode, err)
		}

		r.state = StateEvaluating
		r.tracker.acquire()
		return page, nil
	}
}

// Release marks the current page as evaluated.
func (r *Reader) Release() {
	if r.state != StateEvaluating {
		return
	}
	r.tracker.release()
	r.state = StateAdvancing
}

// Tracker counts pages handed out and not yet released.
type Tracker struct {
	mu   sync.Mutex
	live int
	peak int
}

func (t *Tracker) acquire() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.live++
	if t.live > t.peak {
		t.peak = t.live
	}
}

func (t *Tracker) release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.live--
}

func (t *Tracker) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live
}

func (t *Tracker) Peak() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.peak
}
