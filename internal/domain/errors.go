package domain

import (
	"context"
	"errors"
)

var (
	// ErrUnreachable is returned for terminal network failures: unknown
	// host, 404 and other non-retryable client statuses.
	ErrUnreachable = errors.New("unreachable")

	// ErrNotHTML is returned when the response is not an HTML document.
	ErrNotHTML = errors.New("content type is not html")

	// ErrMaxRetriesReached wraps the last transient error once the retry
	// budget is spent.
	ErrMaxRetriesReached = errors.New("max retries reached")

	// ErrTooShort is returned when the extracted text is below the minimum
	// length.
	ErrTooShort = errors.New("text too short")

	// ErrDecode is returned when a response body cannot be turned into a
	// document.
	ErrDecode = errors.New("decode failed")

	ErrNotFound = errors.New("not found")
)

type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeSkip
	OutcomeFatal
)

// Outcome is the classified result of a per-item operation.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeOK:
		return "ok"
	case OutcomeSkip:
		return "skip: " + o.Reason
	default:
		return "fatal: " + o.Reason
	}
}

// Classify maps an error returned by the fetch/extract chain onto an outcome.
// Content and network problems of a single item are skips; anything else,
// including cancellation, is fatal for the caller's unit of work.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return Outcome{Kind: OutcomeOK}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Outcome{Kind: OutcomeFatal, Reason: "canceled"}
	case errors.Is(err, ErrUnreachable):
		return Outcome{Kind: OutcomeSkip, Reason: "unreachable"}
	case errors.Is(err, ErrNotHTML):
		return Outcome{Kind: OutcomeSkip, Reason: "not_html"}
	case errors.Is(err, ErrMaxRetriesReached):
		return Outcome{Kind: OutcomeSkip, Reason: "max_retries"}
	case errors.Is(err, ErrTooShort):
		return Outcome{Kind: OutcomeSkip, Reason: "too_short"}
	case errors.Is(err, ErrDecode):
		return Outcome{Kind: OutcomeSkip, Reason: "decode"}
	default:
		return Outcome{Kind: OutcomeFatal, Reason: err.Error()}
	}
}
