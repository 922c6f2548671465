package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// NoResult is shown for a word whose lookup failed.
const NoResult = "查無結果"

// ErrNotFound is returned when a dictionary has no entry for the word.
var ErrNotFound = errors.New("no dictionary entry")

// StatusError reports an unexpected HTTP status from a remote dictionary.
type StatusError struct {
	Word string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("lookup %q: unexpected status %d", e.Word, e.Code)
}

// Is treats every non-success status as "not found" for callers.
func (e *StatusError) Is(target error) bool { return target == ErrNotFound }

// Reading is one pronunciation of a word.
type Reading struct {
	Text   string `json:"text"`
	System string `json:"system,omitempty"`
}

// Definition is one sense of a word.
type Definition struct {
	Text     string   `json:"text"`
	POS      []string `json:"pos,omitempty"`
	Examples []string `json:"examples,omitempty"`
}

// Result is a structured dictionary entry.
type Result struct {
	Word        string          `json:"word"`
	Source      string          `json:"source"`
	Readings    []Reading       `json:"readings,omitempty"`
	Definitions []Definition    `json:"definitions,omitempty"`
	Raw         json.RawMessage `json:"raw,omitempty"`
}

// Lookuper finds a word in a dictionary. Implementations return an error
// matching ErrNotFound when the word has no entry.
type Lookuper interface {
	Lookup(ctx context.Context, word string) (*Result, error)
}

// Outcome is the result of looking up one word in a batch.
type Outcome struct {
	Word   string  `json:"word"`
	Result *Result `json:"result,omitempty"`
	Err    error   `json:"-"`
}

// OK reports whether the lookup produced a result.
func (o Outcome) OK() bool { return o.Err == nil && o.Result != nil }

// Message returns NoResult for failed lookups and "" otherwise.
func (o Outcome) Message() string {
	if o.OK() {
		return ""
	}
	return NoResult
}

// MarshalJSON adds the user-facing message for failed lookups.
func (o Outcome) MarshalJSON() ([]byte, error) {
	type outcome Outcome
	return json.Marshal(struct {
		outcome
		Message string `json:"message,omitempty"`
	}{outcome(o), o.Message()})
}

// Batch looks up each word in order. A failed lookup is recorded in its
// Outcome and never stops the remaining words; only a cancelled ctx does.
func Batch(ctx context.Context, l Lookuper, words []string) []Outcome {
	out := make([]Outcome, 0, len(words))
	for _, w := range words {
		if err := ctx.Err(); err != nil {
			out = append(out, Outcome{Word: w, Err: err})
			continue
		}
		res, err := l.Lookup(ctx, w)
		if err == nil && res == nil {
			err = ErrNotFound
		}
		out = append(out, Outcome{Word: w, Result: res, Err: err})
	}
	return out
}
