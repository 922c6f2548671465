package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/japaniel/lingodemo/pkg/nlp"
)

// ErrMalformedPattern is matched by every pattern compilation error.
var ErrMalformedPattern = errors.New("malformed pattern")

// PatternError reports which predicate failed to compile.
type PatternError struct {
	Index   int
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("%s: predicate %d %q: %v", ErrMalformedPattern, e.Index+1, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrMalformedPattern.
func (e *PatternError) Is(target error) bool { return target == ErrMalformedPattern }

// Predicate kinds.
const (
	KindRegex  = "regex"
	KindEntity = "ent"
)

// Predicate constrains a single token: either its text matches Value as a
// regular expression, or its entity label equals Value.
type Predicate struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// Regex returns a text predicate.
func Regex(expr string) Predicate { return Predicate{Kind: KindRegex, Value: expr} }

// Entity returns an entity label predicate.
func Entity(label string) Predicate { return Predicate{Kind: KindEntity, Value: label} }

// ParsePredicate reads "regex:EXPR", "ent:LABEL" or a bare regular expression.
func ParsePredicate(s string) Predicate {
	if v, ok := strings.CutPrefix(s, KindEntity+":"); ok {
		return Entity(v)
	}
	if v, ok := strings.CutPrefix(s, KindRegex+":"); ok {
		return Regex(v)
	}
	return Regex(s)
}

func (p Predicate) String() string { return p.Kind + ":" + p.Value }

type compiled struct {
	re    *regexp.Regexp
	label string
}

func (c compiled) match(t nlp.Token) bool {
	if c.re != nil {
		return c.re.MatchString(t.Text)
	}
	return t.Ent == c.label
}

// Matcher finds contiguous token spans satisfying a predicate sequence.
type Matcher struct {
	preds []compiled
	src   []Predicate
}

// Compile validates preds. An empty list compiles to a matcher that never
// matches.
func Compile(preds []Predicate) (*Matcher, error) {
	m := &Matcher{src: append([]Predicate(nil), preds...)}
	for i, p := range preds {
		switch p.Kind {
		case KindRegex:
			re, err := regexp.Compile(p.Value)
			if err != nil {
				return nil, &PatternError{Index: i, Pattern: p.Value, Err: err}
			}
			m.preds = append(m.preds, compiled{re: re})
		case KindEntity:
			if p.Value == "" {
				return nil, &PatternError{Index: i, Pattern: p.String(), Err: errors.New("empty entity label")}
			}
			m.preds = append(m.preds, compiled{label: p.Value})
		default:
			return nil, &PatternError{Index: i, Pattern: p.String(), Err: fmt.Errorf("unknown predicate kind %q", p.Kind)}
		}
	}
	return m, nil
}

// Predicates returns the predicates the matcher was compiled from.
func (m *Matcher) Predicates() []Predicate {
	return append([]Predicate(nil), m.src...)
}

// Span is one match with its neighbouring tokens.
type Span struct {
	nlp.Bounds
	Text  string `json:"text"`
	Left  string `json:"left,omitempty"`
	Right string `json:"right,omitempty"`
}

// MatchResult holds all spans found in one document.
type MatchResult struct {
	Spans []Span `json:"spans"`
}

// Empty reports whether nothing matched.
func (r MatchResult) Empty() bool { return len(r.Spans) == 0 }

// NoMatches is reported when a search finds nothing.
const NoMatches = "no matches"

// Lines formats each span as "left [text] right", or a single NoMatches line.
func (r MatchResult) Lines() []string {
	if r.Empty() {
		return []string{NoMatches}
	}
	out := make([]string, len(r.Spans))
	for i, s := range r.Spans {
		out[i] = strings.TrimSpace(s.Left + " [" + s.Text + "] " + s.Right)
	}
	return out
}

// Match returns every span where predicate i matches token start+i.
// Overlapping spans are all reported.
func (m *Matcher) Match(doc *nlp.Document) MatchResult {
	var res MatchResult
	n := len(m.preds)
	if n == 0 || doc == nil {
		return res
	}
	for start := 0; start+n <= len(doc.Tokens); start++ {
		ok := true
		for i, p := range m.preds {
			if !p.match(doc.Tokens[start+i]) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		span := Span{
			Bounds: nlp.Bounds{Start: start, End: start + n},
			Text:   doc.SpanText(start, start+n),
		}
		if start > 0 {
			span.Left = doc.Tokens[start-1].Text
		}
		if start+n < len(doc.Tokens) {
			span.Right = doc.Tokens[start+n].Text
		}
		res.Spans = append(res.Spans, span)
	}
	return res
}
