package nlp

import "strings"

// Bounds is a half-open token index range [Start, End).
type Bounds struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of tokens covered.
func (b Bounds) Len() int { return b.End - b.Start }

// Entity is a labelled span of tokens.
type Entity struct {
	Bounds
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Document is an ordered sequence of tokens with sentence and entity spans.
// A Document belongs to the call that produced it.
type Document struct {
	Lang   string   `json:"lang"`
	Vocab  Vocab    `json:"-"`
	Tokens []Token  `json:"tokens"`
	Sents  []Bounds `json:"sents"`
	Ents   []Entity `json:"ents"`
}

// Len returns the number of tokens.
func (d *Document) Len() int { return len(d.Tokens) }

// Empty reports whether the document has no tokens.
func (d *Document) Empty() bool { return len(d.Tokens) == 0 }

// SpanText renders tokens[start:end], inserting a space only where the
// tokenizer recorded one.
func (d *Document) SpanText(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(d.Tokens) {
		end = len(d.Tokens)
	}
	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(d.Tokens[i].Text)
		if d.Tokens[i].SpaceAfter && i < end-1 {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// Text reconstructs the document text from its tokens.
func (d *Document) Text() string {
	return d.SpanText(0, len(d.Tokens))
}

// Sentences returns the tokens of each sentence. A document without sentence
// boundaries is treated as a single sentence.
func (d *Document) Sentences() [][]Token {
	if d.Empty() {
		return nil
	}
	if len(d.Sents) == 0 {
		return [][]Token{d.Tokens}
	}
	out := make([][]Token, 0, len(d.Sents))
	for _, s := range d.Sents {
		out = append(out, d.Tokens[s.Start:s.End])
	}
	return out
}

// Surfaces returns the token texts in order.
func Surfaces(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}
