package nlp

import (
	"strings"
	"unicode/utf8"
)

// sentenceTerminators end a sentence when a token consists of (or ends in) them.
var sentenceTerminators = map[rune]bool{
	'。': true, '！': true, '？': true,
	'!': true, '?': true, '.': true,
	'\n': true,
}

// SentenceSplitter marks sentence boundaries after terminator tokens.
func SentenceSplitter() Stage {
	return StageFunc{StageName: "sentences", Fn: splitSentences}
}

func splitSentences(doc *Document) error {
	doc.Sents = doc.Sents[:0]
	start := 0
	for i, t := range doc.Tokens {
		if !endsSentence(t.Text) {
			continue
		}
		if i == start && IsSpace(t.Text) && len(doc.Sents) > 0 {
			// A break right after a terminator closes nothing new.
			doc.Sents[len(doc.Sents)-1].End = i + 1
		} else {
			doc.Sents = append(doc.Sents, Bounds{Start: start, End: i + 1})
		}
		start = i + 1
	}
	if start < len(doc.Tokens) {
		doc.Sents = append(doc.Sents, Bounds{Start: start, End: len(doc.Tokens)})
	}
	return nil
}

func endsSentence(s string) bool {
	trimmed := strings.TrimRight(s, " \t")
	if trimmed == "" {
		return strings.Contains(s, "\n")
	}
	r, _ := utf8.DecodeLastRuneInString(trimmed)
	return sentenceTerminators[r]
}

// LabelFunc returns the entity label for a token, "" for none.
type LabelFunc func(t Token) string

// EntityRecognizer labels tokens with fn and merges runs of equal labels
// into entities.
func EntityRecognizer(fn LabelFunc) Stage {
	return StageFunc{StageName: "ner", Fn: func(doc *Document) error {
		for i := range doc.Tokens {
			doc.Tokens[i].Ent = fn(doc.Tokens[i])
		}
		doc.Ents = MergeEntities(doc)
		return nil
	}}
}

// MergeEntities builds entity spans from the Ent field of adjacent tokens.
func MergeEntities(doc *Document) []Entity {
	var ents []Entity
	for i := 0; i < len(doc.Tokens); {
		label := doc.Tokens[i].Ent
		if label == "" {
			i++
			continue
		}
		j := i + 1
		for j < len(doc.Tokens) && doc.Tokens[j].Ent == label {
			j++
		}
		ents = append(ents, Entity{
			Bounds: Bounds{Start: i, End: j},
			Label:  label,
			Text:   doc.SpanText(i, j),
		})
		i = j
	}
	return ents
}

// LineBreak returns the token kept for whitespace that contains a newline,
// so the sentence splitter sees the break.
func LineBreak() Token {
	return Token{Text: "\n", POS: SPACE}
}

// AppendBreak adds a LineBreak after the last token unless the document is
// empty or already ends with one.
func AppendBreak(tokens []Token) []Token {
	n := len(tokens)
	if n == 0 || tokens[n-1].POS == SPACE {
		return tokens
	}
	tokens[n-1].SpaceAfter = false
	return append(tokens, LineBreak())
}

// AlignSpaces sets SpaceAfter on tokens by locating them, in order, in the
// original text, and inserts a LineBreak wherever the gap between two tokens
// contains a newline. Tokens that cannot be located are left untouched.
func AlignSpaces(text string, tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	cursor := 0
	for _, tok := range tokens {
		idx := -1
		if tok.Text != "" {
			idx = strings.Index(text[cursor:], tok.Text)
		}
		if idx < 0 {
			out = append(out, tok)
			continue
		}
		if strings.Contains(text[cursor:cursor+idx], "\n") {
			out = AppendBreak(out)
		}
		end := cursor + idx + len(tok.Text)
		if end < len(text) {
			r, _ := utf8.DecodeRuneInString(text[end:])
			tok.SpaceAfter = r == ' ' || r == '\t' || r == '\n' || r == '\r'
		}
		out = append(out, tok)
		cursor = end
	}
	return out
}
