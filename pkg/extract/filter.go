// Package extract turns an analysed document into the views shown to the
// user: filtered token lists, pattern matches, reading lines and tables.
package extract

import (
	"regexp"

	"github.com/japaniel/lingodemo/pkg/nlp"
)

// CategoryFilter selects tokens by universal part-of-speech category.
// The zero value keeps every token.
type CategoryFilter struct {
	allow map[string]bool
	deny  map[string]bool
}

// Exclude returns a filter dropping tokens in any of cats.
func Exclude(cats ...string) CategoryFilter {
	return CategoryFilter{deny: set(cats)}
}

// Only returns a filter keeping tokens in any of cats.
func Only(cats ...string) CategoryFilter {
	return CategoryFilter{allow: set(cats)}
}

func set(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, s := range items {
		m[s] = true
	}
	return m
}

// Keep reports whether tok passes the filter.
func (f CategoryFilter) Keep(tok nlp.Token) bool {
	if f.deny[tok.POS] {
		return false
	}
	if f.allow != nil && !f.allow[tok.POS] {
		return false
	}
	return true
}

// Apply returns the tokens that pass, in their original order.
func (f CategoryFilter) Apply(tokens []nlp.Token) []nlp.Token {
	var out []nlp.Token
	for _, t := range tokens {
		if f.Keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// NoPunct drops punctuation and symbols.
var NoPunct = Exclude(nlp.PUNCT, nlp.SYM)

// CleanTokens drops punctuation, symbols, whitespace, numbers, URLs and
// e-mail addresses.
func CleanTokens(tokens []nlp.Token) []nlp.Token {
	var out []nlp.Token
	for _, t := range NoPunct.Apply(tokens) {
		switch {
		case nlp.LikeEmail(t.Text), nlp.LikeURL(t.Text), nlp.LikeNum(t.Text):
		case nlp.IsPunct(t.Text), nlp.IsSpace(t.Text), t.POS == nlp.SPACE:
		default:
			out = append(out, t)
		}
	}
	return out
}

// DedupeBySurface keeps the first token for each surface text.
func DedupeBySurface(tokens []nlp.Token) []nlp.Token {
	seen := make(map[string]bool, len(tokens))
	var out []nlp.Token
	for _, t := range tokens {
		if seen[t.Text] {
			continue
		}
		seen[t.Text] = true
		out = append(out, t)
	}
	return out
}

// DedupeStrings keeps the first occurrence of each word.
func DedupeStrings(words []string) []string {
	seen := make(map[string]bool, len(words))
	var out []string
	for _, w := range words {
		if seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

var asciiAlnum = regexp.MustCompile(`[a-zA-Z0-9]`)

// LookupCandidates returns the distinct words of doc worth sending to a
// dictionary, in first-seen order.
func LookupCandidates(doc *nlp.Document) []string {
	var words []string
	for _, t := range CleanTokens(doc.Tokens) {
		if asciiAlnum.MatchString(t.Text) {
			continue
		}
		words = append(words, t.Text)
	}
	return DedupeStrings(words)
}
