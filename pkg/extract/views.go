package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/japaniel/lingodemo/pkg/nlp"
)

// TokenSeparator joins tokens on a reading line.
const TokenSeparator = " | "

// AnnotateFunc returns the bracketed annotation for a token, "" for none.
type AnnotateFunc func(nlp.Token) string

// SentenceLines renders one line per sentence:
//
//	1 >>> 台北 [táiběi] | 今天 [jīntiān]
//
// Tokens rejected by filter are omitted, as are sentences left with nothing
// to show. annotate may be nil.
func SentenceLines(doc *nlp.Document, filter CategoryFilter, annotate AnnotateFunc) []string {
	var lines []string
	for _, sent := range doc.Sentences() {
		kept := filter.Apply(sent)
		parts := make([]string, 0, len(kept))
		for _, t := range kept {
			if nlp.IsSpace(t.Text) {
				continue
			}
			part := t.Text
			if annotate != nil {
				if a := annotate(t); a != "" {
					part += " [" + a + "]"
				}
			}
			parts = append(parts, part)
		}
		if len(parts) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%d >>> %s", len(lines)+1, strings.Join(parts, TokenSeparator)))
	}
	return lines
}

// Table is a header row plus data rows.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// TokenTable lists every token's attributes.
func TokenTable(doc *nlp.Document) Table {
	t := Table{Header: []string{"text", "pos", "tag", "lemma", "reading", "ent"}}
	for _, tok := range doc.Tokens {
		if nlp.IsSpace(tok.Text) {
			continue
		}
		t.Rows = append(t.Rows, []string{tok.Text, tok.POS, tok.Tag, tok.Lemma, tok.Reading(), tok.Ent})
	}
	return t
}

// Inflected reports whether tok is a verb or adjective in the pipeline's
// fine-grained tag set.
func Inflected(tok nlp.Token) bool {
	return strings.HasPrefix(tok.Tag, "動詞") || strings.HasPrefix(tok.Tag, "形")
}

// InflectionTable lists the distinct verb and adjective forms with their
// reading, inflection and dictionary form.
func InflectionTable(doc *nlp.Document) Table {
	t := Table{Header: []string{"單詞", "發音", "詞形變化", "原形"}}
	var forms []nlp.Token
	for _, tok := range doc.Tokens {
		if Inflected(tok) {
			forms = append(forms, tok)
		}
	}
	for _, tok := range DedupeBySurface(forms) {
		t.Rows = append(t.Rows, []string{
			tok.Text,
			tok.Reading(),
			tok.Morph.Join(nlp.FeatInflection, "/"),
			tok.Lemma,
		})
	}
	return t
}

// WriteCSV writes the table with its header.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
