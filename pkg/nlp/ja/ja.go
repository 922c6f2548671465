// Package ja provides the Japanese pipelines built on kagome with either the
// IPA or the UniDic dictionary.
package ja

import (
	"fmt"
	"strings"

	"github.com/ikawaha/kagome-dict/dict"
	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome-dict/uni"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/japaniel/lingodemo/pkg/nlp"
)

// Pipeline identifiers.
const (
	IPAPipelineID = "ja_kagome_ipa"
	UniPipelineID = "ja_kagome_uni"
)

// EntityLabels produced from kagome proper-noun and numeral tags.
var EntityLabels = []string{"PERSON", "GPE", "ORG", "CARDINAL"}

// Analyzer wraps a kagome tokenizer. It is safe for concurrent use.
type Analyzer struct {
	t *tokenizer.Tokenizer
}

// NewAnalyzer creates a kagome tokenizer for the given pipeline id.
func NewAnalyzer(id string) (*Analyzer, error) {
	var d *dict.Dict
	switch id {
	case IPAPipelineID:
		d = ipa.Dict()
	case UniPipelineID:
		d = uni.Dict()
	default:
		return nil, fmt.Errorf("unknown japanese pipeline %q", id)
	}
	t, err := tokenizer.New(d, tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Analyzer{t: t}, nil
}

// Lang implements nlp.Vocab.
func (a *Analyzer) Lang() string { return "ja" }

// Lookup implements nlp.Vocab: a word is known when kagome reads it as a
// single dictionary morpheme.
func (a *Analyzer) Lookup(word string) (nlp.Lexeme, bool) {
	toks := a.t.Tokenize(word)
	if len(toks) != 1 || toks[0].Class != tokenizer.KNOWN || toks[0].Surface != word {
		return nlp.Lexeme{}, false
	}
	return nlp.Lexeme{Text: word, Tag: joinPOS(toks[0].POS())}, true
}

// Tokenize runs kagome and converts each morpheme into an annotated token.
// Whitespace morphemes are folded into the preceding token's SpaceAfter,
// except newlines, which are kept as line break tokens.
func (a *Analyzer) Tokenize(text string) (*nlp.Document, error) {
	doc := &nlp.Document{Vocab: a}
	for _, kt := range a.t.Tokenize(text) {
		if kt.Class == tokenizer.DUMMY {
			continue
		}
		if strings.TrimSpace(kt.Surface) == "" {
			n := len(doc.Tokens)
			switch {
			case strings.Contains(kt.Surface, "\n"):
				doc.Tokens = nlp.AppendBreak(doc.Tokens)
			case n > 0 && doc.Tokens[n-1].POS != nlp.SPACE:
				doc.Tokens[n-1].SpaceAfter = true
			}
			continue
		}
		doc.Tokens = append(doc.Tokens, convert(kt))
	}
	return doc, nil
}

func convert(kt tokenizer.Token) nlp.Token {
	pos := kt.POS()
	tok := nlp.Token{
		Text:  kt.Surface,
		Tag:   joinPOS(pos),
		POS:   UniversalPOS(pos, kt.Surface),
		Lemma: kt.Surface,
		Morph: nlp.Morph{},
	}
	if base, ok := kt.BaseForm(); ok && base != "*" && base != "" {
		tok.Lemma = base
	}
	if reading, ok := kt.Reading(); ok {
		tok.Morph.Set(nlp.FeatReading, reading)
	}
	ctype, _ := kt.InflectionalType()
	cform, _ := kt.InflectionalForm()
	if inflection := joinFeatures(";", ctype, cform); inflection != "" {
		tok.Morph.Set(nlp.FeatInflection, inflection)
	}
	return tok
}

// joinPOS renders the POS hierarchy as a dash-joined tag, skipping "*".
func joinPOS(pos []string) string {
	return joinFeatures("-", pos...)
}

func joinFeatures(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" && p != "*" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// New builds a Japanese pipeline. Only the native kagome tokenizer is
// supported, since annotation comes from the same morphological pass.
func New(id string) (*nlp.Pipeline, error) {
	a, err := NewAnalyzer(id)
	if err != nil {
		return nil, err
	}
	return nlp.New(id, a, a.Tokenize, EntityLabels,
		nlp.SentenceSplitter(),
		nlp.EntityRecognizer(EntityLabel),
	), nil
}

// UniversalPOS maps a kagome POS hierarchy (IPA or UniDic) to a universal
// category. The surface decides between PUNCT and SYM for symbol tags.
func UniversalPOS(pos []string, surface string) string {
	if len(pos) == 0 {
		return nlp.X
	}
	sub := ""
	if len(pos) > 1 {
		sub = pos[1]
	}
	switch pos[0] {
	case "名詞":
		switch {
		case sub == "固有名詞":
			return nlp.PROPN
		case sub == "代名詞":
			return nlp.PRON
		case sub == "数" || sub == "数詞":
			return nlp.NUM
		}
		return nlp.NOUN
	case "代名詞":
		return nlp.PRON
	case "動詞":
		if sub == "非自立" || sub == "非自立可能" {
			return nlp.AUX
		}
		return nlp.VERB
	case "形容詞", "形状詞":
		return nlp.ADJ
	case "副詞":
		return nlp.ADV
	case "助詞":
		switch sub {
		case "接続助詞":
			return nlp.SCONJ
		case "終助詞", "副助詞", "係助詞":
			return nlp.PART
		}
		return nlp.ADP
	case "助動詞":
		return nlp.AUX
	case "接続詞":
		return nlp.CCONJ
	case "連体詞":
		return nlp.DET
	case "感動詞", "フィラー":
		return nlp.INTJ
	case "接頭詞", "接頭辞", "接尾辞":
		return nlp.NOUN
	case "記号", "補助記号":
		if sub == "空白" {
			return nlp.SPACE
		}
		if cat := nlp.PunctOrSymbol(surface); cat != "" {
			return cat
		}
		return nlp.PUNCT
	case "空白":
		return nlp.SPACE
	}
	return nlp.X
}

// EntityLabel derives an entity label from the token's kagome tag.
func EntityLabel(t nlp.Token) string {
	if !strings.HasPrefix(t.Tag, "名詞") {
		return ""
	}
	switch {
	case strings.Contains(t.Tag, "人名"):
		return "PERSON"
	case strings.Contains(t.Tag, "地域") || strings.Contains(t.Tag, "地名"):
		return "GPE"
	case strings.Contains(t.Tag, "組織"):
		return "ORG"
	case t.POS == nlp.NUM:
		return "CARDINAL"
	}
	return ""
}
