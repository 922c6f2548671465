// Package en provides the English pipeline backed by prose's bundled
// tokenizer, tagger and entity model.
package en

import (
	"strings"

	"github.com/jdkato/prose/v2"
	"github.com/kljensen/snowball"

	"github.com/japaniel/lingodemo/pkg/nlp"
)

// PipelineID identifies the prose-backed English pipeline.
const PipelineID = "en_prose"

// EntityLabels produced by prose's default model, with ORGANIZATION
// reported as ORG like the other pipelines.
var EntityLabels = []string{"PERSON", "GPE", "ORG"}

// Tokenize runs prose over text. Tokens come back tagged and with IOB entity
// labels; spacing and line breaks are recovered from the original text.
func Tokenize(text string) (*nlp.Document, error) {
	pd, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, err
	}
	ptoks := pd.Tokens()
	doc := &nlp.Document{Tokens: make([]nlp.Token, 0, len(ptoks))}
	for _, pt := range ptoks {
		doc.Tokens = append(doc.Tokens, nlp.Token{
			Text:  pt.Text,
			Tag:   pt.Tag,
			POS:   UniversalPOS(pt.Tag, pt.Text),
			Lemma: Lemma(pt.Text, pt.Tag),
			Ent:   entityType(pt.Label),
		})
	}
	doc.Tokens = nlp.AlignSpaces(text, doc.Tokens)
	return doc, nil
}

// New builds the English pipeline.
func New() *nlp.Pipeline {
	return nlp.New(PipelineID, nlp.EmptyVocab("en"), Tokenize, EntityLabels,
		nlp.SentenceSplitter(),
		nlp.StageFunc{StageName: "ner", Fn: func(doc *nlp.Document) error {
			doc.Ents = nlp.MergeEntities(doc)
			return nil
		}},
	)
}

// entityType strips the IOB prefix from a prose label ("B-PERSON" -> "PERSON").
func entityType(label string) string {
	if label == "" || label == "O" {
		return ""
	}
	if i := strings.IndexByte(label, '-'); i >= 0 {
		label = label[i+1:]
	}
	if label == "ORGANIZATION" {
		return "ORG"
	}
	return label
}

// Lemma approximates a base form with the snowball stemmer for open-class
// words and lower-casing for everything else.
func Lemma(text, tag string) string {
	lower := strings.ToLower(text)
	if strings.HasPrefix(tag, "NNP") {
		return text
	}
	if !(strings.HasPrefix(tag, "VB") || strings.HasPrefix(tag, "NN") ||
		strings.HasPrefix(tag, "JJ") || strings.HasPrefix(tag, "RB")) {
		return lower
	}
	stem, err := snowball.Stem(lower, "english", true)
	if err != nil || stem == "" {
		return lower
	}
	return stem
}

// UniversalPOS maps a Penn Treebank tag to a universal category.
func UniversalPOS(tag, text string) string {
	switch tag {
	case "NNP", "NNPS":
		return nlp.PROPN
	case "MD":
		return nlp.AUX
	case "CD":
		return nlp.NUM
	case "PRP", "PRP$", "WP", "WP$", "EX":
		return nlp.PRON
	case "DT", "PDT", "WDT":
		return nlp.DET
	case "IN":
		return nlp.ADP
	case "CC":
		return nlp.CCONJ
	case "UH":
		return nlp.INTJ
	case "TO", "RP", "POS":
		return nlp.PART
	case "SYM", "$", "#":
		return nlp.SYM
	case ".", ",", ":", "``", "''", "(", ")", "-LRB-", "-RRB-", "HYPH", "NFP":
		return nlp.PUNCT
	case "FW", "LS":
		return nlp.X
	}
	switch {
	case strings.HasPrefix(tag, "NN"):
		return nlp.NOUN
	case strings.HasPrefix(tag, "VB"):
		return nlp.VERB
	case strings.HasPrefix(tag, "JJ"):
		return nlp.ADJ
	case strings.HasPrefix(tag, "RB") || tag == "WRB":
		return nlp.ADV
	}
	if cat := nlp.PunctOrSymbol(text); cat != "" {
		return cat
	}
	return nlp.X
}
