// Package zh provides the Chinese pipeline: gse segmentation and tagging,
// with jieba available as an alternate segmenter.
package zh

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-ego/gse"
	"github.com/wangbin/jiebago"

	"github.com/japaniel/lingodemo/pkg/nlp"
)

// PipelineID identifies the gse-backed Chinese pipeline.
const PipelineID = "zh_gse"

// Entity labels produced from gse tags.
var EntityLabels = []string{"PERSON", "GPE", "ORG", "DATE", "CARDINAL"}

var (
	sharedOnce sync.Once
	sharedSeg  *gse.Segmenter
	sharedErr  error
)

// Lexicon is a gse dictionary exposed as a pipeline vocabulary.
type Lexicon struct {
	seg *gse.Segmenter
}

// LoadLexicon loads the embedded gse Chinese dictionary once per process.
func LoadLexicon() (*Lexicon, error) {
	sharedOnce.Do(func() {
		seg, err := gse.New("zh")
		if err != nil {
			sharedErr = fmt.Errorf("load gse dictionary: %w", err)
			return
		}
		sharedSeg = &seg
	})
	if sharedErr != nil {
		return nil, sharedErr
	}
	return &Lexicon{seg: sharedSeg}, nil
}

// Lang implements nlp.Vocab.
func (l *Lexicon) Lang() string { return "zh" }

// Lookup implements nlp.Vocab.
func (l *Lexicon) Lookup(word string) (nlp.Lexeme, bool) {
	freq, pos, ok := l.seg.Find(word)
	if !ok {
		return nlp.Lexeme{}, false
	}
	return nlp.Lexeme{Text: word, Tag: pos, Freq: freq}, true
}

// Cut splits text with gse's own segmenter (HMM enabled).
func (l *Lexicon) Cut(text string) []string {
	return l.seg.Cut(text, true)
}

// tagOf finds the gse tag for a single word, falling back to tagging the
// word on its own when it is not a dictionary entry.
func (l *Lexicon) tagOf(word string) string {
	if lex, ok := l.Lookup(word); ok && lex.Tag != "" {
		return lex.Tag
	}
	segs := l.seg.Pos(word, false)
	if len(segs) == 1 {
		return segs[0].Pos
	}
	for _, s := range segs {
		if s.Pos != "" && s.Pos != "x" {
			return s.Pos
		}
	}
	return "x"
}

// New builds the Chinese pipeline with the given tokenizer strategy. The
// same tagger and entity stages annotate tokens from either tokenizer.
func New(strategy nlp.TokenizerStrategy) (*nlp.Pipeline, error) {
	lex, err := LoadLexicon()
	if err != nil {
		return nil, err
	}
	segment := strategy.Segment
	if strategy.IsNative() {
		segment = nlp.SliceSegmenter(lex.Cut)
	}
	return nlp.New(PipelineID, lex, nlp.Adapt(segment, lex), EntityLabels,
		Tagger(lex),
		nlp.SentenceSplitter(),
		nlp.EntityRecognizer(EntityLabel),
	), nil
}

// Tagger annotates unannotated tokens with gse tags mapped to universal POS.
func Tagger(lex *Lexicon) nlp.Stage {
	return nlp.StageFunc{StageName: "tagger", Fn: func(doc *nlp.Document) error {
		for i := range doc.Tokens {
			tok := &doc.Tokens[i]
			if tok.Annotated() {
				continue
			}
			if cat := nlp.PunctOrSymbol(tok.Text); cat != "" {
				tok.POS, tok.Tag = cat, "x"
			} else {
				tok.Tag = lex.tagOf(tok.Text)
				tok.POS = UniversalPOS(tok.Tag, tok.Text)
			}
			tok.Lemma = tok.Text
		}
		return nil
	}}
}

// UniversalPOS maps an ICTCLAS/jieba-style tag to a universal category.
func UniversalPOS(tag, text string) string {
	switch {
	case tag == "":
		return nlp.X
	case tag == "nr" || tag == "ns" || tag == "nt" || tag == "nz" || strings.HasPrefix(tag, "nr"):
		return nlp.PROPN
	case tag == "m":
		return nlp.NUM
	case tag == "eng":
		return nlp.X
	case tag == "x" || tag == "w":
		if cat := nlp.PunctOrSymbol(text); cat != "" {
			return cat
		}
		if nlp.LikeNum(text) {
			return nlp.NUM
		}
		return nlp.X
	}
	switch tag[0] {
	case 'n', 's', 't', 'q', 'g', 'j', 'l', 'i':
		return nlp.NOUN
	case 'f':
		return nlp.ADP
	case 'v':
		return nlp.VERB
	case 'a', 'b', 'z':
		return nlp.ADJ
	case 'd':
		return nlp.ADV
	case 'r':
		return nlp.PRON
	case 'p':
		return nlp.ADP
	case 'c':
		return nlp.CCONJ
	case 'u', 'y', 'k', 'h':
		return nlp.PART
	case 'e', 'o':
		return nlp.INTJ
	}
	return nlp.X
}

// EntityLabel derives an entity label from a token's gse tag.
func EntityLabel(t nlp.Token) string {
	switch {
	case strings.HasPrefix(t.Tag, "nr"):
		return "PERSON"
	case t.Tag == "ns":
		return "GPE"
	case t.Tag == "nt":
		return "ORG"
	case t.Tag == "t":
		return "DATE"
	case t.Tag == "m" || (t.POS == nlp.NUM && nlp.LikeNum(t.Text)):
		return "CARDINAL"
	}
	return ""
}

// ErrNoJiebaDict is returned when the jieba segmenter has no dictionary.
var ErrNoJiebaDict = errors.New("jieba dictionary path not configured")

// NewJiebaSegmenter loads a jieba dictionary (word freq [pos] per line) and
// returns its HMM-enabled Cut as a segmenter.
func NewJiebaSegmenter(dictPath string) (nlp.SegmentFunc, error) {
	if dictPath == "" {
		return nil, ErrNoJiebaDict
	}
	var seg jiebago.Segmenter
	if err := seg.LoadDictionary(dictPath); err != nil {
		return nil, fmt.Errorf("load jieba dictionary %s: %w", dictPath, err)
	}
	return func(text string) <-chan string {
		return seg.Cut(text, true)
	}, nil
}
