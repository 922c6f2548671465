package zh

import (
	"errors"
	"strings"
	"testing"

	"github.com/japaniel/lingodemo/pkg/nlp"
)

const sample = "台北101今天表示，即日起推出「虎年新春燈光秀」。"

func TestNativePipeline(t *testing.T) {
	p, err := New(nlp.Native())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	doc, err := p.Analyze(sample)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if doc.Empty() {
		t.Fatal("no tokens")
	}
	if got := strings.Join(nlp.Surfaces(doc.Tokens), ""); got != sample {
		t.Errorf("tokens do not reassemble the input: %q", got)
	}
	for _, tok := range doc.Tokens {
		if !tok.Annotated() {
			t.Errorf("token %q left unannotated", tok.Text)
		}
	}
	if len(doc.Sents) != 1 {
		t.Errorf("expected 1 sentence, got %d", len(doc.Sents))
	}
}

func TestJiebaSegmenterFeedsSameTagger(t *testing.T) {
	seg, err := NewJiebaSegmenter("testdata/jieba_dict.txt")
	if err != nil {
		t.Fatalf("NewJiebaSegmenter: %v", err)
	}
	p, err := New(nlp.External("jieba", seg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	text := "孔子出現了"
	doc, err := p.Analyze(text)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got := strings.Join(nlp.Surfaces(doc.Tokens), ""); got != text {
		t.Fatalf("jieba tokens do not reassemble the input: %q", got)
	}
	for _, tok := range doc.Tokens {
		if tok.SpaceAfter {
			t.Errorf("jieba token %q marked with trailing space", tok.Text)
		}
		if !tok.Annotated() || tok.Lemma != tok.Text {
			t.Errorf("jieba token %q not annotated by the pipeline: %+v", tok.Text, tok)
		}
	}
}

func TestEntityLabelsCoverDocument(t *testing.T) {
	p, err := New(nlp.Native())
	if err != nil {
		t.Fatal(err)
	}
	doc, err := p.Analyze("孔子和李白在北京的中央社見面。" + sample)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	labels := make(map[string]bool)
	for _, l := range p.EntityLabels() {
		labels[l] = true
	}
	for _, e := range doc.Ents {
		if !labels[e.Label] {
			t.Errorf("entity %q label %q not in EntityLabels %v", e.Text, e.Label, p.EntityLabels())
		}
	}
}

func TestNewJiebaSegmenterRequiresDict(t *testing.T) {
	if _, err := NewJiebaSegmenter(""); !errors.Is(err, ErrNoJiebaDict) {
		t.Fatalf("expected ErrNoJiebaDict, got %v", err)
	}
	if _, err := NewJiebaSegmenter("testdata/missing.txt"); err == nil {
		t.Fatal("expected error for missing dictionary")
	}
}

func TestUniversalPOS(t *testing.T) {
	tests := []struct {
		tag, text, want string
	}{
		{"n", "燈光", nlp.NOUN},
		{"ns", "台北", nlp.PROPN},
		{"nr", "孔子", nlp.PROPN},
		{"v", "表示", nlp.VERB},
		{"vn", "推出", nlp.VERB},
		{"m", "三", nlp.NUM},
		{"x", "，", nlp.PUNCT},
		{"x", "101", nlp.NUM},
		{"d", "即", nlp.ADV},
		{"ul", "了", nlp.PART},
		{"", "?", nlp.X},
	}
	for _, tt := range tests {
		if got := UniversalPOS(tt.tag, tt.text); got != tt.want {
			t.Errorf("UniversalPOS(%q, %q) = %q, want %q", tt.tag, tt.text, got, tt.want)
		}
	}
}

func TestEntityLabel(t *testing.T) {
	tests := []struct {
		tok  nlp.Token
		want string
	}{
		{nlp.Token{Text: "孔子", Tag: "nr"}, "PERSON"},
		{nlp.Token{Text: "台北", Tag: "ns"}, "GPE"},
		{nlp.Token{Text: "中央社", Tag: "nt"}, "ORG"},
		{nlp.Token{Text: "今天", Tag: "t"}, "DATE"},
		{nlp.Token{Text: "101", Tag: "x", POS: nlp.NUM}, "CARDINAL"},
		{nlp.Token{Text: "表示", Tag: "v"}, ""},
	}
	for _, tt := range tests {
		if got := EntityLabel(tt.tok); got != tt.want {
			t.Errorf("EntityLabel(%q) = %q, want %q", tt.tok.Text, got, tt.want)
		}
	}
}
