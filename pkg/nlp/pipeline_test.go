package nlp

import (
	"errors"
	"strings"
	"testing"
)

func upperTagger() Stage {
	return StageFunc{StageName: "tagger", Fn: func(doc *Document) error {
		for i := range doc.Tokens {
			if PunctOrSymbol(doc.Tokens[i].Text) == PUNCT {
				doc.Tokens[i].POS = PUNCT
				continue
			}
			doc.Tokens[i].POS = NOUN
			doc.Tokens[i].Lemma = strings.ToLower(doc.Tokens[i].Text)
		}
		return nil
	}}
}

func TestPipelineAnalyzeRunsStages(t *testing.T) {
	seg := SliceSegmenter(func(s string) []string { return []string{"Alice", "runs", ".", "Bob", "sits", "."} })
	labels := []string{"PERSON"}
	p := New("test", EmptyVocab("en"), Adapt(seg, EmptyVocab("en")), labels,
		upperTagger(),
		SentenceSplitter(),
		EntityRecognizer(func(t Token) string {
			if t.Text == "Alice" || t.Text == "Bob" {
				return "PERSON"
			}
			return ""
		}),
	)

	doc, err := p.Analyze("Alice runs. Bob sits.")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(doc.Sents) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(doc.Sents))
	}
	if len(doc.Ents) != 2 || doc.Ents[0].Text != "Alice" || doc.Ents[1].Label != "PERSON" {
		t.Fatalf("unexpected entities: %+v", doc.Ents)
	}
	if doc.Tokens[1].Lemma != "runs" || doc.Tokens[2].POS != PUNCT {
		t.Fatalf("tagger did not run: %+v", doc.Tokens)
	}
	if got := p.StageNames(); strings.Join(got, ",") != "tagger,sentences,ner" {
		t.Fatalf("stage names: %v", got)
	}

	// Returned labels must not alias the pipeline's copy.
	p.EntityLabels()[0] = "CHANGED"
	if p.EntityLabels()[0] != "PERSON" {
		t.Fatalf("entity labels were mutated")
	}
}

func TestPipelineAnalyzeEmpty(t *testing.T) {
	seg := func(string) <-chan string { return nil }
	p := New("empty", EmptyVocab("zh"), Adapt(seg, EmptyVocab("zh")), nil, upperTagger(), SentenceSplitter())
	doc, err := p.Analyze("")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !doc.Empty() || len(doc.Sents) != 0 || doc.Sentences() != nil {
		t.Fatalf("expected empty document, got %+v", doc)
	}
}

func TestPipelineStageError(t *testing.T) {
	boom := errors.New("boom")
	p := New("failing", nil, func(string) (*Document, error) { return &Document{}, nil }, nil,
		StageFunc{StageName: "bad", Fn: func(*Document) error { return boom }})
	if _, err := p.Analyze("x"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped stage error, got %v", err)
	}
}

func TestSentenceSplitterTrailing(t *testing.T) {
	doc := &Document{Tokens: []Token{{Text: "今天"}, {Text: "很好"}, {Text: "。"}, {Text: "明天"}}}
	if err := splitSentences(doc); err != nil {
		t.Fatal(err)
	}
	want := []Bounds{{0, 3}, {3, 4}}
	if len(doc.Sents) != len(want) || doc.Sents[0] != want[0] || doc.Sents[1] != want[1] {
		t.Fatalf("got %v, want %v", doc.Sents, want)
	}
}

func TestAlignSpaces(t *testing.T) {
	toks := AlignSpaces("Turnip cake -- called",
		[]Token{{Text: "Turnip"}, {Text: "cake"}, {Text: "--"}, {Text: "called"}})
	want := []bool{true, true, true, false}
	for i, tok := range toks {
		if tok.SpaceAfter != want[i] {
			t.Errorf("token %q SpaceAfter=%v, want %v", tok.Text, tok.SpaceAfter, want[i])
		}
	}
	doc := &Document{Tokens: toks}
	if got := doc.Text(); got != "Turnip cake -- called" {
		t.Errorf("Text() = %q", got)
	}
}

func TestAlignSpacesKeepsLineBreaks(t *testing.T) {
	toks := AlignSpaces("Hello world \n\nGoodbye world",
		[]Token{{Text: "Hello"}, {Text: "world"}, {Text: "Goodbye"}, {Text: "world"}})
	if got := Surfaces(toks); len(got) != 5 || got[2] != "\n" {
		t.Fatalf("expected one break between the lines, got %q", got)
	}
	if toks[1].SpaceAfter || toks[2].POS != SPACE {
		t.Errorf("unexpected break tokens %+v %+v", toks[1], toks[2])
	}
	doc := &Document{Tokens: toks}
	if got := doc.Text(); got != "Hello world\nGoodbye world" {
		t.Errorf("Text() = %q", got)
	}
	if err := splitSentences(doc); err != nil {
		t.Fatal(err)
	}
	want := []Bounds{{0, 3}, {3, 5}}
	if len(doc.Sents) != 2 || doc.Sents[0] != want[0] || doc.Sents[1] != want[1] {
		t.Errorf("Sents = %v, want %v", doc.Sents, want)
	}
}

func TestSentenceSplitterBreakAfterTerminator(t *testing.T) {
	doc := &Document{Tokens: []Token{{Text: "好"}, {Text: "。"}, LineBreak(), {Text: "明天"}}}
	if err := splitSentences(doc); err != nil {
		t.Fatal(err)
	}
	want := []Bounds{{0, 3}, {3, 4}}
	if len(doc.Sents) != 2 || doc.Sents[0] != want[0] || doc.Sents[1] != want[1] {
		t.Fatalf("got %v, want %v", doc.Sents, want)
	}
}

func TestAppendBreak(t *testing.T) {
	if got := AppendBreak(nil); len(got) != 0 {
		t.Errorf("no break expected at document start, got %v", got)
	}
	toks := AppendBreak([]Token{{Text: "a", SpaceAfter: true}})
	toks = AppendBreak(toks)
	if len(toks) != 2 || toks[0].SpaceAfter {
		t.Errorf("expected a single break, got %+v", toks)
	}
}

func TestLexicalPredicates(t *testing.T) {
	tests := []struct {
		in                   string
		num, url, email, pun bool
	}{
		{"2022", true, false, false, false},
		{"２０２２", true, false, false, false},
		{"3.5", true, false, false, false},
		{"ten", true, false, false, false},
		{"https://www.moedict.tw", false, true, false, false},
		{"user@example.com", false, false, true, false},
		{"，", false, false, false, true},
		{"台北", false, false, false, false},
	}
	for _, tt := range tests {
		if got := LikeNum(tt.in); got != tt.num {
			t.Errorf("LikeNum(%q) = %v", tt.in, got)
		}
		if got := LikeURL(tt.in); got != tt.url {
			t.Errorf("LikeURL(%q) = %v", tt.in, got)
		}
		if got := LikeEmail(tt.in); got != tt.email {
			t.Errorf("LikeEmail(%q) = %v", tt.in, got)
		}
		if got := IsPunct(tt.in); got != tt.pun {
			t.Errorf("IsPunct(%q) = %v", tt.in, got)
		}
	}
	if PunctOrSymbol("＋") != SYM || PunctOrSymbol(" ") != SPACE || PunctOrSymbol("。") != PUNCT {
		t.Errorf("PunctOrSymbol misclassified")
	}
}
