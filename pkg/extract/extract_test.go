package extract

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/japaniel/lingodemo/pkg/nlp"
)

func doc(words ...string) *nlp.Document {
	d := &nlp.Document{Lang: "zh"}
	for _, w := range words {
		d.Tokens = append(d.Tokens, nlp.Token{Text: w})
	}
	return d
}

func TestDedupeStrings(t *testing.T) {
	got := DedupeStrings([]string{"跑", "跳", "跑", "坐"})
	want := []string{"跑", "跳", "坐"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDedupeBySurfaceKeepsFirst(t *testing.T) {
	tokens := []nlp.Token{
		{Text: "行っ", Lemma: "行く"},
		{Text: "来"},
		{Text: "行っ", Lemma: "other"},
	}
	got := DedupeBySurface(tokens)
	if len(got) != 2 || got[0].Lemma != "行く" || got[1].Text != "来" {
		t.Fatalf("unexpected %+v", got)
	}
}

func TestCategoryFilter(t *testing.T) {
	tokens := []nlp.Token{
		{Text: "貓", POS: nlp.NOUN},
		{Text: "，", POS: nlp.PUNCT},
		{Text: "跑", POS: nlp.VERB},
		{Text: "%", POS: nlp.SYM},
	}
	got := nlp.Surfaces(Exclude(nlp.PUNCT, nlp.SYM).Apply(tokens))
	if !reflect.DeepEqual(got, []string{"貓", "跑"}) {
		t.Fatalf("Exclude: got %v", got)
	}
	got = nlp.Surfaces(Only(nlp.VERB).Apply(tokens))
	if !reflect.DeepEqual(got, []string{"跑"}) {
		t.Fatalf("Only: got %v", got)
	}
	if n := len(CategoryFilter{}.Apply(tokens)); n != 4 {
		t.Fatalf("zero filter kept %d tokens", n)
	}
}

func TestLookupCandidates(t *testing.T) {
	d := &nlp.Document{Tokens: []nlp.Token{
		{Text: "台北", POS: nlp.PROPN},
		{Text: "101", POS: nlp.NUM},
		{Text: "，", POS: nlp.PUNCT},
		{Text: "燈光秀", POS: nlp.NOUN},
		{Text: "CNN", POS: nlp.PROPN},
		{Text: "www.moedict.tw", POS: nlp.X},
		{Text: "台北", POS: nlp.PROPN},
		{Text: "２０２２", POS: nlp.NUM},
	}}
	got := LookupCandidates(d)
	want := []string{"台北", "燈光秀"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMatcherPositional(t *testing.T) {
	m, err := Compile([]Predicate{Regex("孔"), Regex("子")})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	res := m.Match(doc("孔", "子", "出現", "了"))
	if len(res.Spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(res.Spans))
	}
	s := res.Spans[0]
	if s.Start != 0 || s.End != 2 || s.Text != "孔子" {
		t.Errorf("unexpected span %+v", s)
	}
	if s.Left != "" || s.Right != "出現" {
		t.Errorf("unexpected neighbours %q %q", s.Left, s.Right)
	}
}

func TestMatcherEmptyPredicates(t *testing.T) {
	m, err := Compile(nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, d := range []*nlp.Document{doc(), doc("孔", "子"), doc("a", "b", "c")} {
		res := m.Match(d)
		if !res.Empty() {
			t.Fatalf("expected no spans, got %+v", res.Spans)
		}
		if lines := res.Lines(); len(lines) != 1 || lines[0] != NoMatches {
			t.Fatalf("expected %q, got %v", NoMatches, lines)
		}
	}
}

func TestMatcherEntityAndOverlap(t *testing.T) {
	d := doc("台北", "101", "今天", "表示")
	d.Tokens[0].Ent = "GPE"
	m, err := Compile([]Predicate{Entity("GPE"), Regex(`^\d+$`)})
	if err != nil {
		t.Fatal(err)
	}
	if res := m.Match(d); len(res.Spans) != 1 || res.Spans[0].Text != "台北101" {
		t.Fatalf("unexpected %+v", res.Spans)
	}

	m, _ = Compile([]Predicate{Regex("a"), Regex("a")})
	res := m.Match(doc("a", "a", "a"))
	if len(res.Spans) != 2 {
		t.Fatalf("expected overlapping spans, got %d", len(res.Spans))
	}
	if got := res.Lines(); got[0] != "[aa] a" || got[1] != "a [aa]" {
		t.Fatalf("unexpected lines %q", got)
	}
}

func TestCompileMalformed(t *testing.T) {
	tests := []struct {
		name  string
		preds []Predicate
	}{
		{"bad regex", []Predicate{Regex("孔"), Regex("(")}},
		{"empty label", []Predicate{Entity("")}},
		{"unknown kind", []Predicate{{Kind: "lemma", Value: "x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.preds)
			if !errors.Is(err, ErrMalformedPattern) {
				t.Fatalf("expected ErrMalformedPattern, got %v", err)
			}
			var pe *PatternError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *PatternError, got %T", err)
			}
		})
	}
}

func TestParsePredicate(t *testing.T) {
	tests := map[string]Predicate{
		"ent:PERSON":  Entity("PERSON"),
		"regex:(ed)$": Regex("(ed)$"),
		"[たい]$":       Regex("[たい]$"),
	}
	for in, want := range tests {
		if got := ParsePredicate(in); got != want {
			t.Errorf("ParsePredicate(%q) = %+v, want %+v", in, got, want)
		}
	}
}

func TestSentenceLines(t *testing.T) {
	d := &nlp.Document{
		Tokens: []nlp.Token{
			{Text: "台北", POS: nlp.PROPN},
			{Text: "今天", POS: nlp.NOUN},
			{Text: "。", POS: nlp.PUNCT},
			{Text: "好", POS: nlp.ADJ},
		},
		Sents: []nlp.Bounds{{Start: 0, End: 3}, {Start: 3, End: 4}},
	}
	annotate := func(t nlp.Token) string {
		if t.Text == "台北" {
			return "táiběi"
		}
		return ""
	}
	got := SentenceLines(d, NoPunct, annotate)
	want := []string{"1 >>> 台北 [táiběi] | 今天", "2 >>> 好"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSentenceLinesSkipsBlankSentences(t *testing.T) {
	blank := &nlp.Document{Tokens: []nlp.Token{{Text: "   ", POS: nlp.SPACE}}}
	if got := SentenceLines(blank, NoPunct, nil); len(got) != 0 {
		t.Errorf("whitespace-only input should render nothing, got %q", got)
	}

	d := &nlp.Document{
		Tokens: []nlp.Token{
			{Text: "。", POS: nlp.PUNCT},
			{Text: "\n", POS: nlp.SPACE},
			{Text: "好", POS: nlp.ADJ},
		},
		Sents: []nlp.Bounds{{Start: 0, End: 2}, {Start: 2, End: 3}},
	}
	want := []string{"1 >>> 好"}
	if got := SentenceLines(d, NoPunct, nil); !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestInflectionTableAndCSV(t *testing.T) {
	morph := nlp.Morph{}
	morph.Set(nlp.FeatReading, "イッ")
	morph.Set(nlp.FeatInflection, "五段・カ行促音便", "連用タ接続")
	d := &nlp.Document{Tokens: []nlp.Token{
		{Text: "行っ", Tag: "動詞-自立", Lemma: "行く", Morph: morph},
		{Text: "た", Tag: "助動詞", Lemma: "た"},
		{Text: "行っ", Tag: "動詞-自立", Lemma: "行く", Morph: morph},
		{Text: "高い", Tag: "形容詞-自立", Lemma: "高い"},
	}}
	table := InflectionTable(d)
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %v", table.Rows)
	}
	if got := table.Rows[0]; !reflect.DeepEqual(got, []string{"行っ", "イッ", "五段・カ行促音便/連用タ接続", "行く"}) {
		t.Fatalf("unexpected row %q", got)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, table); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || lines[0] != "單詞,發音,詞形變化,原形" {
		t.Fatalf("unexpected csv %q", buf.String())
	}
}

func TestTokenTableSkipsWhitespace(t *testing.T) {
	d := &nlp.Document{Tokens: []nlp.Token{{Text: "a", POS: nlp.DET}, {Text: "\n", POS: nlp.SPACE}, {Text: "cat", POS: nlp.NOUN}}}
	if n := len(TokenTable(d).Rows); n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}
}
