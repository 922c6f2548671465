package nlp

import (
	"strings"
	"testing"
)

func chanOf(words ...string) <-chan string {
	ch := make(chan string, len(words))
	for _, w := range words {
		ch <- w
	}
	close(ch)
	return ch
}

func TestAdaptPreservesSegmenterOrder(t *testing.T) {
	tests := [][]string{
		{"孔", "子", "出現", "了"},
		{"台北", "101", "今天", "表示", "，"},
		{"a"},
	}
	for _, words := range tests {
		seg := func(string) <-chan string { return chanOf(words...) }
		doc, err := Adapt(seg, EmptyVocab("zh"))(strings.Join(words, ""))
		if err != nil {
			t.Fatalf("adapt: %v", err)
		}
		got := Surfaces(doc.Tokens)
		if strings.Join(got, "|") != strings.Join(words, "|") {
			t.Errorf("got %v, want %v", got, words)
		}
		for i, tok := range doc.Tokens {
			if tok.SpaceAfter {
				t.Errorf("token %d (%q) has SpaceAfter=true", i, tok.Text)
			}
			if tok.Annotated() {
				t.Errorf("token %d (%q) should be raw", i, tok.Text)
			}
		}
		if doc.Lang != "zh" || doc.Vocab == nil {
			t.Errorf("expected vocab and lang to be attached, got lang=%q", doc.Lang)
		}
	}
}

func TestAdaptEmptySegmentation(t *testing.T) {
	for name, seg := range map[string]SegmentFunc{
		"closed": func(string) <-chan string { return chanOf() },
		"nil":    func(string) <-chan string { return nil },
	} {
		t.Run(name, func(t *testing.T) {
			doc, err := Adapt(seg, nil)("非空的輸入")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !doc.Empty() {
				t.Fatalf("expected empty document, got %d tokens", doc.Len())
			}
		})
	}
}

func TestAdaptConsumesSegmenterOnce(t *testing.T) {
	calls := 0
	seg := func(string) <-chan string {
		calls++
		return chanOf("一", "二")
	}
	if _, err := Adapt(seg, nil)("一二"); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("segmenter called %d times, want 1", calls)
	}
}

func TestSliceSegmenter(t *testing.T) {
	seg := SliceSegmenter(func(s string) []string { return strings.Split(s, " ") })
	got := Drain(seg("a b c"))
	if strings.Join(got, ",") != "a,b,c" {
		t.Fatalf("got %v", got)
	}
}
