package nlp

// SegmentFunc is an external word segmenter. The returned channel yields
// each word once, in text order, and is closed when segmentation finishes.
// It cannot be replayed.
type SegmentFunc func(text string) <-chan string

// TokenizerStrategy selects how a pipeline splits text. The zero value (or
// Native()) keeps the pipeline's own tokenizer.
type TokenizerStrategy struct {
	Name    string
	Segment SegmentFunc
}

// NativeTokenizer is the strategy name for a pipeline's built-in tokenizer.
const NativeTokenizer = "native"

// Native returns the strategy that keeps the pipeline's own tokenizer.
func Native() TokenizerStrategy {
	return TokenizerStrategy{Name: NativeTokenizer}
}

// External returns a strategy that takes token boundaries from segment.
func External(name string, segment SegmentFunc) TokenizerStrategy {
	return TokenizerStrategy{Name: name, Segment: segment}
}

// IsNative reports whether the strategy uses the pipeline's own tokenizer.
func (s TokenizerStrategy) IsNative() bool {
	return s.Segment == nil
}

// Adapt turns an external segmenter into a pipeline tokenizer. The raw
// document carries surface text only; no inter-token spacing is recorded.
func Adapt(segment SegmentFunc, vocab Vocab) TokenizerFunc {
	return func(text string) (*Document, error) {
		words := Drain(segment(text))
		doc := &Document{Vocab: vocab, Tokens: make([]Token, len(words))}
		if vocab != nil {
			doc.Lang = vocab.Lang()
		}
		for i, w := range words {
			doc.Tokens[i] = Token{Text: w, SpaceAfter: false}
		}
		return doc, nil
	}
}

// Drain reads ch until it is closed. A nil channel yields nothing.
func Drain(ch <-chan string) []string {
	if ch == nil {
		return nil
	}
	var out []string
	for w := range ch {
		out = append(out, w)
	}
	return out
}

// SliceSegmenter wraps a slice-returning segmenter as a SegmentFunc.
func SliceSegmenter(cut func(text string) []string) SegmentFunc {
	return func(text string) <-chan string {
		words := cut(text)
		ch := make(chan string, len(words))
		for _, w := range words {
			ch <- w
		}
		close(ch)
		return ch
	}
}
