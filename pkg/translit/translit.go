// Package translit renders tokens phonetically: pinyin for Chinese and kana
// readings for Japanese.
package translit

import (
	"strings"

	"github.com/mozillazg/go-pinyin"

	"github.com/japaniel/lingodemo/pkg/nlp"
)

// Transliterator renders text phonetically.
type Transliterator interface {
	Phonetic(text string) string
}

// Pinyin converts Han characters to tone-marked pinyin. Syllables are joined
// without a separator ("台北" -> "táiběi"); other runes pass through.
type Pinyin struct {
	args pinyin.Args
}

// NewPinyin returns a converter using tone marks.
func NewPinyin() *Pinyin {
	args := pinyin.NewArgs()
	args.Style = pinyin.Tone
	args.Fallback = func(r rune, a pinyin.Args) []string {
		return []string{string(r)}
	}
	return &Pinyin{args: args}
}

// Phonetic implements Transliterator.
func (p *Pinyin) Phonetic(text string) string {
	return strings.Join(pinyin.LazyConvert(text, &p.args), "")
}

// Annotate returns the pinyin for a token, "" when it carries no Han text.
func (p *Pinyin) Annotate(tok nlp.Token) string {
	out := p.Phonetic(tok.Text)
	if out == tok.Text {
		return ""
	}
	return out
}

// KanaReading returns a token's reading features joined by "/".
func KanaReading(tok nlp.Token) string {
	return tok.Reading()
}

// ToHiragana converts katakana to hiragana; other runes are unchanged.
func ToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}

// For returns the token annotator used on reading lines for lang, or nil.
func For(lang string) func(nlp.Token) string {
	switch lang {
	case "zh":
		return NewPinyin().Annotate
	case "ja":
		return KanaReading
	}
	return nil
}
