// Package dictionary looks words up in local and remote dictionaries:
// moedict.tw for Chinese and JMdict for Japanese.
package dictionary

import (
	"encoding/json"
	"fmt"
	"os"
)

// JMdictEntry matches the structure of jmdict-simplified entries.
type JMdictEntry struct {
	Id    string          `json:"id"`
	Kanji []JMdictElement `json:"kanji"`
	Kana  []JMdictElement `json:"kana"`
	Sense []JMdictSense   `json:"sense"`
}

type JMdictElement struct {
	Text   string   `json:"text"`
	Common bool     `json:"common"`
	Tags   []string `json:"tags"`
}

type JMdictSense struct {
	PartOfSpeech []string      `json:"partOfSpeech"`
	Gloss        []JMdictGloss `json:"gloss"`
}

type JMdictGloss struct {
	Text string `json:"text"`
	Lang string `json:"lang"` // defaults to 'eng' if missing
}

// PrimaryReading returns the first common kana reading, or the first kana.
func (e JMdictEntry) PrimaryReading() string {
	for _, k := range e.Kana {
		if k.Common {
			return k.Text
		}
	}
	if len(e.Kana) > 0 {
		return e.Kana[0].Text
	}
	return ""
}

// LoadJMdictSimplified reads a jmdict-simplified file, either the release
// object `{"words": [...]}` or a bare array of entries.
func LoadJMdictSimplified(path string) ([]JMdictEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var wrapped struct {
		Words []JMdictEntry `json:"words"`
	}
	dec := json.NewDecoder(f)
	if err := dec.Decode(&wrapped); err == nil && len(wrapped.Words) > 0 {
		return wrapped.Words, nil
	}

	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}
	var entries []JMdictEntry
	dec = json.NewDecoder(f)
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to parse dictionary as object or array: %w", err)
	}
	return entries, nil
}
