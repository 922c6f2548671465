package nlp

import (
	"strings"
)

// Universal part-of-speech categories used across all pipelines.
const (
	ADJ   = "ADJ"
	ADP   = "ADP"
	ADV   = "ADV"
	AUX   = "AUX"
	CCONJ = "CCONJ"
	DET   = "DET"
	INTJ  = "INTJ"
	NOUN  = "NOUN"
	NUM   = "NUM"
	PART  = "PART"
	PRON  = "PRON"
	PROPN = "PROPN"
	PUNCT = "PUNCT"
	SCONJ = "SCONJ"
	SYM   = "SYM"
	VERB  = "VERB"
	SPACE = "SPACE"
	X     = "X"
)

// Morphological feature keys.
const (
	FeatReading    = "Reading"
	FeatInflection = "Inflection"
)

// Morph maps a feature name to one or more values.
type Morph map[string][]string

// Get returns the values for key, or nil.
func (m Morph) Get(key string) []string {
	if m == nil {
		return nil
	}
	return m[key]
}

// Join returns the values for key joined by sep.
func (m Morph) Join(key, sep string) string {
	return strings.Join(m.Get(key), sep)
}

// Set replaces the values for key. Empty values are not stored.
func (m Morph) Set(key string, values ...string) {
	var kept []string
	for _, v := range values {
		if v != "" && v != "*" {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		delete(m, key)
		return
	}
	m[key] = kept
}

// Token is a single analysed unit of text.
type Token struct {
	Text       string `json:"text"`
	SpaceAfter bool   `json:"space_after"`
	// POS is the coarse universal category (NOUN, VERB, PUNCT, ...).
	POS string `json:"pos,omitempty"`
	// Tag is the pipeline's fine-grained tag (e.g. "動詞-非自立可能", "VBD", "ns").
	Tag   string `json:"tag,omitempty"`
	Lemma string `json:"lemma,omitempty"`
	Morph Morph  `json:"morph,omitempty"`
	// Ent is the entity label covering this token, "" outside entities.
	Ent string `json:"ent,omitempty"`
}

// Annotated reports whether a tagger has already filled the token.
func (t Token) Annotated() bool {
	return t.POS != ""
}

// Reading returns the token's reading feature, "" if none.
func (t Token) Reading() string {
	return t.Morph.Join(FeatReading, "/")
}
