package nlp

import (
	"fmt"
)

// Lexeme is a vocabulary entry.
type Lexeme struct {
	Text string
	Tag  string
	Freq float64
}

// Vocab is the lexicon shared by a pipeline's tokenizer and stages.
type Vocab interface {
	Lang() string
	Lookup(word string) (Lexeme, bool)
}

type emptyVocab string

func (v emptyVocab) Lang() string                 { return string(v) }
func (v emptyVocab) Lookup(string) (Lexeme, bool) { return Lexeme{}, false }

// EmptyVocab returns a Vocab that knows no words.
func EmptyVocab(lang string) Vocab { return emptyVocab(lang) }

// TokenizerFunc splits text into a raw Document. Native tokenizers may
// annotate as they go; adapted ones leave annotation to later stages.
type TokenizerFunc func(text string) (*Document, error)

// Stage is one annotation step run after tokenization.
type Stage interface {
	Name() string
	Process(doc *Document) error
}

// StageFunc adapts a function to the Stage interface.
type StageFunc struct {
	StageName string
	Fn        func(doc *Document) error
}

func (s StageFunc) Name() string                { return s.StageName }
func (s StageFunc) Process(doc *Document) error { return s.Fn(doc) }

// Pipeline composes a tokenizer with annotation stages. A Pipeline is not
// mutated after construction; its tokenizer is chosen when it is built.
type Pipeline struct {
	id        string
	vocab     Vocab
	tokenizer TokenizerFunc
	stages    []Stage
	labels    []string
}

// New assembles a Pipeline.
func New(id string, vocab Vocab, tokenizer TokenizerFunc, labels []string, stages ...Stage) *Pipeline {
	if vocab == nil {
		vocab = EmptyVocab("")
	}
	return &Pipeline{
		id:        id,
		vocab:     vocab,
		tokenizer: tokenizer,
		stages:    append([]Stage(nil), stages...),
		labels:    append([]string(nil), labels...),
	}
}

// ID returns the pipeline identifier.
func (p *Pipeline) ID() string { return p.id }

// Lang returns the language of the pipeline's vocabulary.
func (p *Pipeline) Lang() string { return p.vocab.Lang() }

// Vocab returns the pipeline's vocabulary.
func (p *Pipeline) Vocab() Vocab { return p.vocab }

// EntityLabels returns the entity labels the pipeline can produce.
func (p *Pipeline) EntityLabels() []string {
	return append([]string(nil), p.labels...)
}

// StageNames lists the annotation stages in run order.
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Analyze tokenizes text and runs every stage over the result.
func (p *Pipeline) Analyze(text string) (*Document, error) {
	doc, err := p.tokenizer(text)
	if err != nil {
		return nil, fmt.Errorf("%s: tokenize: %w", p.id, err)
	}
	if doc == nil {
		doc = &Document{}
	}
	doc.Lang = p.vocab.Lang()
	doc.Vocab = p.vocab
	for _, s := range p.stages {
		if err := s.Process(doc); err != nil {
			return nil, fmt.Errorf("%s: stage %s: %w", p.id, s.Name(), err)
		}
	}
	return doc, nil
}
