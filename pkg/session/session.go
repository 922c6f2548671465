// Package session runs one analysis interaction: pick a language, analyze a
// text, render the views, match patterns and look words up.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/japaniel/lingodemo/pkg/dictionary"
	"github.com/japaniel/lingodemo/pkg/extract"
	"github.com/japaniel/lingodemo/pkg/nlp"
	"github.com/japaniel/lingodemo/pkg/pipeline"
	"github.com/japaniel/lingodemo/pkg/profile"
	"github.com/japaniel/lingodemo/pkg/translit"
)

// PipelineLoader returns a ready pipeline for an id and tokenizer name.
// *pipeline.Loader implements it.
type PipelineLoader interface {
	Load(id, tokenizer string) (pipeline.Analyzer, error)
}

// Request describes one interaction.
type Request struct {
	// Lang is a profile key or display name.
	Lang string `json:"lang"`
	// Tokenizer is empty for the pipeline's own tokenizer.
	Tokenizer string `json:"tokenizer,omitempty"`
	// Text defaults to the profile's sample text.
	Text string `json:"text,omitempty"`
	// Patterns is one token sequence to find. nil means the profile's default
	// pattern; an empty slice matches nothing.
	Patterns []extract.Predicate `json:"patterns,omitempty"`
	// Lookup names words to send to the dictionary.
	Lookup []string `json:"lookup,omitempty"`
	// LookupAll looks up every candidate word of the document.
	LookupAll bool `json:"lookup_all,omitempty"`
}

// Report is everything one interaction produced.
type Report struct {
	Profile     profile.LanguageProfile `json:"profile"`
	Tokenizer   string                  `json:"tokenizer"`
	Doc         *nlp.Document           `json:"-"`
	Lines       []string                `json:"lines"`
	Tokens      extract.Table           `json:"tokens"`
	Inflections extract.Table           `json:"inflections"`
	Entities    []nlp.Entity            `json:"entities"`
	// EntityLabels is every label the pipeline can produce.
	EntityLabels []string             `json:"entity_labels"`
	Patterns     []extract.Predicate  `json:"patterns"`
	Matches      extract.MatchResult  `json:"matches"`
	MatchLines   []string             `json:"match_lines"`
	Candidates   []string             `json:"candidates"`
	Lookups      []dictionary.Outcome `json:"lookups,omitempty"`
	Elapsed      time.Duration        `json:"elapsed_ns"`
}

// Session holds the long-lived collaborators shared by every interaction.
type Session struct {
	Table  *profile.Table
	Loader PipelineLoader
	// Dictionaries maps a profile key to its dictionary. Languages without
	// one report every lookup as no result.
	Dictionaries map[string]dictionary.Lookuper
	// Logger is used for per-run summaries. nil means no logging.
	Logger *slog.Logger
}

// New creates a Session over table and loader.
func New(table *profile.Table, loader PipelineLoader) *Session {
	return &Session{
		Table:        table,
		Loader:       loader,
		Dictionaries: make(map[string]dictionary.Lookuper),
	}
}

// Run performs one interaction. An invalid language, an unsupported tokenizer
// or a malformed pattern aborts the run; failed lookups are reported per word.
func (s *Session) Run(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()
	prof, err := s.Table.Resolve(req.Lang)
	if err != nil {
		return nil, err
	}
	if !prof.SupportsTokenizer(req.Tokenizer) {
		return nil, fmt.Errorf("%s with %q: %w", prof.Key, req.Tokenizer, pipeline.ErrTokenizerUnsupported)
	}

	patterns := req.Patterns
	if patterns == nil && prof.DefaultPattern != "" {
		patterns = []extract.Predicate{extract.Regex(prof.DefaultPattern)}
	}
	matcher, err := extract.Compile(patterns)
	if err != nil {
		return nil, err
	}

	p, err := s.Loader.Load(prof.PipelineID, req.Tokenizer)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", prof.PipelineID, err)
	}
	text := req.Text
	if text == "" {
		text = prof.DefaultText
	}
	doc, err := p.Analyze(text)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	tokenizer := req.Tokenizer
	if tokenizer == "" {
		tokenizer = pipeline.TokenizerNative
	}
	rep := &Report{
		Profile:      prof,
		Tokenizer:    tokenizer,
		Doc:          doc,
		Lines:        extract.SentenceLines(doc, extract.NoPunct, translit.For(prof.Key)),
		Tokens:       extract.TokenTable(doc),
		Inflections:  extract.InflectionTable(doc),
		Entities:     doc.Ents,
		EntityLabels: p.EntityLabels(),
		Patterns:     matcher.Predicates(),
		Candidates:   extract.LookupCandidates(doc),
	}
	rep.Matches = matcher.Match(doc)
	rep.MatchLines = rep.Matches.Lines()

	words := req.Lookup
	if req.LookupAll {
		words = rep.Candidates
	}
	if len(words) > 0 {
		rep.Lookups = s.lookup(ctx, prof.Key, words)
	}

	rep.Elapsed = time.Since(start)
	if s.Logger != nil {
		s.Logger.Info("analysis complete",
			"lang", prof.Key, "tokenizer", tokenizer, "tokens", doc.Len(),
			"sentences", len(doc.Sents), "matches", len(rep.Matches.Spans),
			"lookups", len(rep.Lookups), "elapsed", rep.Elapsed)
	}
	return rep, nil
}

// Lookup looks words up in the dictionary configured for lang.
func (s *Session) Lookup(ctx context.Context, lang string, words []string) ([]dictionary.Outcome, error) {
	prof, err := s.Table.Resolve(lang)
	if err != nil {
		return nil, err
	}
	return s.lookup(ctx, prof.Key, words), nil
}

func (s *Session) lookup(ctx context.Context, key string, words []string) []dictionary.Outcome {
	d := s.Dictionaries[key]
	if d == nil {
		out := make([]dictionary.Outcome, len(words))
		for i, w := range words {
			out[i] = dictionary.Outcome{Word: w, Err: dictionary.ErrNotFound}
		}
		return out
	}
	out := dictionary.Batch(ctx, d, words)
	if s.Logger != nil {
		for _, o := range out {
			if o.Err != nil {
				s.Logger.Debug("lookup failed", "lang", key, "word", o.Word, "err", o.Err)
			}
		}
	}
	return out
}
