// Package pipeline builds analysis pipelines from their identifiers.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/japaniel/lingodemo/pkg/nlp"
	"github.com/japaniel/lingodemo/pkg/nlp/en"
	"github.com/japaniel/lingodemo/pkg/nlp/ja"
	"github.com/japaniel/lingodemo/pkg/nlp/zh"
)

// Tokenizer strategy names.
const (
	TokenizerNative = nlp.NativeTokenizer
	TokenizerJieba  = "jieba"
)

var (
	// ErrUnknownPipeline is returned for identifiers no backend provides.
	ErrUnknownPipeline = errors.New("unknown pipeline")
	// ErrTokenizerUnsupported is returned when a pipeline cannot annotate
	// tokens produced by the requested tokenizer.
	ErrTokenizerUnsupported = errors.New("tokenizer not supported by pipeline")
)

// Build constructs a pipeline for id using the given tokenizer strategy.
func Build(id string, strategy nlp.TokenizerStrategy) (*nlp.Pipeline, error) {
	switch id {
	case zh.PipelineID:
		return zh.New(strategy)
	case ja.IPAPipelineID, ja.UniPipelineID:
		if !strategy.IsNative() {
			return nil, fmt.Errorf("%s with %s: %w", id, strategy.Name, ErrTokenizerUnsupported)
		}
		return ja.New(id)
	case en.PipelineID:
		if !strategy.IsNative() {
			return nil, fmt.Errorf("%s with %s: %w", id, strategy.Name, ErrTokenizerUnsupported)
		}
		return en.New(), nil
	}
	return nil, fmt.Errorf("%q: %w", id, ErrUnknownPipeline)
}

// Analyzer is what callers need from a loaded pipeline.
type Analyzer interface {
	ID() string
	Analyze(text string) (*nlp.Document, error)
	EntityLabels() []string
}

// Loader resolves tokenizer names to strategies and caches built pipelines.
// Loading is the expensive step; analysis on a cached pipeline is cheap.
type Loader struct {
	// JiebaDict is the dictionary file for the jieba tokenizer.
	JiebaDict string
	// Logger is used for load timing. nil means no logging.
	Logger *slog.Logger

	mu    sync.Mutex
	cache *lru.Cache[string, *nlp.Pipeline]
	jieba nlp.SegmentFunc
}

// NewLoader creates a Loader keeping at most size pipelines.
func NewLoader(jiebaDict string, size int) *Loader {
	if size <= 0 {
		size = 8
	}
	cache, _ := lru.New[string, *nlp.Pipeline](size)
	return &Loader{JiebaDict: jiebaDict, cache: cache}
}

// Load returns the pipeline for id with the named tokenizer, building it on
// first use.
func (l *Loader) Load(id, tokenizer string) (Analyzer, error) {
	if tokenizer == "" {
		tokenizer = TokenizerNative
	}
	key := id + "/" + tokenizer

	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.cache.Get(key); ok {
		return p, nil
	}

	strategy, err := l.strategy(tokenizer)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	p, err := Build(id, strategy)
	if err != nil {
		return nil, err
	}
	if l.Logger != nil {
		l.Logger.Info("pipeline loaded", "pipeline", id, "tokenizer", tokenizer, "elapsed", time.Since(start))
	}
	l.cache.Add(key, p)
	return p, nil
}

// strategy assumes l.mu is held.
func (l *Loader) strategy(name string) (nlp.TokenizerStrategy, error) {
	switch name {
	case TokenizerNative:
		return nlp.Native(), nil
	case TokenizerJieba:
		if l.jieba == nil {
			seg, err := zh.NewJiebaSegmenter(l.JiebaDict)
			if err != nil {
				return nlp.TokenizerStrategy{}, err
			}
			l.jieba = seg
		}
		return nlp.External(TokenizerJieba, l.jieba), nil
	}
	return nlp.TokenizerStrategy{}, fmt.Errorf("tokenizer %q: %w", name, ErrTokenizerUnsupported)
}
