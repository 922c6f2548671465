// Package ingest saves the vocabulary of an analysed document: every content
// word with its reading, optional definitions and the sentence it came from.
package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/japaniel/lingodemo/pkg/db"
	"github.com/japaniel/lingodemo/pkg/dictionary"
	"github.com/japaniel/lingodemo/pkg/extract"
	"github.com/japaniel/lingodemo/pkg/nlp"
	"github.com/japaniel/lingodemo/pkg/translit"
)

// WorkerPoolInterface abstracts the worker pool so tests can inject failing implementations.
type WorkerPoolInterface interface {
	Start(ctx context.Context)
	Submit(Job) error
	// SubmitCtx attempts to enqueue a job but returns promptly if ctx is canceled.
	SubmitCtx(ctx context.Context, job Job) error
	Close()
}

// ErrNoLanguage is returned for documents that do not name their language.
var ErrNoLanguage = errors.New("document has no language")

// FunctionWords are never saved as vocabulary.
var FunctionWords = extract.Exclude(
	nlp.ADP, nlp.AUX, nlp.CCONJ, nlp.SCONJ, nlp.DET, nlp.PART,
	nlp.NUM, nlp.PUNCT, nlp.SYM, nlp.SPACE, nlp.X,
)

// Ingester saves document vocabulary to the database.
type Ingester struct {
	DB *sql.DB
	// Dict supplies definitions. nil skips lookups.
	Dict      dictionary.Lookuper
	BatchSize int
	// Logger is used for informational messages (e.g. resume status). nil means no logging.
	Logger *slog.Logger
	// OnProgress is called periodically with the number of processed sentences and total sentences.
	OnProgress func(current, total int)

	Workers int

	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) WorkerPoolInterface

	pinyin *translit.Pinyin
}

// NewIngester creates a new Ingester.
func NewIngester(conn *sql.DB, dict dictionary.Lookuper) *Ingester {
	return &Ingester{
		DB:        conn,
		Dict:      dict,
		BatchSize: 50,
		Workers:   4,
		pinyin:    translit.NewPinyin(),
	}
}

// Sentence is one sentence of a document prepared for ingestion.
type Sentence struct {
	Index  int
	Text   string
	Tokens []nlp.Token
}

// Sentences splits doc into indexed sentences. Blank sentences are kept so
// indexes stay stable across runs.
func Sentences(doc *nlp.Document) []Sentence {
	bounds := doc.Sents
	if len(bounds) == 0 && !doc.Empty() {
		bounds = []nlp.Bounds{{Start: 0, End: doc.Len()}}
	}
	out := make([]Sentence, len(bounds))
	for i, b := range bounds {
		out[i] = Sentence{
			Index:  i,
			Text:   strings.TrimSpace(doc.SpanText(b.Start, b.End)),
			Tokens: doc.Tokens[b.Start:b.End],
		}
	}
	return out
}

// wordData holds prepared data for a single word occurrence in a sentence
type wordData struct {
	Word              string
	Reading           string
	POS               string
	Definitions       string
	DefinitionsSource string
	Count             int
}

// processedSentence holds the result of processing a sentence before DB ingestion
type processedSentence struct {
	Index    int
	Sentence string
	Words    []wordData
	Error    error
}

// Ingest saves the vocabulary of doc under sourceID and returns the number of
// word occurrences linked. Sentences are processed concurrently and committed
// in order; progress is checkpointed per sentence so an interrupted run
// resumes where it stopped.
func (ig *Ingester) Ingest(ctx context.Context, sourceID int64, doc *nlp.Document) (int, error) {
	if doc.Lang == "" {
		return 0, ErrNoLanguage
	}
	sentences := Sentences(doc)

	lastProcessed, err := db.GetSourceProgress(ig.DB, sourceID)
	if err != nil {
		ig.logWarn("failed to retrieve progress", "source", sourceID, "err", err)
		lastProcessed = -1
	}
	if lastProcessed >= 0 {
		ig.logInfo("resuming ingest", "source", sourceID, "from", lastProcessed+1)
	}

	total := len(sentences)
	startIdx := lastProcessed + 1
	if startIdx >= total {
		return 0, nil
	}

	workers := ig.Workers
	if workers <= 0 {
		workers = 1
	}
	batchSize := ig.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}

	var wp WorkerPoolInterface
	if ig.PoolFactory != nil {
		wp = ig.PoolFactory(workers, workers*2)
	} else {
		wp = NewWorkerPool(workers, workers*2)
	}
	resultCh := make(chan processedSentence, workers*2)
	resultClosed := false
	doneCh := make(chan error, 1)

	var totalLinks int64

	bw := NewBatchWriter(ig.DB, batchSize, 100*time.Millisecond)
	bw.Logger = ig.Logger
	var batchErr error
	var batchErrMu sync.Mutex
	bw.OnError = func(e error) {
		batchErrMu.Lock()
		if batchErr == nil {
			batchErr = e
		}
		batchErrMu.Unlock()
	}

	defer func() {
		wp.Close()
		if !resultClosed {
			close(resultCh)
		}
		_ = bw.Close()
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wp.Start(ctx)

	commit := func(item processedSentence) error {
		return bw.Submit(func(_ context.Context, tx *sql.Tx) error {
			for _, w := range item.Words {
				wordID, err := db.CreateOrGetWord(tx, db.Word{
					Word:              w.Word,
					Lemma:             w.Word,
					Language:          doc.Lang,
					Pronunciation:     w.Reading,
					POS:               w.POS,
					Definitions:       w.Definitions,
					DefinitionsSource: w.DefinitionsSource,
				})
				if err != nil {
					return fmt.Errorf("failed to persist word %s: %w", w.Word, err)
				}
				if err := db.LinkWordToSource(tx, wordID, sourceID, item.Sentence, w.Count); err != nil {
					return fmt.Errorf("failed to link word %d: %w", wordID, err)
				}
				atomic.AddInt64(&totalLinks, int64(w.Count))
			}
			if err := db.UpdateSourceProgress(tx, sourceID, item.Index); err != nil {
				return fmt.Errorf("failed to save progress: %w", err)
			}
			return nil
		})
	}

	// Consumer: reorder results and commit them in sentence order.
	go func() {
		defer close(doneCh)
		buffer := make(map[int]processedSentence)
		nextIdx := startIdx

		drain := func() error {
			for {
				item, ok := buffer[nextIdx]
				if !ok {
					return nil
				}
				delete(buffer, nextIdx)
				if err := commit(item); err != nil {
					return err
				}
				if ig.OnProgress != nil && (nextIdx+1)%batchSize == 0 {
					ig.OnProgress(nextIdx+1, total)
				}
				nextIdx++
			}
		}

		for {
			select {
			case <-ctx.Done():
				doneCh <- ctx.Err()
				return
			default:
			}

			res, ok := <-resultCh
			if !ok {
				if err := drain(); err != nil {
					cancel()
					doneCh <- err
					return
				}
				if ig.OnProgress != nil {
					ig.OnProgress(total, total)
				}
				doneCh <- nil
				return
			}
			if res.Error != nil {
				cancel()
				doneCh <- res.Error
				return
			}
			buffer[res.Index] = res
			if err := drain(); err != nil {
				cancel()
				doneCh <- err
				return
			}
		}
	}()

Loop:
	for i := startIdx; i < total; i++ {
		select {
		case <-ctx.Done():
			break Loop
		default:
		}

		sent := sentences[i]
		job := func(ctx context.Context) error {
			res := ig.processSentence(ctx, doc.Lang, sent)
			select {
			case resultCh <- res:
			case <-ctx.Done():
			}
			return nil
		}

		if err := wp.SubmitCtx(ctx, job); err != nil {
			if errors.Is(err, ctx.Err()) || err == ErrPoolClosed {
				break Loop
			}
			return 0, err
		}
	}

	// Workers are done after Close, so nothing sends on resultCh any more.
	wp.Close()
	close(resultCh)
	resultClosed = true

	consumerErr := <-doneCh

	if err := bw.Close(); err != nil && consumerErr == nil {
		consumerErr = err
	}
	batchErrMu.Lock()
	if batchErr != nil && consumerErr == nil {
		consumerErr = batchErr
	}
	batchErrMu.Unlock()

	return int(atomic.LoadInt64(&totalLinks)), consumerErr
}

// processSentence collects the sentence's content words and looks them up.
func (ig *Ingester) processSentence(ctx context.Context, lang string, sentence Sentence) processedSentence {
	counts := make(map[string]int)
	byWord := make(map[string]*wordData)
	var ordered []string

	for _, t := range FunctionWords.Apply(extract.CleanTokens(sentence.Tokens)) {
		word := canonical(lang, t)
		if word == "" {
			continue
		}
		reading := ig.reading(lang, t)
		if w, ok := byWord[word]; ok {
			if w.Reading == "" {
				w.Reading = reading
			}
		} else {
			byWord[word] = &wordData{Word: word, Reading: reading, POS: t.POS}
			ordered = append(ordered, word)
		}
		counts[word]++
	}

	words := make([]wordData, 0, len(ordered))
	for _, word := range ordered {
		w := *byWord[word]
		w.Count = counts[word]
		ig.define(ctx, &w)
		words = append(words, w)
	}
	return processedSentence{
		Index:    sentence.Index,
		Sentence: sentence.Text,
		Words:    words,
	}
}

// canonical returns the dictionary form saved for a token.
func canonical(lang string, t nlp.Token) string {
	word := t.Text
	if t.Lemma != "" && t.Lemma != "*" {
		word = t.Lemma
	}
	if lang == "en" {
		word = strings.ToLower(word)
	}
	return strings.TrimSpace(word)
}

func (ig *Ingester) reading(lang string, t nlp.Token) string {
	switch lang {
	case "ja":
		return translit.ToHiragana(t.Reading())
	case "zh":
		if ig.pinyin == nil {
			return ""
		}
		return ig.pinyin.Annotate(t)
	}
	return ""
}

// define fills in definitions; a failed lookup leaves the word without them.
func (ig *Ingester) define(ctx context.Context, w *wordData) {
	if ig.Dict == nil {
		return
	}
	res, err := ig.Dict.Lookup(ctx, w.Word)
	if err != nil || res == nil {
		if err != nil && !errors.Is(err, dictionary.ErrNotFound) {
			ig.logWarn("lookup failed", "word", w.Word, "err", err)
		}
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	w.Definitions = string(data)
	w.DefinitionsSource = res.Source
	if res.Source == dictionary.SourceJMdict && len(res.Readings) > 0 {
		// The dictionary's primary reading for the lemma beats the inflected surface's.
		w.Reading = translit.ToHiragana(res.Readings[0].Text)
	}
}

func (ig *Ingester) logInfo(msg string, args ...any) {
	if ig.Logger != nil {
		ig.Logger.Info(msg, args...)
	}
}

func (ig *Ingester) logWarn(msg string, args ...any) {
	if ig.Logger != nil {
		ig.Logger.Warn(msg, args...)
	}
}
