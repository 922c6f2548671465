package dictionary

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/japaniel/lingodemo/pkg/db"
	"github.com/japaniel/lingodemo/pkg/translit"
)

// SourceJMdict names results from JMdict.
const SourceJMdict = "jmdict"

// Index is an in-memory JMdict index keyed by kanji and kana spellings.
type Index struct {
	// index is read concurrently by lookups; mu guards it for Add.
	mu    sync.RWMutex
	index map[string][]JMdictEntry
	size  int
}

// NewIndex builds an index over entries.
func NewIndex(entries []JMdictEntry) *Index {
	ix := &Index{index: make(map[string][]JMdictEntry)}
	ix.Add(entries...)
	return ix
}

// Add indexes more entries.
func (ix *Index) Add(entries ...JMdictEntry) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, e := range entries {
		for _, k := range e.Kanji {
			ix.index[k.Text] = append(ix.index[k.Text], e)
		}
		for _, k := range e.Kana {
			ix.index[k.Text] = append(ix.index[k.Text], e)
		}
		ix.size++
	}
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.size
}

// Find returns the entries whose spelling is word or lemma. When
// pronunciation is set, an entry must also have that kana reading.
// Results are ordered by entry id.
func (ix *Index) Find(word, lemma, pronunciation string) []JMdictEntry {
	candidates := make(map[string]JMdictEntry)
	search := func(term string) {
		if term == "" {
			return
		}
		ix.mu.RLock()
		entries := ix.index[term]
		ix.mu.RUnlock()
		for _, e := range entries {
			candidates[e.Id] = e
		}
	}
	search(word)
	search(lemma)

	var results []JMdictEntry
	for _, entry := range candidates {
		if isMatch(entry, word, lemma, pronunciation) {
			results = append(results, entry)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Id < results[j].Id
	})
	return results
}

func isMatch(entry JMdictEntry, word, lemma, pronunciation string) bool {
	hasText := false
	for _, k := range entry.Kanji {
		if k.Text == word || k.Text == lemma {
			hasText = true
			break
		}
	}
	for _, k := range entry.Kana {
		if k.Text == word || k.Text == lemma {
			hasText = true
			break
		}
	}
	if !hasText {
		return false
	}
	if pronunciation == "" {
		return true
	}

	normalized := translit.ToHiragana(pronunciation)
	for _, k := range entry.Kana {
		if translit.ToHiragana(k.Text) == normalized {
			return true
		}
	}
	return false
}

// NewResult converts matching entries into a Result.
func NewResult(word string, entries []JMdictEntry) *Result {
	res := &Result{Word: word, Source: SourceJMdict}
	seen := map[string]bool{}
	for _, e := range entries {
		for _, k := range e.Kana {
			if !seen[k.Text] {
				seen[k.Text] = true
				res.Readings = append(res.Readings, Reading{Text: k.Text, System: "kana"})
			}
		}
		for _, s := range e.Sense {
			var glosses []string
			for _, g := range s.Gloss {
				glosses = append(glosses, g.Text)
			}
			if len(glosses) == 0 {
				continue
			}
			res.Definitions = append(res.Definitions, Definition{
				Text: strings.Join(glosses, "; "),
				POS:  s.PartOfSpeech,
			})
		}
	}
	if raw, err := json.Marshal(entries); err == nil {
		res.Raw = raw
	}
	return res
}

// JMdictLookup adapts an Index to the Lookuper interface.
type JMdictLookup struct {
	Index *Index
}

// Lookup implements Lookuper.
func (j JMdictLookup) Lookup(ctx context.Context, word string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches := j.Index.Find(word, word, "")
	if len(matches) == 0 {
		return nil, fmt.Errorf("lookup %q: %w", word, ErrNotFound)
	}
	return NewResult(word, matches), nil
}

// Backfill fills in definitions for saved Japanese words that have none,
// matching on word, lemma and reading. It returns the number of updated rows.
func (ix *Index) Backfill(conn *sql.DB, logger *slog.Logger) (int, error) {
	rows, err := conn.Query(`SELECT id, word, lemma, pronunciation FROM words
		WHERE language = 'ja' AND IFNULL(definitions, '') = ''`)
	if err != nil {
		return 0, err
	}

	type update struct {
		id  int64
		def string
	}
	var updates []update
	for rows.Next() {
		var id int64
		var word, lemma string
		var pronunciation sql.NullString
		if err := rows.Scan(&id, &word, &lemma, &pronunciation); err != nil {
			rows.Close()
			return 0, err
		}
		matches := ix.Find(word, lemma, pronunciation.String)
		if len(matches) == 0 {
			continue
		}
		data, err := json.Marshal(NewResult(word, matches))
		if err != nil {
			if logger != nil {
				logger.Warn("format definitions", "word", word, "err", err)
			}
			continue
		}
		updates = append(updates, update{id, string(data)})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	updated := 0
	for _, u := range updates {
		if err := db.UpdateWordDefinitions(conn, u.id, u.def, SourceJMdict); err != nil {
			if logger != nil {
				logger.Warn("update definitions", "id", u.id, "err", err)
			}
			continue
		}
		updated++
	}
	return updated, nil
}
