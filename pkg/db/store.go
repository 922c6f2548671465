package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// MaxContextsPerLink caps the example sentences kept for one word in one source.
const MaxContextsPerLink = 5

// isUniqueConstraintErr returns true when the error indicates a unique/constraint violation
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

// CreateOrGetWord returns the id of the (word, lemma, language) row, inserting
// it if needed. Non-empty pronunciation, pos and definitions overwrite stored
// values; empty ones never clear them.
func CreateOrGetWord(db DBExecutor, w Word) (int64, error) {
	trimmed := strings.TrimSpace(w.Word)
	if trimmed == "" {
		return 0, fmt.Errorf("word must be non-empty")
	}
	if w.Language == "" {
		return 0, fmt.Errorf("word %q: language must be non-empty", trimmed)
	}

	var id int64
	query := `INSERT INTO words (word, lemma, language, pronunciation, pos, definitions, definitions_source, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			  ON CONFLICT(word, lemma, language)
			  DO UPDATE SET
			    pronunciation = COALESCE(NULLIF(excluded.pronunciation, ''), words.pronunciation),
			    pos = COALESCE(NULLIF(excluded.pos, ''), words.pos),
			    definitions = COALESCE(NULLIF(excluded.definitions, ''), words.definitions),
			    definitions_source = COALESCE(NULLIF(excluded.definitions_source, ''), words.definitions_source),
			    updated_at = excluded.updated_at
			  RETURNING id`

	err := db.QueryRow(query, trimmed, w.Lemma, w.Language, w.Pronunciation, w.POS, w.Definitions, w.DefinitionsSource, time.Now()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert word: %w", err)
	}
	return id, nil
}

// CreateOrGetSource returns existing source id or inserts a new source and returns its id.
// Sources are identified by url, title and author.
func CreateOrGetSource(db DBExecutor, s Source) (int64, error) {
	sourceType := strings.TrimSpace(s.SourceType)
	if sourceType == "" {
		return 0, fmt.Errorf("sourceType must be non-empty")
	}

	const maxRetries = 3

	var id int64
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := db.QueryRow(
			`SELECT id FROM sources WHERE IFNULL(url, '') = ? AND IFNULL(title, '') = ? AND IFNULL(author, '') = ?`,
			s.URL, s.Title, s.Author,
		).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}

		res, err := db.Exec(
			`INSERT INTO sources (source_type, title, author, website, url, language, meta) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sourceType, s.Title, s.Author, s.Website, s.URL, s.Language, s.Meta,
		)
		if err != nil {
			// Another writer inserted the same source; select again.
			if isUniqueConstraintErr(err) {
				continue
			}
			return 0, err
		}
		return res.LastInsertId()
	}

	return 0, fmt.Errorf("could not create or get source after %d retries", maxRetries)
}

func getOrCreateSentence(db DBExecutor, text string) (int64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, nil
	}
	var id int64
	if err := db.QueryRow(`SELECT id FROM sentences WHERE text = ?`, trimmed).Scan(&id); err == nil {
		return id, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	if _, err := db.Exec(`INSERT OR IGNORE INTO sentences (text) VALUES (?)`, trimmed); err != nil {
		return 0, err
	}
	if err := db.QueryRow(`SELECT id FROM sentences WHERE text = ?`, trimmed).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// LinkWordToSource records incrementAmount occurrences of the word in the
// source, keeping context as one of at most MaxContextsPerLink sentences.
func LinkWordToSource(db DBExecutor, wordID, sourceID int64, context string, incrementAmount int) error {
	if wordID <= 0 {
		return fmt.Errorf("wordID must be positive")
	}
	if sourceID <= 0 {
		return fmt.Errorf("sourceID must be positive")
	}
	if incrementAmount < 1 {
		return fmt.Errorf("incrementAmount must be positive, got %d", incrementAmount)
	}

	ctxID, err := getOrCreateSentence(db, context)
	if err != nil {
		return fmt.Errorf("get/create context sentence: %w", err)
	}

	var wordSourceID int64
	err = db.QueryRow(`INSERT INTO word_sources (word_id, source_id, context_sentence_id, occurrence_count, first_seen_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(word_id, source_id) DO UPDATE SET
	  occurrence_count = word_sources.occurrence_count + excluded.occurrence_count,
	  context_sentence_id = COALESCE(excluded.context_sentence_id, word_sources.context_sentence_id)
	RETURNING id`, wordID, sourceID, nullableInt64(ctxID), incrementAmount, time.Now()).Scan(&wordSourceID)
	if err != nil {
		return fmt.Errorf("upsert word_source: %w", err)
	}
	if ctxID == 0 {
		return nil
	}

	_, err = db.Exec(`
		INSERT INTO word_contexts (word_source_id, sentence_id)
		SELECT ?, ?
		WHERE (SELECT COUNT(*) FROM word_contexts WHERE word_source_id = ?) < ?
		ON CONFLICT DO NOTHING`,
		wordSourceID, ctxID, wordSourceID, MaxContextsPerLink)
	return err
}

// nullableInt64 returns nil for 0 (meaning no sentence) else the value.
func nullableInt64(v int64) interface{} {
	if v == 0 {
		return nil
	}
	return v
}

// UpdateWordDefinitions updates the definitions JSON for a given word.
func UpdateWordDefinitions(db DBExecutor, wordID int64, definitions, source string) error {
	if wordID <= 0 {
		return fmt.Errorf("wordID must be positive")
	}
	_, err := db.Exec(`UPDATE words SET definitions = ?, definitions_source = ?, updated_at = ? WHERE id = ?`,
		definitions, source, time.Now(), wordID)
	return err
}

// GetWordDefinitions returns the stored definitions for word in language and
// where they came from. ok is false when no row has definitions yet.
func GetWordDefinitions(db DBExecutor, word, language string) (definitions, source string, ok bool, err error) {
	var defs, src sql.NullString
	err = db.QueryRow(`SELECT definitions, definitions_source FROM words
		WHERE word = ? AND language = ? AND IFNULL(definitions, '') != ''
		ORDER BY id LIMIT 1`, word, language).Scan(&defs, &src)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, err
	}
	return defs.String, src.String, true, nil
}

// GetWordsBySource returns words associated with a given source id, in
// insertion order.
func GetWordsBySource(db DBExecutor, sourceID int64) ([]Word, error) {
	rows, err := db.Query(`SELECT w.id, w.word, w.lemma, w.language, w.pronunciation, w.pos, w.definitions, w.definitions_source
		FROM words w JOIN word_sources ws ON ws.word_id = w.id
		WHERE ws.source_id = ? ORDER BY ws.id`, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Word
	for rows.Next() {
		var w Word
		var pron, pos, defs, defsSrc sql.NullString
		if err := rows.Scan(&w.ID, &w.Word, &w.Lemma, &w.Language, &pron, &pos, &defs, &defsSrc); err != nil {
			return nil, err
		}
		w.Pronunciation = pron.String
		w.POS = pos.String
		w.Definitions = defs.String
		w.DefinitionsSource = defsSrc.String
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetWordSource returns the link between a word and a source.
func GetWordSource(db DBExecutor, wordID, sourceID int64) (WordSource, error) {
	ws := WordSource{WordID: wordID, SourceID: sourceID}
	var ctx sql.NullString
	err := db.QueryRow(`SELECT ws.id, ws.occurrence_count, ws.first_seen_at, s.text
		FROM word_sources ws LEFT JOIN sentences s ON s.id = ws.context_sentence_id
		WHERE ws.word_id = ? AND ws.source_id = ?`, wordID, sourceID).
		Scan(&ws.ID, &ws.OccurrenceCount, &ws.FirstSeenAt, &ctx)
	if err != nil {
		return WordSource{}, err
	}
	ws.ContextSentence = ctx.String
	return ws, nil
}

// GetSourceProgress returns the last processed sentence index for a source,
// -1 when nothing has been processed.
func GetSourceProgress(db DBExecutor, sourceID int64) (int, error) {
	var index int
	err := db.QueryRow("SELECT last_processed_sentence FROM sources WHERE id = ?", sourceID).Scan(&index)
	if err != nil {
		return 0, err
	}
	return index, nil
}

// UpdateSourceProgress updates the last processed sentence index.
func UpdateSourceProgress(db DBExecutor, sourceID int64, index int) error {
	_, err := db.Exec("UPDATE sources SET last_processed_sentence = ? WHERE id = ?", index, sourceID)
	return err
}
