package dictionary

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/japaniel/lingodemo/pkg/db"
)

// Cached is a read-through cache storing results in the words table.
// Failed lookups are not cached.
type Cached struct {
	Upstream Lookuper
	DB       *sql.DB
	Language string
	// Logger reports cache write failures. nil means no logging.
	Logger *slog.Logger
}

// Lookup implements Lookuper.
func (c *Cached) Lookup(ctx context.Context, word string) (*Result, error) {
	defs, _, ok, err := db.GetWordDefinitions(c.DB, word, c.Language)
	if err == nil && ok {
		var res Result
		if jerr := json.Unmarshal([]byte(defs), &res); jerr == nil && res.Word != "" {
			return &res, nil
		}
	} else if err != nil && c.Logger != nil {
		c.Logger.Warn("definition cache read failed", "word", word, "err", err)
	}

	res, err := c.Upstream.Lookup(ctx, word)
	if err != nil {
		return nil, err
	}
	c.store(word, res)
	return res, nil
}

func (c *Cached) store(word string, res *Result) {
	data, err := json.Marshal(res)
	if err == nil {
		_, err = db.CreateOrGetWord(c.DB, db.Word{
			Word:              word,
			Lemma:             word,
			Language:          c.Language,
			Definitions:       string(data),
			DefinitionsSource: res.Source,
		})
	}
	if err != nil && c.Logger != nil {
		c.Logger.Warn("definition cache write failed", "word", word, "err", err)
	}
}
