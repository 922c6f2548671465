package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/japaniel/lingodemo/pkg/config"
	"github.com/japaniel/lingodemo/pkg/db"
	"github.com/japaniel/lingodemo/pkg/dictionary"
	"github.com/japaniel/lingodemo/pkg/extract"
	"github.com/japaniel/lingodemo/pkg/ingest"
	"github.com/japaniel/lingodemo/pkg/logging"
	"github.com/japaniel/lingodemo/pkg/pipeline"
	"github.com/japaniel/lingodemo/pkg/profile"
	"github.com/japaniel/lingodemo/pkg/server"
	"github.com/japaniel/lingodemo/pkg/session"
	"github.com/japaniel/lingodemo/pkg/source"
)

func main() {
	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// patternFlag collects repeated -pattern values, one per token.
type patternFlag []string

func (p *patternFlag) String() string { return strings.Join(*p, " ") }

func (p *patternFlag) Set(v string) error {
	*p = append(*p, v)
	return nil
}

type options struct {
	envFile    string
	lang       string
	tokenizer  string
	text       string
	url        string
	patterns   patternFlag
	noPattern  bool
	lookup     string
	csvPath    string
	save       bool
	dbPath     string
	importDict string
	serve      bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("lingodemo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.envFile, "config", config.DefaultEnvFile, "Path to a .env file with LINGODEMO_* settings")
	fs.StringVar(&o.lang, "lang", profile.Chinese, "Language key or display name (zh, en, ja)")
	fs.StringVar(&o.tokenizer, "tokenizer", "", "Tokenizer strategy (native, jieba)")
	fs.StringVar(&o.text, "text", "", "Text to analyze (defaults to the language's sample text)")
	fs.StringVar(&o.url, "url", "", "Fetch and analyze the article at this URL")
	fs.Var(&o.patterns, "pattern", "Token predicate, repeatable: regex:EXPR, ent:LABEL or a bare regex")
	fs.BoolVar(&o.noPattern, "no-pattern", false, "Skip pattern matching")
	fs.StringVar(&o.lookup, "lookup", "", "Comma separated words to look up, or \"all\" for every candidate word")
	fs.StringVar(&o.csvPath, "csv", "", "Write the inflection table (or token table when empty) as CSV to this path")
	fs.BoolVar(&o.save, "save", false, "Save the document's vocabulary to the database")
	fs.StringVar(&o.dbPath, "db", "", "Path to SQLite database (overrides LINGODEMO_DB)")
	fs.StringVar(&o.importDict, "import-dict", "", "Path to JMdict-Simplified JSON file to fill in Japanese definitions")
	fs.BoolVar(&o.serve, "serve", false, "Serve the HTTP API instead of running once")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.text != "" && o.url != "" {
		return nil, errors.New("use either -text or -url, not both")
	}
	return o, nil
}

// app holds the collaborators built from configuration.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	conn   *sql.DB
	out    io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return err
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	logger, closer, err := logging.New(stderr, logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer closer.Close()

	a := &app{cfg: cfg, logger: logger, out: stdout}

	needDB := o.save || o.serve || o.importDict != "" || o.lookup != ""
	if needDB {
		a.conn, err = db.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer a.conn.Close()
		logger.Debug("database initialized", "path", cfg.DBPath)
	}

	if o.importDict != "" {
		return a.importDictionary(o.importDict)
	}

	table := profile.DefaultTable()
	if cfg.LanguagesFile != "" {
		if table, err = profile.LoadTable(cfg.LanguagesFile); err != nil {
			return err
		}
	}
	loader := pipeline.NewLoader(cfg.JiebaDict, 8)
	loader.Logger = logger
	sess := session.New(table, loader)
	sess.Logger = logger

	if o.serve {
		for _, key := range table.Keys() {
			if d := a.dictionary(ctx, key); d != nil {
				sess.Dictionaries[key] = a.cached(d, key)
			}
		}
		return server.New(sess, logger).Listen(ctx, cfg.Addr)
	}
	return a.analyze(ctx, sess, o)
}

func (a *app) importDictionary(path string) error {
	fmt.Fprintf(a.out, "Loading dictionary from %s...\n", path)
	entries, err := dictionary.LoadJMdictSimplified(path)
	if err != nil {
		return fmt.Errorf("failed to load dictionary: %w", err)
	}
	fmt.Fprintf(a.out, "Loaded %d entries. Processing updates...\n", len(entries))
	count, err := dictionary.NewIndex(entries).Backfill(a.conn, a.logger)
	if err != nil {
		return fmt.Errorf("failed to update definitions: %w", err)
	}
	fmt.Fprintf(a.out, "Successfully updated definitions for %d words.\n", count)
	return nil
}

// dictionary returns the upstream dictionary for a profile key, or nil.
func (a *app) dictionary(ctx context.Context, key string) dictionary.Lookuper {
	switch key {
	case profile.Chinese:
		d := dictionary.NewMoeDict(a.cfg.MoeDictURL, a.cfg.LookupTimeout)
		d.Logger = a.logger
		return d
	case profile.Japanese:
		dl := &dictionary.Downloader{Logger: a.logger}
		if err := dl.Ensure(ctx, a.cfg.JMdictPath); err != nil {
			a.logger.Warn("dictionary unavailable, continuing without definitions", "path", a.cfg.JMdictPath, "err", err)
			return nil
		}
		start := time.Now()
		entries, err := dictionary.LoadJMdictSimplified(a.cfg.JMdictPath)
		if err != nil {
			a.logger.Warn("failed to load dictionary", "path", a.cfg.JMdictPath, "err", err)
			return nil
		}
		a.logger.Info("dictionary loaded", "entries", len(entries), "elapsed", time.Since(start))
		return dictionary.JMdictLookup{Index: dictionary.NewIndex(entries)}
	}
	return nil
}

func (a *app) cached(d dictionary.Lookuper, key string) dictionary.Lookuper {
	if a.conn == nil {
		return d
	}
	return &dictionary.Cached{Upstream: d, DB: a.conn, Language: key, Logger: a.logger}
}

func (a *app) analyze(ctx context.Context, sess *session.Session, o *options) error {
	req := session.Request{Lang: o.lang, Tokenizer: o.tokenizer, Text: o.text}
	src := db.Source{SourceType: "text", Title: "text"}

	if o.url != "" {
		fmt.Fprintf(a.out, "Fetching %s...\n", o.url)
		article, err := source.FetchArticle(ctx, &http.Client{Timeout: 30 * time.Second}, o.url)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Title: %s\n", article.Title)
		req.Text = article.Text
		src = db.Source{
			SourceType: "website_article",
			Title:      article.Title,
			Author:     article.Byline,
			Website:    article.SiteName,
			URL:        o.url,
		}
	}

	for _, p := range o.patterns {
		req.Patterns = append(req.Patterns, extract.ParsePredicate(p))
	}
	if o.noPattern {
		req.Patterns = []extract.Predicate{}
	}

	prof, err := sess.Table.Resolve(o.lang)
	if err != nil {
		return err
	}
	var upstream dictionary.Lookuper
	if o.lookup != "" || o.save {
		upstream = a.dictionary(ctx, prof.Key)
	}
	if o.lookup != "" && upstream != nil {
		sess.Dictionaries[prof.Key] = a.cached(upstream, prof.Key)
	}
	switch o.lookup {
	case "":
	case "all":
		req.LookupAll = true
	default:
		for _, w := range strings.Split(o.lookup, ",") {
			if w = strings.TrimSpace(w); w != "" {
				req.Lookup = append(req.Lookup, w)
			}
		}
	}

	rep, err := sess.Run(ctx, req)
	if err != nil {
		return err
	}
	a.print(rep)

	if o.csvPath != "" {
		if err := writeCSV(o.csvPath, rep); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Wrote %s\n", o.csvPath)
	}

	if o.save {
		src.Language = prof.Key
		if src.SourceType == "text" {
			src.Title = firstLine(rep.Doc.Text())
		}
		sourceID, err := db.CreateOrGetSource(a.conn, src)
		if err != nil {
			return fmt.Errorf("failed to persist source: %w", err)
		}
		ig := ingest.NewIngester(a.conn, upstream)
		ig.Logger = a.logger
		count, err := ig.Ingest(ctx, sourceID, rep.Doc)
		if err != nil {
			return fmt.Errorf("ingestion failed: %w", err)
		}
		fmt.Fprintf(a.out, "Saved source %d. Linked %d word occurrences.\n", sourceID, count)
	}
	return nil
}

func (a *app) print(rep *session.Report) {
	w := a.out
	fmt.Fprintf(w, "%s (%s, tokenizer %s)\n", rep.Profile.DisplayName, rep.Profile.PipelineID, rep.Tokenizer)
	fmt.Fprintln(w, "---------------------------------------------------")
	for _, line := range rep.Lines {
		fmt.Fprintln(w, line)
	}

	if len(rep.Entities) > 0 {
		fmt.Fprintln(w, "\nEntities:")
		for _, e := range rep.Entities {
			fmt.Fprintf(w, "  %s\t%s\n", e.Text, e.Label)
		}
	}
	if len(rep.Inflections.Rows) > 0 {
		fmt.Fprintln(w, "\nInflected forms:")
		fmt.Fprintf(w, "  %s\n", strings.Join(rep.Inflections.Header, "\t"))
		for _, row := range rep.Inflections.Rows {
			fmt.Fprintf(w, "  %s\n", strings.Join(row, "\t"))
		}
	}

	if len(rep.Patterns) > 0 {
		preds := make([]string, len(rep.Patterns))
		for i, p := range rep.Patterns {
			preds[i] = p.String()
		}
		fmt.Fprintf(w, "\nMatches for %s:\n", strings.Join(preds, " "))
		for _, line := range rep.MatchLines {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}

	if len(rep.Lookups) > 0 {
		fmt.Fprintln(w, "\nLookups:")
		for _, o := range rep.Lookups {
			if !o.OK() {
				fmt.Fprintf(w, "  %s: %s\n", o.Word, o.Message())
				continue
			}
			fmt.Fprintf(w, "  %s%s\n", o.Word, readings(o.Result))
			for i, d := range o.Result.Definitions {
				fmt.Fprintf(w, "    %d. %s\n", i+1, d.Text)
			}
		}
	}
}

func readings(r *dictionary.Result) string {
	if len(r.Readings) == 0 {
		return ""
	}
	parts := make([]string, len(r.Readings))
	for i, rd := range r.Readings {
		parts[i] = rd.Text
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

func writeCSV(path string, rep *session.Report) error {
	t := rep.Inflections
	if len(t.Rows) == 0 {
		t = rep.Tokens
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := extract.WriteCSV(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if r := []rune(s); len(r) > 60 {
		s = string(r[:60])
	}
	return s
}
