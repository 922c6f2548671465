package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultMoeDictURL is the public moedict endpoint.
const DefaultMoeDictURL = "https://www.moedict.tw"

// SourceMoeDict names results from moedict.
const SourceMoeDict = "moedict"

const maxMoeDictBody = 2 << 20

// MoeDict looks Chinese words up in the moedict.tw JSON API.
type MoeDict struct {
	// BaseURL defaults to DefaultMoeDictURL.
	BaseURL string
	// Client defaults to an http.Client with a 10s timeout.
	Client *http.Client
	// Logger is used for failed requests. nil means no logging.
	Logger *slog.Logger
}

// NewMoeDict creates a client with the given request timeout.
func NewMoeDict(baseURL string, timeout time.Duration) *MoeDict {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MoeDict{BaseURL: baseURL, Client: &http.Client{Timeout: timeout}}
}

type moeEntry struct {
	Title       string              `json:"t"`
	Heteronyms  []moeHeteronym      `json:"h"`
	Translation map[string][]string `json:"translation"`
}

type moeHeteronym struct {
	Bopomofo    string   `json:"b"`
	Pinyin      string   `json:"p"`
	Definitions []moeDef `json:"d"`
}

type moeDef struct {
	Def     string   `json:"f"`
	Type    string   `json:"type"`
	Example []string `json:"e"`
	Quote   []string `json:"q"`
}

// stripMarkup removes moedict's link markers ("`燈~`光~" -> "燈光").
var stripMarkup = strings.NewReplacer("`", "", "~", "")

// Lookup implements Lookuper.
func (m *MoeDict) Lookup(ctx context.Context, word string) (*Result, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, ErrNotFound
	}
	base := m.BaseURL
	if base == "" {
		base = DefaultMoeDictURL
	}
	client := m.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	u := strings.TrimRight(base, "/") + "/a/" + url.PathEscape(word) + ".json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		m.logFailure(word, err)
		return nil, fmt.Errorf("lookup %q: %w", word, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := &StatusError{Word: word, Code: resp.StatusCode}
		m.logFailure(word, err)
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMoeDictBody))
	if err != nil {
		return nil, fmt.Errorf("lookup %q: read body: %w", word, err)
	}
	res, err := parseMoeDict(word, body)
	if err != nil {
		m.logFailure(word, err)
		return nil, err
	}
	return res, nil
}

func (m *MoeDict) logFailure(word string, err error) {
	if m.Logger != nil {
		m.Logger.Warn("moedict lookup failed", "word", word, "err", err)
	}
}

func parseMoeDict(word string, body []byte) (*Result, error) {
	var e moeEntry
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, fmt.Errorf("lookup %q: decode: %w", word, err)
	}
	if len(e.Heteronyms) == 0 {
		return nil, fmt.Errorf("lookup %q: %w", word, ErrNotFound)
	}
	res := &Result{
		Word:   word,
		Source: SourceMoeDict,
		Raw:    json.RawMessage(body),
	}
	if t := stripMarkup.Replace(e.Title); t != "" {
		res.Word = t
	}
	for _, h := range e.Heteronyms {
		if h.Pinyin != "" {
			res.Readings = append(res.Readings, Reading{Text: h.Pinyin, System: "pinyin"})
		}
		if h.Bopomofo != "" {
			res.Readings = append(res.Readings, Reading{Text: h.Bopomofo, System: "bopomofo"})
		}
		for _, d := range h.Definitions {
			def := Definition{Text: stripMarkup.Replace(d.Def)}
			if d.Type != "" {
				def.POS = []string{stripMarkup.Replace(d.Type)}
			}
			for _, ex := range d.Example {
				def.Examples = append(def.Examples, stripMarkup.Replace(ex))
			}
			for _, q := range d.Quote {
				def.Examples = append(def.Examples, stripMarkup.Replace(q))
			}
			res.Definitions = append(res.Definitions, def)
		}
	}
	for _, en := range e.Translation["English"] {
		res.Definitions = append(res.Definitions, Definition{Text: en, POS: []string{"English"}})
	}
	return res, nil
}
