// Package source fetches web articles and extracts their readable text.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

// MaxBodySize limits how much HTML is read from a page.
const MaxBodySize = 10 * 1024 * 1024

// ErrTooLarge is returned for pages over MaxBodySize.
var ErrTooLarge = errors.New("response body exceeds size limit")

// Article is the readable content of a page.
type Article struct {
	URL      string
	Title    string
	Byline   string
	SiteName string
	Text     string
}

var (
	// (?s) allows dot to match newlines
	// (?i) makes it case-insensitive
	reRT = regexp.MustCompile(`(?si)<rt\b[^>]*>.*?</rt>`)
	reRP = regexp.MustCompile(`(?si)<rp\b[^>]*>.*?</rp>`)
)

// SanitizeRuby removes ruby text (<rt>) and ruby parentheses (<rp>) from
// HTML so that readability does not append furigana to the base text
// ("漢字" becoming "漢字かんじ"). It works on Shift_JIS bytes too, since the
// tag bytes are ASCII and '<' is never a trailing byte there.
func SanitizeRuby(content []byte) []byte {
	cleaned := reRT.ReplaceAll(content, nil)
	return reRP.ReplaceAll(cleaned, nil)
}

// browserHeaders are sent so that sites serving browsers only do not block us.
var browserHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language":           "zh-TW,zh;q=0.9,en-US;q=0.8,en;q=0.7,ja;q=0.6",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Upgrade-Insecure-Requests": "1",
}

// FetchArticle downloads rawURL and extracts its article. client may be nil.
func FetchArticle(ctx context.Context, client *http.Client, rawURL string) (*Article, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid url %q", rawURL)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}
	if resp.ContentLength > MaxBodySize {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, ErrTooLarge)
	}
	// Read one byte past the limit to tell "exactly at limit" from "truncated".
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: read body: %w", rawURL, err)
	}
	if len(body) > MaxBodySize {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, ErrTooLarge)
	}

	return Extract(SanitizeRuby(body), parsed)
}

// Extract runs readability over an HTML page.
func Extract(html []byte, pageURL *url.URL) (*Article, error) {
	article, err := readability.FromReader(bytes.NewReader(html), pageURL)
	if err != nil {
		return nil, fmt.Errorf("extract article: %w", err)
	}
	return &Article{
		URL:      pageURL.String(),
		Title:    strings.TrimSpace(article.Title),
		Byline:   strings.TrimSpace(article.Byline),
		SiteName: article.SiteName,
		Text:     strings.TrimSpace(article.TextContent),
	}, nil
}
