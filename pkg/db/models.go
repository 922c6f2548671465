package db

import "time"

// Word is the canonical word entry.
type Word struct {
	ID            int64
	Word          string
	Lemma         string
	Language      string
	Pronunciation string
	POS           string
	// Definitions is the JSON encoded dictionary result, "" when not looked up.
	Definitions       string
	DefinitionsSource string
}

// Source is a provenance record for where a word was seen.
type Source struct {
	ID         int64
	SourceType string
	Title      string
	Author     string
	Website    string
	URL        string
	Language   string
	Meta       string
	AddedAt    time.Time
}

// WordSource links a Word with a Source and holds contextual metadata.
type WordSource struct {
	ID              int64
	WordID          int64
	SourceID        int64
	ContextSentence string
	OccurrenceCount int
	FirstSeenAt     time.Time
}
