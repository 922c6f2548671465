// Package profile holds the per-language configuration table: which pipeline
// to load and what sample text and pattern to offer.
package profile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported language keys.
const (
	Chinese  = "zh"
	English  = "en"
	Japanese = "ja"
)

// ErrInvalidSelection is matched by errors for unsupported language keys.
var ErrInvalidSelection = errors.New("invalid language selection")

// InvalidSelectionError reports the rejected key.
type InvalidSelectionError struct {
	Key string
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("%s: %q", ErrInvalidSelection, e.Key)
}

// Is lets errors.Is match ErrInvalidSelection.
func (e *InvalidSelectionError) Is(target error) bool {
	return target == ErrInvalidSelection
}

// LanguageProfile is read-only after the table is built.
type LanguageProfile struct {
	Key            string   `yaml:"key" json:"key"`
	DisplayName    string   `yaml:"display_name" json:"display_name"`
	PipelineID     string   `yaml:"pipeline" json:"pipeline"`
	DefaultText    string   `yaml:"default_text" json:"default_text"`
	DefaultPattern string   `yaml:"default_pattern" json:"default_pattern"`
	Tokenizers     []string `yaml:"tokenizers" json:"tokenizers"`
}

// SupportsTokenizer reports whether name is offered for this language.
// An empty name means the pipeline's native tokenizer.
func (p LanguageProfile) SupportsTokenizer(name string) bool {
	if name == "" {
		return true
	}
	for _, t := range p.Tokenizers {
		if t == name {
			return true
		}
	}
	return false
}

// Table is an immutable set of profiles in display order.
type Table struct {
	order  []string
	byKey  map[string]LanguageProfile
	byName map[string]string
}

// NewTable builds a table; every profile needs a unique key and a pipeline.
func NewTable(profiles []LanguageProfile) (*Table, error) {
	t := &Table{
		byKey:  make(map[string]LanguageProfile, len(profiles)),
		byName: make(map[string]string, len(profiles)),
	}
	for _, p := range profiles {
		if p.Key == "" {
			return nil, fmt.Errorf("profile %q has no key", p.DisplayName)
		}
		if strings.TrimSpace(p.PipelineID) == "" {
			return nil, fmt.Errorf("profile %q has no pipeline", p.Key)
		}
		if _, dup := t.byKey[p.Key]; dup {
			return nil, fmt.Errorf("duplicate profile %q", p.Key)
		}
		if len(p.Tokenizers) == 0 {
			p.Tokenizers = []string{"native"}
		}
		p.Tokenizers = append([]string(nil), p.Tokenizers...)
		t.order = append(t.order, p.Key)
		t.byKey[p.Key] = p
		if p.DisplayName != "" {
			t.byName[p.DisplayName] = p.Key
		}
	}
	return t, nil
}

// Resolve returns the profile for a language key or display name.
func (t *Table) Resolve(key string) (LanguageProfile, error) {
	k := strings.TrimSpace(key)
	if p, ok := t.byKey[k]; ok {
		return copyProfile(p), nil
	}
	if mapped, ok := t.byName[k]; ok {
		return copyProfile(t.byKey[mapped]), nil
	}
	return LanguageProfile{}, &InvalidSelectionError{Key: key}
}

// Keys lists the supported language keys in display order.
func (t *Table) Keys() []string {
	return append([]string(nil), t.order...)
}

// Profiles lists all profiles in display order.
func (t *Table) Profiles() []LanguageProfile {
	out := make([]LanguageProfile, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, copyProfile(t.byKey[k]))
	}
	return out
}

func copyProfile(p LanguageProfile) LanguageProfile {
	p.Tokenizers = append([]string(nil), p.Tokenizers...)
	return p
}

type tableFile struct {
	Languages []LanguageProfile `yaml:"languages"`
}

// LoadTable reads a YAML table of the form `languages: [ {key: ..., ...} ]`.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(f.Languages) == 0 {
		return nil, fmt.Errorf("%s: no languages defined", path)
	}
	return NewTable(f.Languages)
}
