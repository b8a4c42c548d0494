package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	dirName  = ".rustlator"
	fileName = "config.json"

	// DefaultFrom is the source language used when the document has no "from" key.
	DefaultFrom = "en"
	// DefaultTo is the target language used when the document has no "to" key.
	DefaultTo = "fi"
)

const (
	keyAPIURL = "api_url"
	keyFrom   = "from"
	keyTo     = "to"
)

var (
	// ErrUnreadable is returned when the config file cannot be located, read or parsed.
	ErrUnreadable = errors.New("config unreadable")
	// ErrWrite is returned when the config file cannot be written back.
	ErrWrite = errors.New("config write failed")
)

// Document is the persisted key-value settings file. Keys other than
// api_url, from and to are kept verbatim so a save never drops them.
type Document struct {
	values map[string]json.RawMessage
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{values: map[string]json.RawMessage{}}
}

// Parse decodes a JSON object into a Document.
func Parse(data []byte) (*Document, error) {
	values := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	if values == nil {
		return nil, errors.New("config document is not a JSON object")
	}
	return &Document{values: values}, nil
}

// Marshal encodes the whole document as indented JSON.
func (d *Document) Marshal() ([]byte, error) {
	values := d.values
	if values == nil {
		values = map[string]json.RawMessage{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// APIURL returns the stored API base URL.
func (d *Document) APIURL() (string, bool) { return d.str(keyAPIURL) }

// From returns the stored source language.
func (d *Document) From() (string, bool) { return d.str(keyFrom) }

// To returns the stored target language.
func (d *Document) To() (string, bool) { return d.str(keyTo) }

// SetAPIURL stores the API base URL.
func (d *Document) SetAPIURL(v string) { d.setStr(keyAPIURL, v) }

// SetFrom stores the source language.
func (d *Document) SetFrom(v string) { d.setStr(keyFrom, v) }

// SetTo stores the target language.
func (d *Document) SetTo(v string) { d.setStr(keyTo, v) }

// ResolvedFrom returns the stored source language or DefaultFrom.
func (d *Document) ResolvedFrom() string {
	if v, ok := d.From(); ok {
		return v
	}
	return DefaultFrom
}

// ResolvedTo returns the stored target language or DefaultTo.
func (d *Document) ResolvedTo() string {
	if v, ok := d.To(); ok {
		return v
	}
	return DefaultTo
}

// Keys lists every key in the document, sorted.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.values))
	for k := range d.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// str reports a key as present only when it holds a JSON string.
func (d *Document) str(key string) (string, bool) {
	raw, ok := d.values[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func (d *Document) setStr(key, value string) {
	if d.values == nil {
		d.values = map[string]json.RawMessage{}
	}
	raw, _ := json.Marshal(value)
	d.values[key] = raw
}

// Store reads and writes the Document at a fixed location.
type Store struct {
	dir string
}

// Open returns a Store rooted at dir. An empty dir resolves to
// ~/.rustlator when the store is first used.
func Open(dir string) *Store {
	return &Store{dir: strings.TrimSpace(dir)}
}

// Path returns the config file location.
func (s *Store) Path() (string, error) {
	dir, err := s.resolveDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads the document from disk. A missing file is an error.
func (s *Store) Load() (*Document, error) {
	path, err := s.Path()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrUnreadable, path, err)
	}
	return doc, nil
}

// Save persists the full document, replacing the file atomically.
func (s *Store) Save(doc *Document) error {
	path, err := s.Path()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	data, err := doc.Marshal()
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrWrite, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: create config directory: %w", ErrWrite, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("%w: create temp config: %w", ErrWrite, err)
	}
	defer func() {
		_ = os.Remove(tmpFile.Name())
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("%w: write temp config: %w", ErrWrite, err)
	}

	// Sync to ensure data is written to disk before rename
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("%w: sync temp config: %w", ErrWrite, err)
	}

	if err := tmpFile.Chmod(0o600); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("%w: chmod temp config: %w", ErrWrite, err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("%w: close temp config: %w", ErrWrite, err)
	}

	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	return nil
}

func (s *Store) resolveDir() (string, error) {
	if s.dir != "" {
		return s.dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, dirName), nil
}
