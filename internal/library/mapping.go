package library

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// SourceType distinguishes single videos from playlists in mapping.json.
type SourceType string

const (
	SourceVideo    SourceType = "video"
	SourcePlaylist SourceType = "playlist"
)

// SourceEntry describes one source folder.
type SourceEntry struct {
	Title string     `json:"title"`
	Type  SourceType `json:"type"`
}

// VideoEntry describes one video inside a source folder.
type VideoEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SourceMap is the decoded mapping.json. Keys keep the order in which they
// were first written so rewrites leave existing entries where they were.
type SourceMap struct {
	keys    []string
	entries map[string]SourceEntry
}

// NewSourceMap returns an empty mapping.
func NewSourceMap() *SourceMap {
	return &SourceMap{entries: map[string]SourceEntry{}}
}

// Len reports the number of folders.
func (m *SourceMap) Len() int { return len(m.keys) }

// Keys returns folder hashes in file order.
func (m *SourceMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Get returns the entry for a folder hash.
func (m *SourceMap) Get(hash string) (SourceEntry, bool) {
	entry, ok := m.entries[hash]
	return entry, ok
}

// Set adds or replaces the entry for a folder hash.
func (m *SourceMap) Set(hash string, entry SourceEntry) {
	if m.entries == nil {
		m.entries = map[string]SourceEntry{}
	}
	if _, ok := m.entries[hash]; !ok {
		m.keys = append(m.keys, hash)
	}
	m.entries[hash] = entry
}

// MarshalJSON writes entries in insertion order.
func (m *SourceMap) MarshalJSON() ([]byte, error) {
	return marshalOrdered(m.keys, func(key string) any { return m.entries[key] })
}

// UnmarshalJSON reads entries preserving file order.
func (m *SourceMap) UnmarshalJSON(data []byte) error {
	m.keys = nil
	m.entries = map[string]SourceEntry{}
	return unmarshalOrdered(data, func(key string, dec *json.Decoder) error {
		var entry SourceEntry
		if err := dec.Decode(&entry); err != nil {
			return err
		}
		m.Set(key, entry)
		return nil
	})
}

// VideoMap is the decoded video_mapping.json keyed by 1-based order.
type VideoMap map[int]VideoEntry

// Orders returns the mapped orders ascending.
func (m VideoMap) Orders() []int {
	orders := make([]int, 0, len(m))
	for order := range m {
		orders = append(orders, order)
	}
	sort.Ints(orders)
	return orders
}

// MarshalJSON writes string keys in numeric order.
func (m VideoMap) MarshalJSON() ([]byte, error) {
	orders := m.Orders()
	keys := make([]string, len(orders))
	for i, order := range orders {
		keys[i] = strconv.Itoa(order)
	}
	return marshalOrdered(keys, func(key string) any {
		order, _ := strconv.Atoi(key)
		return m[order]
	})
}

// UnmarshalJSON accepts string keys holding integers.
func (m *VideoMap) UnmarshalJSON(data []byte) error {
	out := VideoMap{}
	err := unmarshalOrdered(data, func(key string, dec *json.Decoder) error {
		order, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("video mapping key %q: not an order number", key)
		}
		var entry VideoEntry
		if err := dec.Decode(&entry); err != nil {
			return err
		}
		out[order] = entry
		return nil
	})
	if err != nil {
		return err
	}
	*m = out
	return nil
}

func marshalOrdered(keys []string, value func(string) any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodedKey, err := encodeNoEscape(key)
		if err != nil {
			return nil, err
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		encodedValue, err := encodeNoEscape(value(key))
		if err != nil {
			return nil, err
		}
		buf.Write(encodedValue)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func unmarshalOrdered(data []byte, each func(string, *json.Decoder) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("expected JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		if err := each(key, dec); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// encodeIndented renders v as two-space indented JSON with non-ASCII and
// HTML characters kept literal.
func encodeIndented(v any) ([]byte, error) {
	raw, err := encodeNoEscape(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
