package lesson

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// IndexEntry is one row of units-index.json.
type IndexEntry struct {
	UnitID   string `json:"unitId"`
	UnitName string `json:"unitName"`
	DataURL  string `json:"dataUrl"`
}

// Uploaded reports whether the entry was added by Import.
func (e IndexEntry) Uploaded() bool {
	return strings.HasPrefix(e.UnitID, uploadPrefix)
}

// FilterValue lets entries be fuzzy-matched by name and id.
func (e IndexEntry) FilterValue() string {
	return e.UnitName + " " + e.UnitID
}

// BuiltinIndex is used when units-index.json cannot be read.
func BuiltinIndex() []IndexEntry {
	return []IndexEntry{
		{UnitID: "unit1", UnitName: "Unit 1 – A Severe Fire in Hong Kong", DataURL: "./data/unit1.json"},
		{UnitID: "unit2", UnitName: "Unit 2 – The Rise of Blindbox", DataURL: "./data/unit2.json"},
	}
}

// ParseIndex decodes units-index.json and resolves each dataUrl against base.
func ParseIndex(data []byte, base string) ([]IndexEntry, error) {
	var entries []IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid units index: %w", err)
	}
	return resolveEntries(entries, base), nil
}

func resolveEntries(entries []IndexEntry, base string) []IndexEntry {
	out := make([]IndexEntry, 0, len(entries))
	for _, e := range entries {
		if e.UnitID == "" || e.DataURL == "" {
			continue
		}
		e.DataURL = ResolveRef(base, e.DataURL)
		out = append(out, e)
	}
	return out
}

// Library is the list of units the reader can open. It is safe for
// concurrent use.
type Library struct {
	mu      sync.RWMutex
	entries []IndexEntry
}

// NewLibrary creates a library from index entries.
func NewLibrary(entries []IndexEntry) *Library {
	return &Library{entries: append([]IndexEntry(nil), entries...)}
}

// Entries returns a copy of the library entries in order.
func (l *Library) Entries() []IndexEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]IndexEntry(nil), l.entries...)
}

// Find looks an entry up by unit id.
func (l *Library) Find(unitID string) (IndexEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, e := range l.entries {
		if e.UnitID == unitID {
			return e, true
		}
	}
	return IndexEntry{}, false
}

// Add appends an entry, replacing one with the same id.
func (l *Library) Add(e IndexEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.entries {
		if l.entries[i].UnitID == e.UnitID {
			l.entries[i] = e
			return
		}
	}
	l.entries = append(l.entries, e)
}

// Len returns the number of entries.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
