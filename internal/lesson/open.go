package lesson

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
)

// Opened is what a reference given on the command line resolves to.
type Opened struct {
	Entries []IndexEntry

	// Unit is set when the reference named a single unit file, with Entry
	// its row in Entries.
	Unit  *Unit
	Entry IndexEntry
}

// Open resolves ref, which may be a directory, a units index, a unit file or
// an http(s) URL to either. An empty ref is the working directory.
//
// A directory with an index lists the index followed by any unit files found
// below it that the index does not mention. Without an index the discovered
// files are listed, and only when there are none is the built-in list used.
func (l *Loader) Open(ctx context.Context, ref string) (Opened, error) {
	if ref == "" {
		ref = "."
	}
	if IsURL(ref) {
		if isUnitRef(ref) {
			return l.openUnit(ctx, ref)
		}
		return Opened{Entries: l.LoadIndex(ctx, ref)}, nil
	}

	p := l.expand(ref)
	st, err := os.Stat(p)
	if err != nil {
		return Opened{}, err
	}
	if !st.IsDir() {
		if filepath.Base(p) == indexName {
			return Opened{Entries: l.LoadIndex(ctx, p)}, nil
		}
		return l.openUnit(ctx, p)
	}

	dir, err := filepath.Abs(p)
	if err != nil {
		return Opened{}, err
	}
	found, err := l.Discover(ctx, dir)
	if err != nil {
		if ctx.Err() != nil {
			return Opened{}, err
		}
		l.logger.Warn("unit discovery failed", "dir", dir, "err", err)
	}
	if !hasIndex(dir) && len(found) > 0 {
		return Opened{Entries: found}, nil
	}
	return Opened{Entries: mergeEntries(l.LoadIndex(ctx, dir), found)}, nil
}

func (l *Loader) openUnit(ctx context.Context, ref string) (Opened, error) {
	u, err := l.Load(ctx, ref)
	if err != nil {
		return Opened{}, err
	}
	source := u.Source
	if !IsURL(source) {
		if abs, err := filepath.Abs(source); err == nil {
			source = abs
		}
	}
	e := IndexEntry{UnitID: u.UnitID, UnitName: u.UnitName, DataURL: source}
	return Opened{Entries: []IndexEntry{e}, Unit: u, Entry: e}, nil
}

// isUnitRef reports whether a URL points at a JSON file other than the index.
func isUnitRef(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return path.Ext(u.Path) == ".json" && path.Base(u.Path) != indexName
}

func hasIndex(dir string) bool {
	for _, p := range []string{
		filepath.Join(dir, indexName),
		filepath.Join(dir, "data", indexName),
	} {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}

// mergeEntries appends entries from extra whose ids are not in base.
func mergeEntries(base, extra []IndexEntry) []IndexEntry {
	seen := make(map[string]bool, len(base))
	for _, e := range base {
		seen[e.UnitID] = true
	}
	out := append([]IndexEntry(nil), base...)
	for _, e := range extra {
		if !seen[e.UnitID] {
			seen[e.UnitID] = true
			out = append(out, e)
		}
	}
	return out
}
