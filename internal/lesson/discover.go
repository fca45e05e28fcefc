package lesson

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/muesli/gitcha"
)

// Discover finds unit files below dir and returns an entry for each file
// that parses as a unit. Files ignored by git are skipped, as is the index.
func (l *Loader) Discover(ctx context.Context, dir string) ([]IndexEntry, error) {
	dir = l.expand(dir)
	ch, err := gitcha.FindFilesExcept(dir, []string{"*.json"}, []string{"node_modules", ".git"})
	if err != nil {
		return nil, err
	}

	var entries []IndexEntry
	for res := range ch {
		if ctx.Err() != nil {
			continue // drain so gitcha's walker can finish
		}
		if filepath.Base(res.Path) == indexName {
			continue
		}
		data, err := l.readFile(res.Path)
		if err != nil {
			l.logger.Debug("skipping unreadable file", "path", res.Path, "err", err)
			continue
		}
		u, err := Parse(data)
		if err != nil {
			l.logger.Debug("skipping non-unit json", "path", res.Path, "err", err)
			continue
		}
		entries = append(entries, IndexEntry{UnitID: u.UnitID, UnitName: u.UnitName, DataURL: res.Path})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].UnitID < entries[j].UnitID })
	l.logger.Debug("discovered units", "dir", dir, "count", len(entries))
	return entries, nil
}
