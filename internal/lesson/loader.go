package lesson

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
)

const (
	indexName    = "units-index.json"
	uploadPrefix = "upload_"

	// Unit files are small; anything bigger is not a unit.
	maxUnitSize = 8 << 20
)

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	// AudioBase overrides where clip URLs resolve. Defaults to the directory
	// of each unit's source.
	AudioBase string
	Timeout   time.Duration
	Client    *http.Client
	Logger    *log.Logger
}

// Loader reads units and unit indexes from files or http(s) URLs.
type Loader struct {
	client    *http.Client
	audioBase string
	logger    *log.Logger
	now       func() time.Time
}

// NewLoader creates a loader.
func NewLoader(opts LoaderOptions) *Loader {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	base := opts.AudioBase
	if base != "" && !IsURL(base) {
		if expanded, err := homedir.Expand(base); err == nil {
			base = expanded
		}
	}
	return &Loader{client: client, audioBase: base, logger: logger, now: time.Now}
}

// LoadIndex reads a units index. A directory ref looks for units-index.json
// in it and in its data/ subdirectory; dataUrls resolve against that
// directory, as a page at its root would. When nothing can be read the built-in
// index is returned and a warning logged.
func (l *Loader) LoadIndex(ctx context.Context, ref string) []IndexEntry {
	candidates := []string{ref}
	base := Dir(ref)
	if !IsURL(ref) {
		ref = l.expand(ref)
		base = Dir(ref)
		if st, err := os.Stat(ref); err == nil && st.IsDir() {
			base = ref
			candidates = []string{
				filepath.Join(ref, indexName),
				filepath.Join(ref, "data", indexName),
			}
		} else {
			candidates = []string{ref}
		}
	}

	var lastErr error
	for _, c := range candidates {
		data, err := l.read(ctx, c)
		if err != nil {
			lastErr = err
			continue
		}
		entries, err := ParseIndex(data, base)
		if err != nil {
			lastErr = err
			continue
		}
		l.logger.Debug("loaded units index", "path", c, "units", len(entries))
		return entries
	}

	l.logger.Warn("units index unavailable, using built-in list", "ref", ref, "err", lastErr)
	return resolveEntries(BuiltinIndex(), base)
}

// Load reads and validates a unit.
func (l *Loader) Load(ctx context.Context, ref string) (*Unit, error) {
	if !IsURL(ref) {
		ref = l.expand(ref)
	}
	data, err := l.read(ctx, ref)
	if err != nil {
		return nil, err
	}
	u, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref, err)
	}
	l.place(u, ref)
	return u, nil
}

// LoadEntry loads the unit an index entry points at. The entry id wins over
// a missing id in the data.
func (l *Loader) LoadEntry(ctx context.Context, e IndexEntry) (*Unit, error) {
	u, err := l.Load(ctx, e.DataURL)
	if err != nil {
		return nil, err
	}
	if e.Uploaded() {
		u.UnitID = e.UnitID
	}
	return u, nil
}

// Import validates a local unit file and registers it in lib under a fresh
// upload_<unix-ms> id.
func (l *Loader) Import(lib *Library, path string) (IndexEntry, *Unit, error) {
	path = l.expand(path)
	data, err := l.readFile(path)
	if err != nil {
		return IndexEntry{}, nil, err
	}
	u, err := Parse(data)
	if err != nil {
		return IndexEntry{}, nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	entry := IndexEntry{
		UnitID:   uploadPrefix + strconv.FormatInt(l.now().UnixMilli(), 10),
		UnitName: u.UnitName,
		DataURL:  abs,
	}
	u.UnitID = entry.UnitID
	l.place(u, abs)
	lib.Add(entry)

	l.logger.Info("imported unit", "id", entry.UnitID, "name", entry.UnitName, "path", abs)
	return entry, u, nil
}

func (l *Loader) place(u *Unit, source string) {
	u.Source = source
	u.AudioBase = l.audioBase
	if u.AudioBase == "" {
		u.AudioBase = Dir(source)
	}
}

func (l *Loader) read(ctx context.Context, ref string) ([]byte, error) {
	if IsURL(ref) {
		return l.fetch(ctx, ref)
	}
	return l.readFile(ref)
}

func (l *Loader) fetch(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to get url: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", ref, ErrUnitNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxUnitSize))
}

func (l *Loader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrUnitNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open file: %w", err)
	}
	defer f.Close() //nolint:errcheck
	return io.ReadAll(io.LimitReader(f, maxUnitSize))
}

func (l *Loader) expand(path string) string {
	if p, err := homedir.Expand(path); err == nil {
		return p
	}
	return path
}
