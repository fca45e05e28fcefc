package lesson

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadIndexFromDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "data", indexName),
		`[{"unitId":"unit1","unitName":"One","dataUrl":"./data/unit1.json"},{"unitId":"","dataUrl":"x"}]`)

	entries := NewLoader(LoaderOptions{}).LoadIndex(context.Background(), root)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 valid entry, got %d", len(entries))
	}
	if want := filepath.Join(root, "data", "unit1.json"); entries[0].DataURL != want {
		t.Errorf("Expected dataUrl %s, got %s", want, entries[0].DataURL)
	}
}

func TestLoadIndexFallback(t *testing.T) {
	root := t.TempDir()
	entries := NewLoader(LoaderOptions{}).LoadIndex(context.Background(), root)

	if len(entries) != 2 {
		t.Fatalf("Expected the built-in index, got %d entries", len(entries))
	}
	if entries[0].UnitID != "unit1" || entries[1].UnitID != "unit2" {
		t.Errorf("Unexpected built-in ids %s, %s", entries[0].UnitID, entries[1].UnitID)
	}
	if want := filepath.Join(root, "data", "unit2.json"); entries[1].DataURL != want {
		t.Errorf("Expected %s, got %s", want, entries[1].DataURL)
	}
}

func TestLoadOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/app/data/units-index.json":
			_, _ = w.Write([]byte(`[{"unitId":"unit1","unitName":"One","dataUrl":"unit1.json"}]`))
		case "/app/data/unit1.json":
			_, _ = w.Write([]byte(sampleUnit))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := NewLoader(LoaderOptions{Timeout: 5 * time.Second})
	entries := l.LoadIndex(context.Background(), srv.URL+"/app/data/units-index.json")
	if len(entries) != 1 || entries[0].DataURL != srv.URL+"/app/data/unit1.json" {
		t.Fatalf("Unexpected entries %+v", entries)
	}

	u, err := l.LoadEntry(context.Background(), entries[0])
	if err != nil {
		t.Fatalf("LoadEntry failed: %v", err)
	}
	if u.AudioBase != srv.URL+"/app/data/" {
		t.Errorf("Expected audio base next to the unit, got %s", u.AudioBase)
	}
	if got := u.ClipRef(ClipParagraph, 1); got != srv.URL+"/english-reading-multi/audio/unit1/paragraph_01.mp3" {
		t.Errorf("Unexpected clip ref %s", got)
	}

	if _, err := l.Load(context.Background(), srv.URL+"/app/data/unit9.json"); !errors.Is(err, ErrUnitNotFound) {
		t.Errorf("Expected ErrUnitNotFound, got %v", err)
	}
}

func TestLoadAudioBaseOverride(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "unit1.json")
	writeFile(t, path, sampleUnit)

	u, err := NewLoader(LoaderOptions{AudioBase: "https://cdn.example.com/"}).Load(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if got := u.ClipRef(ClipVocabulary, 2); got != "https://cdn.example.com/english-reading-multi/audio/unit1/word_02.mp3" {
		t.Errorf("Unexpected clip ref %s", got)
	}
	if u.Source != path {
		t.Errorf("Expected source %s, got %s", path, u.Source)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader(LoaderOptions{}).Load(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrUnitNotFound) {
		t.Errorf("Expected ErrUnitNotFound, got %v", err)
	}
}

func TestImport(t *testing.T) {
	root := t.TempDir()
	good := filepath.Join(root, "mine.json")
	writeFile(t, good, sampleUnit)
	bad := filepath.Join(root, "bad.json")
	writeFile(t, bad, `{"unitId":"x"}`)

	l := NewLoader(LoaderOptions{})
	l.now = func() time.Time { return time.UnixMilli(1700000000123) }
	lib := NewLibrary(BuiltinIndex())

	entry, u, err := l.Import(lib, good)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if entry.UnitID != "upload_1700000000123" || !entry.Uploaded() {
		t.Errorf("Unexpected upload id %s", entry.UnitID)
	}
	if u.UnitID != entry.UnitID {
		t.Errorf("Expected unit id to follow the entry, got %s", u.UnitID)
	}
	if lib.Len() != 3 {
		t.Errorf("Expected the library to grow to 3, got %d", lib.Len())
	}
	if _, ok := lib.Find(entry.UnitID); !ok {
		t.Error("Expected to find the imported entry")
	}

	reloaded, err := l.LoadEntry(context.Background(), entry)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.UnitID != entry.UnitID {
		t.Errorf("Expected uploaded id to survive reload, got %s", reloaded.UnitID)
	}

	_, _, err = l.Import(lib, bad)
	if !errors.Is(err, ErrInvalidUnit) {
		t.Errorf("Expected ErrInvalidUnit, got %v", err)
	}
	if !strings.Contains(err.Error(), "unitName") {
		t.Errorf("Expected missing fields in error, got %v", err)
	}
	if lib.Len() != 3 {
		t.Error("Expected a rejected import to leave the library alone")
	}
}

func TestLibraryAddReplaces(t *testing.T) {
	lib := NewLibrary(nil)
	lib.Add(IndexEntry{UnitID: "a", UnitName: "A"})
	lib.Add(IndexEntry{UnitID: "a", UnitName: "A2"})
	if lib.Len() != 1 {
		t.Fatalf("Expected 1 entry, got %d", lib.Len())
	}
	if e, _ := lib.Find("a"); e.UnitName != "A2" {
		t.Errorf("Expected replacement, got %s", e.UnitName)
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "data", "unit1.json"), sampleUnit)
	writeFile(t, filepath.Join(root, "data", indexName), `[]`)
	writeFile(t, filepath.Join(root, "package.json"), `{"name":"site"}`)

	entries, err := NewLoader(LoaderOptions{}).Discover(context.Background(), root)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(entries) != 1 || entries[0].UnitID != "unit1" {
		t.Errorf("Expected only unit1, got %+v", entries)
	}
}

func TestWatcher(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "unit1.json")
	writeFile(t, path, sampleUnit)

	w, err := NewWatcher(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close() //nolint:errcheck

	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "other.json"), "{}")
	writeFile(t, path, sampleUnit)

	select {
	case got := <-w.Changes():
		if got != path {
			t.Errorf("Expected change for %s, got %s", path, got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Timed out waiting for a change")
	}
}
