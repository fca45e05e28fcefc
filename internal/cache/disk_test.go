package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDiskCache_RoundTripCompressed(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, 1<<20, 3)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}

	// Repetitive data compresses well.
	value := bytes.Repeat([]byte("lesson audio "), 500)
	if err := dc.Put("clip", value); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if dc.Size() >= int64(len(value)) {
		t.Errorf("Expected compressed size below %d, got %d", len(value), dc.Size())
	}

	got, ok := dc.Get("clip")
	if !ok {
		t.Fatal("Get failed: key not found")
	}
	if !bytes.Equal(got, value) {
		t.Error("Decompressed value does not match")
	}
}

func TestDiskCache_IndexSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, 1<<20, 0)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}
	if err := dc.Put("k", []byte("persisted")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := dc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewDiskCache(dir, 1<<20, 0)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	got, ok := reopened.Get("k")
	if !ok || string(got) != "persisted" {
		t.Errorf("Expected persisted value after reopen, got %q (ok=%v)", got, ok)
	}
}

func TestDiskCache_MissingFileIsMiss(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, 1<<20, 0)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}
	_ = dc.Put("k", []byte("v"))

	entries, _ := filepath.Glob(filepath.Join(dir, "*.cache"))
	for _, e := range entries {
		_ = os.Remove(e)
	}

	if _, ok := dc.Get("k"); ok {
		t.Error("Expected a miss when the backing file is gone")
	}
	if dc.Contains("k") {
		t.Error("Expected entry to be dropped from the index")
	}
}

func TestDiskCache_EvictsOldest(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 20, 0)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}

	_ = dc.Put("a", make([]byte, 10))
	time.Sleep(5 * time.Millisecond)
	_ = dc.Put("b", make([]byte, 10))
	time.Sleep(5 * time.Millisecond)
	_ = dc.Put("c", make([]byte, 10))

	if dc.Contains("a") {
		t.Error("Expected a to be evicted")
	}
	if !dc.Contains("b") || !dc.Contains("c") {
		t.Error("Expected b and c to remain")
	}
}

func TestDiskCache_RemoveOlderThan(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 1<<20, 0)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}
	_ = dc.Put("a", []byte("1"))

	if n := dc.RemoveOlderThan(time.Now().Add(time.Minute)); n != 1 {
		t.Errorf("Expected 1 removal, got %d", n)
	}
	if dc.Size() != 0 {
		t.Errorf("Expected empty cache, size %d", dc.Size())
	}
}
