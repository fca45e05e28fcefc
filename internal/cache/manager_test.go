package cache

import (
	"strings"
	"testing"
)

func newTestManager(t *testing.T, memCap, diskCap int64) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		MemoryCapacity:   memCap,
		DiskCapacity:     diskCap,
		DiskPath:         t.TempDir(),
		CompressionLevel: 3,
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create cache manager: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestManager_BasicOperations(t *testing.T) {
	m := newTestManager(t, 1024, 10240)

	if err := m.Put("k", []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, ok := m.Get("k")
	if !ok || string(got) != "v" {
		t.Fatalf("Expected v, got %q (ok=%v)", got, ok)
	}

	if err := m.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := m.Get("k"); ok {
		t.Error("Key still exists after delete")
	}
}

func TestManager_DiskHitPromotesToMemory(t *testing.T) {
	m := newTestManager(t, 1024, 10240)
	_ = m.Put("k", []byte("value"))

	// Drop the memory copy so the next read must come from disk.
	_ = m.memory.Delete("k")

	if _, ok := m.Get("k"); !ok {
		t.Fatal("Expected disk hit")
	}
	if !m.memory.Contains("k") {
		t.Error("Expected disk hit to be promoted to memory")
	}

	stats := m.Stats()
	if stats.DiskHits != 1 || stats.Promotions != 1 {
		t.Errorf("Expected 1 disk hit and 1 promotion, got %d/%d", stats.DiskHits, stats.Promotions)
	}
}

func TestManager_LargeItemGoesToDiskOnly(t *testing.T) {
	m := newTestManager(t, 4, 10240)

	if err := m.Put("big", []byte("larger than memory")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if m.memory.Contains("big") {
		t.Error("Expected item to skip the memory tier")
	}
	if !m.Contains("big") {
		t.Error("Expected item on disk")
	}
}

func TestManager_MemoryOnly(t *testing.T) {
	m, err := NewManager(Config{MemoryCapacity: 64}, nil)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	if err := m.Put("k", []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if !m.Contains("k") {
		t.Error("Expected key in memory-only manager")
	}
	if err := m.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestKeyIsStable(t *testing.T) {
	if Key("a", "b") != Key("a", "b") {
		t.Error("Expected identical keys for identical parts")
	}
	if Key("ab", "") == Key("a", "b") {
		t.Error("Expected part boundaries to affect the key")
	}
}

func TestStatsString(t *testing.T) {
	s := Stats{ItemCount: 2, Size: 2048, Capacity: 1 << 20, HitRate: 0.5}
	out := s.String()
	if !strings.Contains(out, "2 items") || !strings.Contains(out, "50% hits") {
		t.Errorf("Unexpected stats string %q", out)
	}
}
