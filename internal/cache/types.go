package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity.
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCacheMiss is returned when an item is not found in cache.
	ErrCacheMiss = errors.New("cache miss")
)

// Level identifies a cache tier.
type Level int

const (
	// LevelMemory is the in-memory tier.
	LevelMemory Level = iota
	// LevelDisk is the persistent tier.
	LevelDisk
)

// String returns the string representation of the cache level.
func (l Level) String() string {
	switch l {
	case LevelMemory:
		return "L1-Memory"
	case LevelDisk:
		return "L2-Disk"
	default:
		return "Unknown"
	}
}

// Stats holds cache counters for one tier.
type Stats struct {
	Capacity  int64 // bytes
	Size      int64 // bytes
	ItemCount int64
	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64
}

// String renders stats for a status line, e.g. "3 items, 1.2 MB / 100 MB, 75% hits".
func (s Stats) String() string {
	return fmt.Sprintf("%d items, %s / %s, %.0f%% hits",
		s.ItemCount,
		humanize.Bytes(uint64(max(s.Size, 0))),
		humanize.Bytes(uint64(max(s.Capacity, 0))),
		s.HitRate*100,
	)
}

func (s *Stats) updateHitRate() {
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
}

// Config holds configuration for the cache manager.
type Config struct {
	MemoryCapacity   int64  // bytes
	DiskCapacity     int64  // bytes; zero disables the disk tier
	DiskPath         string // directory for cache files
	CompressionLevel int    // zstd level, 0 disables compression

	// Entries older than TTL are dropped by Prune. Zero keeps entries forever.
	TTL time.Duration
}

// DefaultConfig returns the default cache configuration. DiskPath is left
// empty and must be filled in by the caller.
func DefaultConfig() Config {
	return Config{
		MemoryCapacity:   64 * 1024 * 1024,
		DiskCapacity:     512 * 1024 * 1024,
		CompressionLevel: 3,
		TTL:              30 * 24 * time.Hour,
	}
}

// Cache is implemented by every tier.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
	Delete(key string) error
	Clear() error
	Contains(key string) bool
	Size() int64
	Stats() Stats
}

// Key derives a stable cache key from its parts.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}
