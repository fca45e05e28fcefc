package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Manager layers the memory tier over the disk tier. Disk hits are promoted
// to memory.
type Manager struct {
	memory *MemoryCache
	disk   *DiskCache // nil when disabled
	config Config
	logger *log.Logger

	mu    sync.Mutex
	stats ManagerStats
}

// ManagerStats aggregates both tiers.
type ManagerStats struct {
	Hits       int64
	Misses     int64
	MemoryHits int64
	DiskHits   int64
	Promotions int64

	Memory Stats
	Disk   Stats
}

// NewManager creates a cache manager. The disk tier is only created when
// both DiskPath and DiskCapacity are set.
func NewManager(config Config, logger *log.Logger) (*Manager, error) {
	if logger == nil {
		logger = log.Default()
	}

	m := &Manager{
		memory: NewMemoryCache(config.MemoryCapacity),
		config: config,
		logger: logger,
	}

	if config.DiskPath != "" && config.DiskCapacity > 0 {
		disk, err := NewDiskCache(config.DiskPath, config.DiskCapacity, config.CompressionLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to create disk cache: %w", err)
		}
		m.disk = disk
	}

	return m, nil
}

// Get looks in memory first, then on disk.
func (m *Manager) Get(key string) ([]byte, bool) {
	if data, ok := m.memory.Get(key); ok {
		m.count(func(s *ManagerStats) { s.Hits++; s.MemoryHits++ })
		return data, true
	}

	if m.disk != nil {
		if data, ok := m.disk.Get(key); ok {
			m.count(func(s *ManagerStats) { s.Hits++; s.DiskHits++; s.Promotions++ })
			_ = m.memory.Put(key, data)
			return data, true
		}
	}

	m.count(func(s *ManagerStats) { s.Misses++ })
	return nil, false
}

// Put stores a value in both tiers. An item too large for memory still goes
// to disk.
func (m *Manager) Put(key string, value []byte) error {
	memErr := m.memory.Put(key, value)
	if memErr != nil && !errors.Is(memErr, ErrItemTooLarge) {
		return fmt.Errorf("memory cache: %w", memErr)
	}

	if m.disk == nil {
		return memErr
	}
	if err := m.disk.Put(key, value); err != nil {
		if errors.Is(err, ErrItemTooLarge) && memErr == nil {
			return nil
		}
		return fmt.Errorf("disk cache: %w", err)
	}
	return nil
}

// Contains reports whether any tier holds key.
func (m *Manager) Contains(key string) bool {
	if m.memory.Contains(key) {
		return true
	}
	return m.disk != nil && m.disk.Contains(key)
}

// Delete removes key from both tiers.
func (m *Manager) Delete(key string) error {
	_ = m.memory.Delete(key)
	if m.disk != nil {
		return m.disk.Delete(key)
	}
	return nil
}

// Clear empties both tiers.
func (m *Manager) Clear() error {
	_ = m.memory.Clear()
	if m.disk != nil {
		return m.disk.Clear()
	}
	return nil
}

// Size returns the combined byte count of both tiers.
func (m *Manager) Size() int64 {
	n := m.memory.Size()
	if m.disk != nil {
		n += m.disk.Size()
	}
	return n
}

// Prune drops entries older than the configured TTL.
func (m *Manager) Prune() int {
	if m.config.TTL <= 0 {
		return 0
	}
	n := m.memory.Prune(m.config.TTL)
	if m.disk != nil {
		n += m.disk.RemoveOlderThan(time.Now().Add(-m.config.TTL))
	}
	if n > 0 {
		m.logger.Debug("pruned cache", "entries", n, "ttl", m.config.TTL)
	}
	return n
}

// Stats returns aggregated statistics.
func (m *Manager) Stats() ManagerStats {
	m.mu.Lock()
	s := m.stats
	m.mu.Unlock()

	s.Memory = m.memory.Stats()
	if m.disk != nil {
		s.Disk = m.disk.Stats()
	}
	return s
}

// Close persists the disk index.
func (m *Manager) Close() error {
	if m.disk == nil {
		return nil
	}
	if err := m.disk.Close(); err != nil {
		return fmt.Errorf("failed to close disk cache: %w", err)
	}
	return nil
}

func (m *Manager) count(fn func(*ManagerStats)) {
	m.mu.Lock()
	fn(&m.stats)
	m.mu.Unlock()
}
