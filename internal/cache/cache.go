// Package cache stores synthesized audio so repeated reads of the
// same text skip the synthesis step. It layers a small in-memory LRU
// over a zstd-compressed on-disk store.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
)

// ErrItemTooLarge is returned when a value exceeds the cache capacity.
var ErrItemTooLarge = errors.New("item too large for cache")

// Key derives a stable cache key from everything that affects the
// synthesized audio.
func Key(engine, voice, text string, rate, pitch float64) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%.3f\x00%.3f", engine, voice, text, rate, pitch)
	return hex.EncodeToString(h.Sum(nil))
}

// Stats reports hit counters for one cache tier.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int64
	Items     int
}

// Store is a two-tier audio cache. The memory tier absorbs repeated
// lookups within a session, the disk tier survives restarts. Either
// tier may be absent.
type Store struct {
	mu   sync.Mutex
	mem  *MemoryCache
	disk *DiskCache
}

// Options configures a Store. Zero values disable the matching tier.
type Options struct {
	MemoryCapacity int64
	DiskPath       string
	DiskCapacity   int64
}

// NewStore builds a cache from opts. A Store with both tiers disabled
// is valid and simply never hits.
func NewStore(opts Options) (*Store, error) {
	s := &Store{}
	if opts.MemoryCapacity > 0 {
		s.mem = NewMemoryCache(opts.MemoryCapacity)
	}
	if opts.DiskPath != "" && opts.DiskCapacity > 0 {
		disk, err := NewDiskCache(opts.DiskPath, opts.DiskCapacity)
		if err != nil {
			return nil, fmt.Errorf("opening disk cache: %w", err)
		}
		s.disk = disk
	}
	return s, nil
}

// Get looks up key, first in memory, then on disk. A disk hit is
// promoted into the memory tier.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mem != nil {
		if v, ok := s.mem.Get(key); ok {
			return v, true
		}
	}
	if s.disk != nil {
		if v, ok := s.disk.Get(key); ok {
			if s.mem != nil {
				_ = s.mem.Put(key, v)
			}
			return v, true
		}
	}
	return nil, false
}

// Put stores value in both tiers. Tier failures are not fatal; a cache
// that cannot store simply stays cold.
func (s *Store) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	if s.mem != nil {
		if err := s.mem.Put(key, value); err != nil {
			firstErr = err
		}
	}
	if s.disk != nil {
		if err := s.disk.Put(key, value); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Clear empties both tiers.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mem != nil {
		s.mem.Clear()
	}
	if s.disk != nil {
		return s.disk.Clear()
	}
	return nil
}

// MemoryStats returns counters for the memory tier, zero if disabled.
func (s *Store) MemoryStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mem == nil {
		return Stats{}
	}
	return s.mem.Stats()
}

// DiskStats returns counters for the disk tier, zero if disabled.
func (s *Store) DiskStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disk == nil {
		return Stats{}
	}
	return s.disk.Stats()
}
