package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauspost/compress/zstd"
)

// DiskCache stores entries as zstd-compressed files under one
// directory, named by cache key. Eviction is oldest-modification-time
// first. Not safe for concurrent use; Store serializes access.
type DiskCache struct {
	dir      string
	capacity int64
	size     int64
	index    map[string]diskEntry
	encoder  *zstd.Encoder
	decoder  *zstd.Decoder
	stats    Stats
}

type diskEntry struct {
	path  string
	size  int64
	mtime time.Time
}

const diskSuffix = ".zst"

// NewDiskCache opens (and scans) the cache directory, creating it if
// needed.
func NewDiskCache(dir string, capacity int64) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	c := &DiskCache{
		dir:      dir,
		capacity: capacity,
		index:    make(map[string]diskEntry),
		encoder:  encoder,
		decoder:  decoder,
	}
	if err := c.scan(); err != nil {
		return nil, err
	}
	return c, nil
}

// scan rebuilds the index from the files already on disk.
func (c *DiskCache) scan() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("scanning cache directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != diskSuffix {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		key := e.Name()[:len(e.Name())-len(diskSuffix)]
		c.index[key] = diskEntry{
			path:  filepath.Join(c.dir, e.Name()),
			size:  info.Size(),
			mtime: info.ModTime(),
		}
		c.size += info.Size()
	}
	return nil
}

func (c *DiskCache) Get(key string) ([]byte, bool) {
	entry, ok := c.index[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	compressed, err := os.ReadFile(entry.path)
	if err != nil {
		// The file went away under us; drop the stale index entry.
		delete(c.index, key)
		c.size -= entry.size
		c.stats.Misses++
		return nil, false
	}
	value, err := c.decoder.DecodeAll(compressed, nil)
	if err != nil {
		_ = os.Remove(entry.path)
		delete(c.index, key)
		c.size -= entry.size
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	return value, true
}

func (c *DiskCache) Put(key string, value []byte) error {
	compressed := c.encoder.EncodeAll(value, nil)
	if int64(len(compressed)) > c.capacity {
		return ErrItemTooLarge
	}
	if old, ok := c.index[key]; ok {
		c.size -= old.size
	}
	for c.size+int64(len(compressed)) > c.capacity {
		if !c.evictOldest() {
			break
		}
	}
	path := filepath.Join(c.dir, key+diskSuffix)
	if err := os.WriteFile(path, compressed, 0o644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	c.index[key] = diskEntry{path: path, size: int64(len(compressed)), mtime: time.Now()}
	c.size += int64(len(compressed))
	return nil
}

// evictOldest removes the least recently written entry. It reports
// whether anything was removed.
func (c *DiskCache) evictOldest() bool {
	if len(c.index) == 0 {
		return false
	}
	keys := make([]string, 0, len(c.index))
	for k := range c.index {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return c.index[keys[i]].mtime.Before(c.index[keys[j]].mtime)
	})
	oldest := keys[0]
	entry := c.index[oldest]
	_ = os.Remove(entry.path)
	delete(c.index, oldest)
	c.size -= entry.size
	c.stats.Evictions++
	return true
}

func (c *DiskCache) Clear() error {
	for key, entry := range c.index {
		if err := os.Remove(entry.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("clearing cache: %w", err)
		}
		delete(c.index, key)
	}
	c.size = 0
	return nil
}

func (c *DiskCache) Stats() Stats {
	s := c.stats
	s.Size = c.size
	s.Items = len(c.index)
	return s
}
