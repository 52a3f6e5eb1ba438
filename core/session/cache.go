// Package session holds the in-process working state for one analyzed
// repository: lazily loaded artifacts, a bounded cache of file statistics,
// and optional file watching that invalidates stale entries.
package session

import (
	"bytes"
	"errors"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the file-stat cache.
const DefaultCacheSize = 4096

// ErrInvalidCacheSize indicates a non-positive cache capacity.
var ErrInvalidCacheSize = errors.New("cache size must be positive")

// FileStat is one cached file measurement.
type FileStat struct {
	// Size is the file size in bytes at measurement time.
	Size int64

	// ModTime is the file modification time at measurement time.
	ModTime time.Time

	// LineCount is the number of lines in the file.
	LineCount int
}

// Cache is a bounded LRU of per-file statistics. Entries self-validate on
// read: a cached entry whose size or mtime no longer matches the file on
// disk is recomputed, so stale hits are impossible even without a watcher.
type Cache struct {
	entries *lru.Cache[string, FileStat]
}

// NewCache creates a cache holding at most capacity entries.
func NewCache(capacity int) (*Cache, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCacheSize
	}
	entries, err := lru.New[string, FileStat](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries}, nil
}

// Stat returns the file's statistics, reusing the cached line count when the
// file is unchanged since it was measured.
func (c *Cache) Stat(path string) (FileStat, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileStat{}, err
	}

	if cached, ok := c.entries.Get(path); ok {
		if cached.Size == info.Size() && cached.ModTime.Equal(info.ModTime()) {
			return cached, nil
		}
	}

	lineCount, err := countFileLines(path)
	if err != nil {
		return FileStat{}, err
	}

	stat := FileStat{
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		LineCount: lineCount,
	}
	c.entries.Add(path, stat)
	return stat, nil
}

// Invalidate drops the cached entry for path.
func (c *Cache) Invalidate(path string) {
	c.entries.Remove(path)
}

// Purge drops every cached entry.
func (c *Cache) Purge() {
	c.entries.Purge()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// countFileLines counts newline-terminated lines plus a trailing partial
// line. An empty file has zero lines.
func countFileLines(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, nil
	}
	count := bytes.Count(data, []byte{'\n'})
	if data[len(data)-1] != '\n' {
		count++
	}
	return count, nil
}
