package registry

import (
	"strconv"
	"strings"
	"sync"
)

// Cache memoizes scan snapshots per root tuple and scan options. It is
// injectable so tests can isolate cache state; the CLI shares one instance
// per invocation. Snapshots are swapped whole, so concurrent readers always
// observe some complete scan.
type Cache struct {
	mu        sync.Mutex
	snapshots map[string]*Registry
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{snapshots: make(map[string]*Registry)}
}

func rootsKey(roots Roots) string {
	return strings.Join([]string{roots.CommandDir, roots.HookDir, roots.AgentDir}, "\x00")
}

// cacheKey identifies one (roots, options) combination. Options that change
// what a scan produces are part of the key, so a repeat call with different
// options is a miss, not a stale hit. ForceRefresh only bypasses lookup and
// is deliberately excluded.
func cacheKey(roots Roots, opts Options) string {
	parts := []string{
		rootsKey(roots),
		strconv.FormatBool(opts.IncludeDisabled),
	}
	parts = append(parts, opts.IgnoreGlobs...)
	return strings.Join(parts, "\x00")
}

// Invalidate drops every cached snapshot for the given roots, regardless of
// the options they were scanned with, forcing the next Scan to walk the
// filesystem.
func (c *Cache) Invalidate(roots Roots) {
	prefix := rootsKey(roots) + "\x00"
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.snapshots {
		if strings.HasPrefix(key, prefix) {
			delete(c.snapshots, key)
		}
	}
}

// Scanner performs component scans through a cache.
type Scanner struct {
	cache *Cache
}

// NewScanner returns a Scanner backed by the given cache. A nil cache
// disables memoization.
func NewScanner(cache *Cache) *Scanner {
	return &Scanner{cache: cache}
}

// Scan returns the Registry for the given roots. A repeat call with the
// same roots and options returns the prior snapshot (CacheValid true, same
// LastScan) unless ForceRefresh is set or the entry was invalidated.
func (s *Scanner) Scan(roots Roots, opts Options) (*Registry, error) {
	if s.cache == nil {
		return scan(roots, opts)
	}

	key := cacheKey(roots, opts)

	if !opts.ForceRefresh {
		s.cache.mu.Lock()
		snapshot := s.cache.snapshots[key]
		s.cache.mu.Unlock()
		if snapshot != nil {
			// Shallow copy so the stored snapshot itself is never mutated.
			hit := *snapshot
			hit.CacheValid = true
			return &hit, nil
		}
	}

	reg, err := scan(roots, opts)
	if err != nil {
		return nil, err
	}

	s.cache.mu.Lock()
	s.cache.snapshots[key] = reg
	s.cache.mu.Unlock()

	return reg, nil
}
