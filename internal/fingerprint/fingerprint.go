// Package fingerprint drops chunks whose resampled payload exactly repeats
// a recent one, avoiding wasted encoder calls on overlapping silence windows.
package fingerprint

import "github.com/msto63/streamvox/internal/model"

const cacheSize = 10

// Cache holds the last N chunk fingerprints in insertion order.
type Cache struct {
	entries [cacheSize][16]byte
	count   int
	next    int
}

// NewCache returns an empty fingerprint cache.
func NewCache() *Cache {
	return &Cache{}
}

// Admit reports whether chunk is novel and, if so, records its fingerprint.
// A cache hit means the resampled byte sequence exactly matches a recent
// chunk; the caller should drop it rather than spend an encoder call on it.
func (c *Cache) Admit(chunk model.AudioChunk) bool {
	for i := 0; i < c.count; i++ {
		if c.entries[i] == chunk.Fingerprint {
			return false
		}
	}
	c.entries[c.next] = chunk.Fingerprint
	c.next = (c.next + 1) % cacheSize
	if c.count < cacheSize {
		c.count++
	}
	return true
}
