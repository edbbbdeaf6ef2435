package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Deduplicator tracks seen keys (normalized URLs, article titles) behind a
// compact hash. First-seen wins; later duplicates are reported as seen.
type Deduplicator struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewDeduplicator creates a Deduplicator with the given estimated capacity.
func NewDeduplicator(estimatedCapacity int) *Deduplicator {
	return &Deduplicator{
		seen: make(map[string]struct{}, estimatedCapacity),
	}
}

// Seen reports whether the key has been marked before.
func (d *Deduplicator) Seen(key string) bool {
	h := hashKey(key)
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.seen[h]
	return ok
}

// Mark records the key. It returns true if the key was new.
func (d *Deduplicator) Mark(key string) bool {
	h := hashKey(key)
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[h]; ok {
		return false
	}
	d.seen[h] = struct{}{}
	return true
}

// Count returns the number of unique keys marked.
func (d *Deduplicator) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.seen)
}

// hashKey creates a compact 128-bit hash of a key.
func hashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:16])
}
