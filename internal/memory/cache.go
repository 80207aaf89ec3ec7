package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// DefaultMaxEntries caps the in-memory cache size. The least recently
// used entry is evicted when the cap is exceeded. Zero disables eviction.
const DefaultMaxEntries = 50000

// Entry is one remembered translation. Only LastUsed and UseCount change
// after creation.
type Entry struct {
	Source      string // snippet of the source text, for debugging
	Translation string
	TargetLang  string
	Model       string
	Created     time.Time
	LastUsed    time.Time
	UseCount    int
}

// Stats reports cache performance counters.
type Stats struct {
	Entries int
	Hits    int
	Misses  int
}

// Cache is the translation memory. All methods are safe for concurrent
// use. When a Store is attached, every mutation is written through; a
// store failure drops the cache to memory-only mode for the remainder
// of the process instead of failing the translation.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*Entry
	store      Store
	storeDown  bool
	maxEntries int
	hits       int
	misses     int
}

// New creates a translation memory backed by store. A nil store keeps the
// memory purely in-process. maxEntries bounds the cache; pass 0 to grow
// without limit.
func New(store Store, maxEntries int) (*Cache, error) {
	c := &Cache{
		entries:    make(map[string]*Entry),
		store:      store,
		maxEntries: maxEntries,
	}
	if store != nil {
		loaded, err := store.LoadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to load translation memory: %w", err)
		}
		c.entries = loaded
	}
	return c, nil
}

// Key derives the content address for a (source text, target language)
// pair. Hashing bounds the key size and keeps raw text out of the index.
func Key(source, targetLang string) string {
	h := sha256.New()
	h.Write([]byte(Normalize(source)))
	h.Write([]byte{0})
	h.Write([]byte(targetLang))
	return hex.EncodeToString(h.Sum(nil))
}

// Normalize canonicalizes source text before hashing so that trailing
// whitespace or Windows line endings do not defeat the cache.
func Normalize(source string) string {
	return strings.TrimSpace(strings.ReplaceAll(source, "\r\n", "\n"))
}

// Get looks up a translation. A hit bumps the entry's usage stats and the
// global hit counter; a miss only counts the miss.
func (c *Cache) Get(source, targetLang string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key(source, targetLang)
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return Entry{}, false
	}

	c.hits++
	e.LastUsed = time.Now()
	e.UseCount++
	c.persistTouch(key, e)
	return *e, true
}

// Put stores a translation, overwriting any previous entry for the same
// key in full.
func (c *Cache) Put(source, targetLang, translation, model string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	e := &Entry{
		Source:      snippet(source, 100),
		Translation: translation,
		TargetLang:  targetLang,
		Model:       model,
		Created:     now,
		LastUsed:    now,
		UseCount:    1,
	}
	key := Key(source, targetLang)
	c.entries[key] = e
	c.persistPut(key, e)
	c.evictLocked()
}

// HitRate returns the percentage of lookups served from memory.
func (c *Cache) HitRate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total) * 100
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}

// Close releases the backing store, if any.
func (c *Cache) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}

func (c *Cache) persistPut(key string, e *Entry) {
	if c.store == nil || c.storeDown {
		return
	}
	if err := c.store.Put(key, *e); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: translation memory write failed, continuing in-memory only: %v\n", err)
		c.storeDown = true
	}
}

func (c *Cache) persistTouch(key string, e *Entry) {
	if c.store == nil || c.storeDown {
		return
	}
	if err := c.store.Touch(key, e.LastUsed, e.UseCount); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: translation memory write failed, continuing in-memory only: %v\n", err)
		c.storeDown = true
	}
}

// evictLocked drops the least recently used entries until the cache is
// back under its cap. Callers hold c.mu.
func (c *Cache) evictLocked() {
	if c.maxEntries <= 0 {
		return
	}
	for len(c.entries) > c.maxEntries {
		var oldestKey string
		var oldest time.Time
		for key, e := range c.entries {
			if oldestKey == "" || e.LastUsed.Before(oldest) {
				oldestKey = key
				oldest = e.LastUsed
			}
		}
		delete(c.entries, oldestKey)
		if c.store != nil && !c.storeDown {
			if err := c.store.Delete(oldestKey); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: translation memory write failed, continuing in-memory only: %v\n", err)
				c.storeDown = true
			}
		}
	}
}

func snippet(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
