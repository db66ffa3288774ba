package cas

import (
	"bytes"
	"container/list"
	"sync"
)

// LRUCache is a bounded CAS that evicts the least recently used entry.
type LRUCache struct {
	mu        sync.Mutex
	cache     map[Hash]*list.Element
	evictList *list.List
	maxSize   int

	hits   int64
	misses int64
}

type cacheEntry struct {
	hash Hash
	entry
}

// NewLRUCache creates a cache holding at most maxSize entries
// (0 or negative means the default of 1000).
func NewLRUCache(maxSize int) *LRUCache {
	if maxSize <= 0 {
		maxSize = 1000 // Default cache size
	}
	return &LRUCache{
		cache:     make(map[Hash]*list.Element),
		evictList: list.New(),
		maxSize:   maxSize,
	}
}

func (l *LRUCache) Has(hash Hash) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.cache[hash]
	return ok
}

func (l *LRUCache) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.evictList.Len()
}

func (l *LRUCache) Get(item Hashable) (float64, bool, error) {
	h, data, err := Key(item)
	if err != nil {
		return 0, false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	elem, ok := l.cache[h]
	if !ok {
		l.misses++
		return 0, false, nil
	}
	e := elem.Value.(*cacheEntry)
	if !bytes.Equal(e.data, data) {
		l.misses++
		return 0, false, nil
	}
	// Move to front (most recently used)
	l.evictList.MoveToFront(elem)
	l.hits++
	return e.score, true, nil
}

func (l *LRUCache) Put(item Hashable, score float64) (Hash, error) {
	h, data, err := Key(item)
	if err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.addToCache(h, entry{data: data, score: score})
	return h, nil
}

// addToCache adds an entry to the cache and evicts oldest if necessary
func (l *LRUCache) addToCache(hash Hash, e entry) {
	// If already in cache, update and move to front
	if elem, ok := l.cache[hash]; ok {
		l.evictList.MoveToFront(elem)
		elem.Value.(*cacheEntry).entry = e
		return
	}

	elem := l.evictList.PushFront(&cacheEntry{hash: hash, entry: e})
	l.cache[hash] = elem

	if l.evictList.Len() > l.maxSize {
		l.evictOldest()
	}
}

// evictOldest removes the least recently used entry from cache
func (l *LRUCache) evictOldest() {
	elem := l.evictList.Back()
	if elem != nil {
		l.evictList.Remove(elem)
		entry := elem.Value.(*cacheEntry)
		delete(l.cache, entry.hash)
	}
}

// CacheStats returns cache statistics for monitoring
type CacheStats struct {
	Size    int
	MaxSize int
	Hits    int64
	Misses  int64
}

func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Stats returns current cache statistics
func (l *LRUCache) Stats() CacheStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return CacheStats{
		Size:    len(l.cache),
		MaxSize: l.maxSize,
		Hits:    l.hits,
		Misses:  l.misses,
	}
}
