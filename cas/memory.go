package cas

import (
	"bytes"
	"sync"
)

// MemoryCAS is an unbounded, concurrency-safe CAS.
type MemoryCAS struct {
	mu   sync.RWMutex
	data map[Hash]entry
}

func NewMemoryCAS() *MemoryCAS {
	return &MemoryCAS{
		data: make(map[Hash]entry),
	}
}

func (m *MemoryCAS) Has(hash Hash) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[hash]
	return ok
}

func (m *MemoryCAS) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *MemoryCAS) Get(item Hashable) (float64, bool, error) {
	h, data, err := Key(item)
	if err != nil {
		return 0, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.data[h]
	if !ok || !bytes.Equal(e.data, data) {
		return 0, false, nil
	}
	return e.score, true, nil
}

func (m *MemoryCAS) Put(item Hashable, score float64) (Hash, error) {
	h, data, err := Key(item)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[h] = entry{data: data, score: score}
	return h, nil
}
