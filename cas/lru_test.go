package cas

import (
	"testing"

	"github.com/pixapprox/pixapprox/vm"
)

func constProgram(x float32) *vm.Program {
	return &vm.Program{Code: []vm.Op{vm.Const(x)}}
}

func TestLRUCache_BasicOperation(t *testing.T) {
	cache := NewLRUCache(3) // Small cache for testing

	p1, p2, p3, p4 := constProgram(1), constProgram(2), constProgram(3), constProgram(4)

	hash1, err := cache.Put(p1, 10)
	if err != nil {
		t.Fatalf("Failed to put p1: %v", err)
	}
	if _, err := cache.Put(p2, 20); err != nil {
		t.Fatalf("Failed to put p2: %v", err)
	}
	if _, err := cache.Put(p3, 30); err != nil {
		t.Fatalf("Failed to put p3: %v", err)
	}

	// Touch p1 so p2 becomes the oldest entry
	score, ok, err := cache.Get(p1)
	if err != nil {
		t.Fatalf("Failed to get p1: %v", err)
	}
	if !ok || score != 10 {
		t.Errorf("Retrieved p1 has wrong score: got %v (found %v), want 10", score, ok)
	}

	if _, err := cache.Put(p4, 40); err != nil {
		t.Fatalf("Failed to put p4: %v", err)
	}

	stats := cache.Stats()
	if stats.Size > stats.MaxSize {
		t.Errorf("Cache size %d exceeds max size %d", stats.Size, stats.MaxSize)
	}
	if !cache.Has(hash1) {
		t.Errorf("Recently used entry should survive eviction")
	}
	if _, ok, _ := cache.Get(p2); ok {
		t.Errorf("Least recently used entry should have been evicted")
	}
	if _, ok, _ := cache.Get(p4); !ok {
		t.Errorf("Newest entry should be present")
	}
}

func TestLRUCache_Has(t *testing.T) {
	cache := NewLRUCache(10)

	hash, err := cache.Put(constProgram(42), 1)
	if err != nil {
		t.Fatalf("Failed to put program: %v", err)
	}

	if !cache.Has(hash) {
		t.Errorf("Cache should report hash exists")
	}

	if cache.Has(Hash(99999)) {
		t.Errorf("Cache should report non-existent hash doesn't exist")
	}
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	cache := NewLRUCache(2)
	p := constProgram(0.5)
	cache.Put(p, 1)
	cache.Put(p, 2)
	if cache.Len() != 1 {
		t.Errorf("Updating an entry should not grow the cache, got %d", cache.Len())
	}
	if score, _, _ := cache.Get(p); score != 2 {
		t.Errorf("Expected updated score 2, got %v", score)
	}
}

func TestLRUCache_Stats(t *testing.T) {
	cache := NewLRUCache(0)
	if cache.Stats().MaxSize != 1000 {
		t.Errorf("Expected default max size 1000, got %d", cache.Stats().MaxSize)
	}
	cache.Put(constProgram(1), 1)
	cache.Get(constProgram(1))
	cache.Get(constProgram(2))
	stats := cache.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %d and %d", stats.Hits, stats.Misses)
	}
	if stats.HitRate() != 0.5 {
		t.Errorf("Expected hit rate 0.5, got %v", stats.HitRate())
	}
}
