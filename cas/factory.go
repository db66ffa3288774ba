package cas

import "fmt"

// New builds a fitness cache. "lru" (the default) holds at most size
// entries; "memory" never evicts and ignores size.
func New(kind string, size int) (CAS, error) {
	switch kind {
	case "", "lru":
		return NewLRUCache(size), nil
	case "memory":
		return NewMemoryCAS(), nil
	default:
		return nil, fmt.Errorf("unsupported cache kind: %s", kind)
	}
}
