package history

import (
	"context"
	"sort"
	"sync"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        []string
	snapshots   map[string]map[int]Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = nil
	s.snapshots = make(map[string]map[int]Snapshot)
	return nil
}

func (s *MemoryStore) Record(_ context.Context, snap Snapshot) error {
	if err := snap.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	byGen, ok := s.snapshots[snap.RunID]
	if !ok {
		byGen = make(map[int]Snapshot)
		s.snapshots[snap.RunID] = byGen
		s.runs = append(s.runs, snap.RunID)
	}
	snap.Program = snap.Program.Clone()
	byGen[snap.Generation] = snap
	return nil
}

func (s *MemoryStore) Best(ctx context.Context, runID string) (Snapshot, bool, error) {
	list, err := s.List(ctx, runID)
	if err != nil || len(list) == 0 {
		return Snapshot{}, false, err
	}
	best := list[0]
	for _, snap := range list[1:] {
		if snap.Error < best.Error {
			best = snap
		}
	}
	return best, true, nil
}

func (s *MemoryStore) List(_ context.Context, runID string) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}
	out := make([]Snapshot, 0, len(s.snapshots[runID]))
	for _, snap := range s.snapshots[runID] {
		snap.Program = snap.Program.Clone()
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Generation < out[j].Generation
	})
	return out, nil
}

func (s *MemoryStore) Runs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}
	return append([]string(nil), s.runs...), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
