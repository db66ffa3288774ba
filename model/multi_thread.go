package model

import (
	"context"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
)

// MultiThreadEngine evaluates a population over a pool of long-lived
// workers. Each worker owns its scratch state; the goal image is shared
// read-only.
type MultiThreadEngine struct {
	// Configuration
	Engine     *Engine
	numWorkers int

	// Cancellation
	ctx    context.Context
	cancel context.CancelFunc

	// Work channel, created when the first batch arrives
	workQueue chan *WorkItem

	// First error seen in the current batch
	errMu    sync.Mutex
	batchErr error

	// Coordination
	batchWg  sync.WaitGroup
	workerWg sync.WaitGroup
}

// NewMultiThread creates a pool of numWorkers evaluators (NumCPU if not
// positive). Workers start on the first call to Evaluate.
func NewMultiThread(e *Engine, numWorkers int) *MultiThreadEngine {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &MultiThreadEngine{
		Engine:     e,
		numWorkers: numWorkers,
	}
}

func (m *MultiThreadEngine) startWorkers() {
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.workQueue = make(chan *WorkItem, m.numWorkers*2)
	for i := 0; i < m.numWorkers; i++ {
		m.workerWg.Add(1)
		go m.worker(i)
	}
}

// Evaluate hands one work item per individual to the pool and blocks until
// all of them are scored.
func (m *MultiThreadEngine) Evaluate(pop *Population) error {
	if m.workQueue == nil {
		m.startWorkers()
	}
	m.errMu.Lock()
	m.batchErr = nil
	m.errMu.Unlock()

	m.batchWg.Add(pop.Size())
	for i, ind := range pop.Individuals {
		m.workQueue <- NewWorkItem(ind, i)
	}
	m.batchWg.Wait()

	m.errMu.Lock()
	defer m.errMu.Unlock()
	return m.batchErr
}

func (m *MultiThreadEngine) worker(workerID int) {
	defer m.workerWg.Done()
	log.Trace().Int("worker", workerID).Msg("evaluation worker started")
	s := newScorer(m.Engine)
	for {
		select {
		case <-m.ctx.Done():
			log.Trace().Int("worker", workerID).Msg("evaluation worker stopped")
			return
		case item, ok := <-m.workQueue:
			if !ok {
				return
			}
			m.processWorkItem(s, item)
		}
	}
}

func (m *MultiThreadEngine) processWorkItem(s *scorer, item *WorkItem) {
	defer m.batchWg.Done()
	if err := s.score(item.Individual); err != nil {
		m.errMu.Lock()
		if m.batchErr == nil {
			m.batchErr = err
		}
		m.errMu.Unlock()
	}
}

// Close stops the workers. The engine must not be used afterwards.
func (m *MultiThreadEngine) Close() {
	if m.workQueue == nil {
		return
	}
	m.cancel()
	m.workerWg.Wait()
}
