// Package history records every improvement of a run's best program so runs
// can be inspected and compared after the fact.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pixapprox/pixapprox/vm"
)

var (
	ErrNotInitialized  = errors.New("store is not initialized")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// Snapshot is the best program of a run at one generation.
type Snapshot struct {
	RunID      string
	Generation int
	Error      float64
	CodeSize   int
	Program    *vm.Program
	// Text is the postfix rendering of Program.
	Text      string
	CreatedAt time.Time
}

func NewSnapshot(runID string, generation int, bestError float64, p *vm.Program) Snapshot {
	return Snapshot{
		RunID:      runID,
		Generation: generation,
		Error:      bestError,
		CodeSize:   p.Len(),
		Program:    p.Clone(),
		Text:       p.Render(vm.IndexedNames),
		CreatedAt:  time.Now().UTC(),
	}
}

func (s Snapshot) validate() error {
	switch {
	case s.RunID == "":
		return fmt.Errorf("%w: run id is required", ErrInvalidSnapshot)
	case s.Program == nil:
		return fmt.Errorf("%w: program is required", ErrInvalidSnapshot)
	case s.Generation < 0:
		return fmt.Errorf("%w: generation must not be negative", ErrInvalidSnapshot)
	}
	return nil
}

// Store persists snapshots. Recording a second snapshot for the same run and
// generation replaces the first.
type Store interface {
	Init(ctx context.Context) error
	Record(ctx context.Context, s Snapshot) error
	// Best returns the snapshot with the lowest error, the earliest one on
	// ties.
	Best(ctx context.Context, runID string) (Snapshot, bool, error)
	// List returns a run's snapshots in generation order.
	List(ctx context.Context, runID string) ([]Snapshot, error)
	// Runs returns every run id, in order of first record.
	Runs(ctx context.Context) ([]string, error)
	Close() error
}

// NewRunID names a fresh run.
func NewRunID() string {
	return uuid.NewString()
}
