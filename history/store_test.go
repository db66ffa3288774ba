package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pixapprox/pixapprox/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustProgram(t *testing.T, src string) *vm.Program {
	t.Helper()
	p, err := vm.ParsePostfix(src)
	require.NoError(t, err)
	return p
}

func storesUnderTest(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": NewSQLiteStore(filepath.Join(t.TempDir(), "history.db")),
	}
}

func TestStoreRecordAndList(t *testing.T) {
	ctx := context.Background()
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Init(ctx))
			t.Cleanup(func() { _ = store.Close() })

			run := NewRunID()
			require.NoError(t, store.Record(ctx, NewSnapshot(run, 7, 40.5, mustProgram(t, "x y +"))))
			require.NoError(t, store.Record(ctx, NewSnapshot(run, 2, 90, mustProgram(t, "x"))))
			require.NoError(t, store.Record(ctx, NewSnapshot(run, 15, 12.25, mustProgram(t, "x y + 0.5 *"))))

			list, err := store.List(ctx, run)
			require.NoError(t, err)
			require.Len(t, list, 3)
			assert.Equal(t, []int{2, 7, 15}, []int{list[0].Generation, list[1].Generation, list[2].Generation})
			assert.Equal(t, "v0 v1 + 0.5 *", list[2].Text)
			assert.Equal(t, 5, list[2].CodeSize)
			assert.Equal(t, 12.25, list[2].Error)
			assert.Equal(t, run, list[2].RunID)
			assert.True(t, list[2].Program.Equal(mustProgram(t, "x y + 0.5 *")))
			assert.False(t, list[2].CreatedAt.IsZero())

			other, err := store.List(ctx, NewRunID())
			require.NoError(t, err)
			assert.Empty(t, other)
		})
	}
}

func TestStoreBest(t *testing.T) {
	ctx := context.Background()
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Init(ctx))
			t.Cleanup(func() { _ = store.Close() })

			run := NewRunID()
			_, ok, err := store.Best(ctx, run)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Record(ctx, NewSnapshot(run, 1, 30, mustProgram(t, "x"))))
			require.NoError(t, store.Record(ctx, NewSnapshot(run, 4, 10, mustProgram(t, "y"))))
			require.NoError(t, store.Record(ctx, NewSnapshot(run, 9, 10, mustProgram(t, "y dup *"))))

			best, ok, err := store.Best(ctx, run)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, 4, best.Generation, "ties go to the earliest generation")
			assert.Equal(t, "v1", best.Text)
		})
	}
}

func TestStoreReplacesGeneration(t *testing.T) {
	ctx := context.Background()
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Init(ctx))
			t.Cleanup(func() { _ = store.Close() })

			run := NewRunID()
			require.NoError(t, store.Record(ctx, NewSnapshot(run, 3, 30, mustProgram(t, "x"))))
			require.NoError(t, store.Record(ctx, NewSnapshot(run, 3, 20, mustProgram(t, "y"))))

			list, err := store.List(ctx, run)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, 20.0, list[0].Error)
			assert.Equal(t, "v1", list[0].Text)
		})
	}
}

func TestStoreRuns(t *testing.T) {
	ctx := context.Background()
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Init(ctx))
			t.Cleanup(func() { _ = store.Close() })

			a, b := NewRunID(), NewRunID()
			require.NoError(t, store.Record(ctx, NewSnapshot(a, 0, 5, mustProgram(t, "1"))))
			require.NoError(t, store.Record(ctx, NewSnapshot(b, 0, 5, mustProgram(t, "1"))))
			require.NoError(t, store.Record(ctx, NewSnapshot(a, 1, 4, mustProgram(t, "x"))))

			runs, err := store.Runs(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{a, b}, runs)
		})
	}
}

func TestStoreRejectsInvalidSnapshots(t *testing.T) {
	ctx := context.Background()
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Init(ctx))
			t.Cleanup(func() { _ = store.Close() })

			assert.ErrorIs(t, store.Record(ctx, Snapshot{Program: vm.NewSeed()}), ErrInvalidSnapshot)
			assert.ErrorIs(t, store.Record(ctx, Snapshot{RunID: "r"}), ErrInvalidSnapshot)
			assert.ErrorIs(t, store.Record(ctx, Snapshot{RunID: "r", Generation: -1, Program: vm.NewSeed()}), ErrInvalidSnapshot)
		})
	}
}

func TestStoreRequiresInit(t *testing.T) {
	ctx := context.Background()
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			err := store.Record(ctx, NewSnapshot("r", 0, 1, vm.NewSeed()))
			assert.ErrorIs(t, err, ErrNotInitialized)
			_, err = store.List(ctx, "r")
			assert.ErrorIs(t, err, ErrNotInitialized)
		})
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	p := mustProgram(t, "x y +")
	snap := NewSnapshot("r", 0, 1, p)
	p.Code[0] = vm.Const(3)
	assert.Equal(t, "v0 v1 +", snap.Text)
	assert.Equal(t, vm.Var(0), snap.Program.Code[0])
}

func TestSQLiteStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")
	run := NewRunID()

	first := NewSQLiteStore(path)
	require.NoError(t, first.Init(ctx))
	require.NoError(t, first.Record(ctx, NewSnapshot(run, 11, 2.5, mustProgram(t, "x cos"))))
	require.NoError(t, first.Close())

	second := NewSQLiteStore(path)
	require.NoError(t, second.Init(ctx))
	t.Cleanup(func() { _ = second.Close() })
	best, ok, err := second.Best(ctx, run)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 11, best.Generation)
	assert.Equal(t, "x cos", best.Program.String())
}

func TestSQLiteStoreRequiresPath(t *testing.T) {
	assert.Error(t, NewSQLiteStore("").Init(context.Background()))
}

func TestNewStore(t *testing.T) {
	s, err := NewStore("", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = NewStore("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = NewStore("sqlite", filepath.Join(t.TempDir(), "h.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)

	_, err = NewStore("postgres", "")
	assert.Error(t, err)
}
