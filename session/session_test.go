package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixapprox/pixapprox/model"
	"github.com/pixapprox/pixapprox/picture"
	"github.com/pixapprox/pixapprox/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGoal(t *testing.T) *picture.Gray {
	t.Helper()
	p, err := vm.Compile("x * y + 0.25")
	require.NoError(t, err)
	return picture.Render(p, 12, 10)
}

func testOptions(t *testing.T) Options {
	cfg := model.DefaultConfig()
	cfg.Population = 12
	cfg.NBest = 3
	cfg.Elites = 1
	cfg.Generations = 15
	cfg.Seed = 3
	cfg.Workers = 2
	return Options{
		Config: cfg,
		Output: t.TempDir(),
	}
}

func TestSessionWritesSnapshots(t *testing.T) {
	ctx := context.Background()
	s, err := OpenWithGoal(ctx, testOptions(t), testGoal(t))
	require.NoError(t, err)
	defer s.Close()

	res, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, res.Generations)
	require.Positive(t, s.Snapshots())

	first := filepath.Join(s.Dir, "result_gen_00000")
	img, err := picture.Load(first + ".png")
	require.NoError(t, err)
	assert.Equal(t, 24, img.Width, "goal and best side by side")
	assert.Equal(t, 10, img.Height)
	text, err := os.ReadFile(first + ".txt")
	require.NoError(t, err)
	assert.Equal(t, "1\n", string(text))

	snaps, err := s.Store.List(ctx, s.RunID)
	require.NoError(t, err)
	require.Len(t, snaps, s.Snapshots())
	last := snaps[len(snaps)-1]
	assert.Equal(t, res.BestError, last.Error)
	for i := 1; i < len(snaps); i++ {
		assert.Less(t, snaps[i].Error, snaps[i-1].Error)
	}
	assert.FileExists(t, s.CheckpointPath())
}

func TestSessionCheckpointResume(t *testing.T) {
	ctx := context.Background()
	opts := testOptions(t)
	first, err := OpenWithGoal(ctx, opts, testGoal(t))
	require.NoError(t, err)
	_, err = first.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	cp, err := LoadCheckpoint(first.CheckpointPath())
	require.NoError(t, err)
	assert.Equal(t, first.RunID, cp.RunID)
	assert.Equal(t, opts.Config.Population, cp.Population.Size())

	opts.Resume = first.CheckpointPath()
	opts.Config.Generations = cp.Generation + 5
	second, err := OpenWithGoal(ctx, opts, testGoal(t))
	require.NoError(t, err)
	defer second.Close()
	assert.Equal(t, first.RunID, second.RunID)
	assert.Equal(t, first.Dir, second.Dir)
	assert.Equal(t, cp.Generation, second.Engine.Generation())

	res, err := second.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, opts.Config.Generations, res.Generations)
}

func TestSessionPatience(t *testing.T) {
	ctx := context.Background()
	opts := testOptions(t)
	opts.Config.Generations = 500
	opts.Config.SeedProgram = mustCompile(t, "x * y + 0.25")
	opts.Patience = 4
	s, err := OpenWithGoal(ctx, opts, testGoal(t))
	require.NoError(t, err)
	defer s.Close()

	res, err := s.Run(ctx)
	require.NoError(t, err)
	assert.True(t, res.Stopped)
	assert.Equal(t, 0.0, res.BestError)
	assert.Equal(t, 5, res.Generations)
	assert.Equal(t, 1, s.Snapshots())
}

func TestSessionCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, err := OpenWithGoal(context.Background(), testOptions(t), testGoal(t))
	require.NoError(t, err)
	defer s.Close()

	res, err := s.Run(ctx)
	require.NoError(t, err)
	assert.True(t, res.Stopped)
	assert.Equal(t, 1, res.Generations)
}

func TestSessionSingleVariable(t *testing.T) {
	ctx := context.Background()
	opts := testOptions(t)
	opts.Config.Vars = 1
	opts.Config.SeedProgram = mustCompile(t, "x * 0.5")
	s, err := OpenWithGoal(ctx, opts, picture.Render(mustCompile(t, "x"), 12, 10))
	require.NoError(t, err)
	defer s.Close()

	res, err := s.Run(ctx)
	require.NoError(t, err)
	require.Positive(t, s.Snapshots())
	assert.NoError(t, res.Best.Program.Validate(1))
	assert.True(t, s.Engine.RenderBest().SameSize(s.Goal))

	opts = testOptions(t)
	opts.Config.Vars = 3
	_, err = OpenWithGoal(ctx, opts, testGoal(t))
	assert.ErrorIs(t, err, model.ErrBadConfig)
}

func TestSessionSQLiteHistory(t *testing.T) {
	ctx := context.Background()
	opts := testOptions(t)
	opts.HistoryBackend = "sqlite"
	opts.HistoryPath = filepath.Join(t.TempDir(), "history.db")
	opts.RunID = "fixed-run"
	s, err := OpenWithGoal(ctx, opts, testGoal(t))
	require.NoError(t, err)
	res, err := s.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.Equal(t, filepath.Join(opts.Output, "fixed-run"), s.Dir)
	reopened, err := OpenWithGoal(ctx, opts, testGoal(t))
	require.NoError(t, err)
	defer reopened.Close()
	best, ok, err := reopened.Store.Best(ctx, "fixed-run")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, res.BestError, best.Error)
}

func TestOpenLoadsAndScalesImage(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "goal.png")
	require.NoError(t, picture.SavePNG(path, picture.Render(mustCompile(t, "x"), 32, 16)))

	opts := testOptions(t)
	opts.Image = path
	opts.Scale = 2
	s, err := Open(ctx, opts)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 16, s.Goal.Width)
	assert.Equal(t, 8, s.Goal.Height)
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()
	opts := testOptions(t)
	_, err := Open(ctx, opts)
	assert.ErrorIs(t, err, ErrNoImage)

	opts.Image = filepath.Join(t.TempDir(), "missing.png")
	_, err = Open(ctx, opts)
	assert.ErrorIs(t, err, os.ErrNotExist)

	opts = testOptions(t)
	opts.HistoryBackend = "redis"
	_, err = OpenWithGoal(ctx, opts, testGoal(t))
	assert.Error(t, err)

	opts = testOptions(t)
	opts.Config.NBest = 99
	_, err = OpenWithGoal(ctx, opts, testGoal(t))
	assert.ErrorIs(t, err, model.ErrBadConfig)
}

func TestOptionsFromSpec(t *testing.T) {
	spec, err := model.LoadSpecFromFile("../testdata/runs/gradient.toml")
	require.NoError(t, err)
	opts, err := OptionsFromSpec(spec)
	require.NoError(t, err)
	assert.Equal(t, spec.Run.Image, opts.Image)
	assert.Equal(t, 2, opts.Scale)
	assert.Equal(t, 50, opts.Patience)
	assert.Equal(t, "sqlite", opts.HistoryBackend)
	assert.Equal(t, 40, opts.Config.Population)
}

func mustCompile(t *testing.T, src string) *vm.Program {
	t.Helper()
	p, err := vm.Compile(src)
	require.NoError(t, err)
	return p
}
