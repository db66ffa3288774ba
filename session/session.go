// Package session runs one evolution against an image file and keeps its
// artifacts: comparison snapshots, checkpoints and the run history.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pixapprox/pixapprox/history"
	"github.com/pixapprox/pixapprox/model"
	"github.com/pixapprox/pixapprox/picture"
	"github.com/rs/zerolog/log"
	"github.com/shamaton/msgpack/v2"
)

const CheckpointName = "checkpoint.msgpack"

var ErrNoImage = errors.New("no goal image given")

// Options configures a session. Config is passed to model.NewEngine
// unchanged.
type Options struct {
	Config model.Config
	Image  string
	Output string
	// Scale shrinks the goal by this factor; values below 2 keep it as is.
	Scale    int
	Patience int

	HistoryBackend string
	HistoryPath    string

	// Resume names a checkpoint file to continue from.
	Resume string
	// RunID names the output directory; empty means a fresh id, or the
	// checkpoint's when resuming.
	RunID string

	Reporter model.Reporter
}

func OptionsFromSpec(s *model.Spec) (Options, error) {
	cfg, err := s.Config()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Config:         cfg,
		Image:          s.Run.Image,
		Output:         s.Run.Output,
		Scale:          s.Run.Scale,
		Patience:       s.Run.Patience,
		HistoryBackend: s.History.Backend,
		HistoryPath:    s.History.Path,
	}, nil
}

type Session struct {
	Options
	RunID  string
	Dir    string
	Goal   *picture.Gray
	Engine *model.Engine
	Store  history.Store

	stall    model.StallDetector
	best     float64
	haveBest bool
	saved    int
	err      error
}

// Open loads the goal image, builds the engine and prepares the output
// directory and history store.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.Image == "" {
		return nil, ErrNoImage
	}
	goal, err := picture.Load(opts.Image)
	if err != nil {
		return nil, fmt.Errorf("loading goal image: %w", err)
	}
	if opts.Scale > 1 {
		goal = picture.Downscale(goal, opts.Scale)
	}
	return OpenWithGoal(ctx, opts, goal)
}

// OpenWithGoal is Open for an image already in memory.
func OpenWithGoal(ctx context.Context, opts Options, goal *picture.Gray) (*Session, error) {
	eng, err := model.NewEngine(opts.Config, goal)
	if err != nil {
		return nil, err
	}
	if opts.Reporter != nil {
		eng.Reporter = opts.Reporter
	}
	s := &Session{
		Options: opts,
		RunID:   opts.RunID,
		Goal:    goal,
		Engine:  eng,
		stall:   model.StallDetector{Patience: opts.Patience},
	}

	if opts.Resume != "" {
		cp, err := LoadCheckpoint(opts.Resume)
		if err != nil {
			eng.Close()
			return nil, err
		}
		if err := eng.Resume(cp.Population, cp.Generation); err != nil {
			eng.Close()
			return nil, err
		}
		if s.RunID == "" {
			s.RunID = cp.RunID
		}
		log.Info().Str("run", s.RunID).Int("generation", cp.Generation).Msg("resuming from checkpoint")
	}
	if s.RunID == "" {
		s.RunID = history.NewRunID()
	}

	output := opts.Output
	if output == "" {
		output = "result"
	}
	s.Dir = filepath.Join(output, s.RunID)
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		eng.Close()
		return nil, err
	}

	store, err := history.NewStore(opts.HistoryBackend, opts.HistoryPath)
	if err != nil {
		eng.Close()
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		eng.Close()
		return nil, fmt.Errorf("opening history: %w", err)
	}
	s.Store = store
	return s, nil
}

// Run evolves until the generation budget is spent, the patience runs out or
// ctx is cancelled.
func (s *Session) Run(ctx context.Context) (*model.RunResult, error) {
	log.Info().
		Str("run", s.RunID).
		Int("width", s.Goal.Width).
		Int("height", s.Goal.Height).
		Int("population", s.Config.Population).
		Int("generations", s.Config.Generations).
		Str("output", s.Dir).
		Msg("starting run")
	res, err := s.Engine.Run(func(r model.GenerationReport) bool {
		return s.observe(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	return res, s.err
}

func (s *Session) observe(ctx context.Context, r model.GenerationReport) bool {
	if !s.haveBest || r.BestError < s.best {
		s.best = r.BestError
		s.haveBest = true
		log.Info().
			Int("generation", r.Generation).
			Float64("error", r.BestError).
			Int("length", r.Best.Program.Len()).
			Msg("new best program")
		if err := s.save(ctx, r); err != nil {
			s.err = err
			return false
		}
	}
	if s.stall.Observe(r.BestError) {
		log.Info().Int("generations", s.stall.Since()).Msg("no improvement within patience, stopping")
		return false
	}
	if ctx.Err() != nil {
		log.Warn().Err(ctx.Err()).Msg("run interrupted")
		return false
	}
	return true
}

func (s *Session) save(ctx context.Context, r model.GenerationReport) error {
	base := filepath.Join(s.Dir, fmt.Sprintf("result_gen_%05d", r.Generation))
	img := picture.SideBySide(s.Goal, s.Engine.RenderBest())
	if err := picture.SavePNG(base+".png", img); err != nil {
		return err
	}
	if err := os.WriteFile(base+".txt", []byte(r.Best.Program.String()+"\n"), 0o644); err != nil {
		return err
	}
	if err := s.Checkpoint(r.Generation); err != nil {
		return err
	}
	s.saved++
	return s.Store.Record(ctx, history.NewSnapshot(s.RunID, r.Generation, r.BestError, r.Best.Program))
}

// Snapshots is the number of improvements written so far.
func (s *Session) Snapshots() int {
	return s.saved
}

// CheckpointPath is where the session writes its checkpoint.
func (s *Session) CheckpointPath() string {
	return filepath.Join(s.Dir, CheckpointName)
}

type checkpointRecord struct {
	RunID      string
	Generation int
	Population []byte
}

type Checkpoint struct {
	RunID      string
	Generation int
	Population *model.Population
}

// Checkpoint writes the current population, tagged with its generation.
func (s *Session) Checkpoint(generation int) error {
	var pop bytes.Buffer
	if err := s.Engine.Population.Serialize(&pop); err != nil {
		return err
	}
	rec := checkpointRecord{RunID: s.RunID, Generation: generation, Population: pop.Bytes()}
	tmp := s.CheckpointPath() + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := msgpack.MarshalWrite(f, rec); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.CheckpointPath())
}

func LoadCheckpoint(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var rec checkpointRecord
	if err := msgpack.UnmarshalRead(f, &rec); err != nil {
		return nil, fmt.Errorf("reading checkpoint %s: %w", path, err)
	}
	pop := &model.Population{}
	if err := pop.Deserialize(bytes.NewReader(rec.Population)); err != nil {
		return nil, fmt.Errorf("reading checkpoint %s: %w", path, err)
	}
	return &Checkpoint{RunID: rec.RunID, Generation: rec.Generation, Population: pop}, nil
}

func (s *Session) Close() error {
	s.Engine.Close()
	if s.Store != nil {
		return s.Store.Close()
	}
	return nil
}
