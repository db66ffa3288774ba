package model

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/pixapprox/pixapprox/cas"
	"github.com/pixapprox/pixapprox/mutate"
	"github.com/pixapprox/pixapprox/picture"
	"github.com/rs/zerolog/log"
)

// Evaluator scores every individual of a population. Implementations must
// not return until every individual is evaluated.
type Evaluator interface {
	Evaluate(pop *Population) error
	Close()
}

// Engine drives Initialize -> {Evaluate -> Rank -> Reproduce}* for one goal
// image.
type Engine struct {
	Config     Config
	Goal       *picture.Gray
	Metric     picture.MetricFunc
	Rand       *rand.Rand
	Population *Population
	Cache      cas.CAS
	Evaluator  Evaluator
	Reporter   Reporter

	generation  int
	evaluations atomic.Int64
	cacheHits   atomic.Int64
	redraws     int64
	fallbacks   int64
}

// GenerationReport describes one ranked generation.
type GenerationReport struct {
	Generation int
	Best       *Individual
	BestError  float64
	// ErrorPerPixel is BestError divided by the goal's pixel count.
	ErrorPerPixel float64
	CodeSize      int
	Population    int
	Elapsed       time.Duration
}

// NewEngine validates cfg and builds an engine with a fresh population. The
// goal image is shared read-only by every worker.
func NewEngine(cfg Config, goal *picture.Gray) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	metric, err := cfg.Metric.Func()
	if err != nil {
		return nil, err
	}
	e := &Engine{
		Config:   cfg,
		Goal:     goal,
		Metric:   metric,
		Rand:     rand.New(rand.NewSource(cfg.Seed)),
		Reporter: &SilentReporter{},
	}
	if cfg.cacheEnabled() {
		e.Cache, err = cas.New(cfg.CacheKind, cfg.CacheSize)
		if err != nil {
			return nil, err
		}
	}
	if cfg.workers() == 1 {
		e.Evaluator = NewSingleThread(e)
	} else {
		e.Evaluator = NewMultiThread(e, cfg.workers())
	}
	e.Initialize()
	return e, nil
}

// Initialize replaces the population with copies of the seed program.
func (e *Engine) Initialize() {
	e.Population = NewPopulation(e.Config.Population, e.Config.SeedProgram)
	e.generation = 0
}

// Resume replaces the population with previously saved programs, starting
// the generation count at gen.
func (e *Engine) Resume(pop *Population, gen int) error {
	if gen < 0 || gen >= e.Config.Generations {
		return fmt.Errorf("%w: checkpoint generation %d is outside the %d generations of this run", ErrBadConfig, gen, e.Config.Generations)
	}
	if pop.Size() != e.Config.Population {
		return fmt.Errorf("%w: checkpoint holds %d programs, population is %d", ErrBadConfig, pop.Size(), e.Config.Population)
	}
	for i, ind := range pop.Individuals {
		if err := ind.Program.Validate(e.Config.Vars); err != nil {
			return fmt.Errorf("%w: checkpoint program %d: %w", ErrBadConfig, i, err)
		}
	}
	e.Population = pop
	e.generation = gen
	return nil
}

func (e *Engine) Generation() int {
	return e.generation
}

// Evaluate scores the whole population and waits for every worker.
func (e *Engine) Evaluate() error {
	return e.Evaluator.Evaluate(e.Population)
}

func (e *Engine) Rank() {
	e.Population.Rank()
}

// Reproduce builds the next generation from the ranked population. Slot i
// clones parent i mod NBest and mutates it; the first Elites slots then get
// unmutated copies of the current best.
func (e *Engine) Reproduce() {
	prev := e.Population.Individuals
	next := make([]*Individual, len(prev))
	for i := range next {
		next[i] = e.breed(prev[i%e.Config.NBest])
	}
	for i := 0; i < e.Config.Elites; i++ {
		next[i] = prev[i].Clone()
	}
	e.Population = &Population{Individuals: next}
	e.generation++
}

// breedAttempts bounds how often a child is redrawn when its mutations
// would push the evaluation stack past its capacity.
const breedAttempts = 4

// breed clones parent and applies Config.Mutations mutations. Children that
// would overflow the stack are redrawn; after breedAttempts failures the
// unmutated clone is used.
func (e *Engine) breed(parent *Individual) *Individual {
	for attempt := 0; attempt < breedAttempts; attempt++ {
		child := parent.Clone()
		for m := 0; m < e.Config.Mutations; m++ {
			mutate.Mutate(e.Rand, child.Program, e.Config.Vars)
		}
		if child.Program.Validate(e.Config.Vars) == nil {
			return child
		}
		e.redraws++
		log.Debug().Int("length", child.Program.Len()).Msg("discarding child deeper than the stack")
	}
	e.fallbacks++
	log.Warn().Int("length", parent.Program.Len()).Msg("no child fit the stack, keeping an unmutated copy")
	return parent.Clone()
}

// Step evaluates and ranks the current generation.
func (e *Engine) Step() (GenerationReport, error) {
	start := time.Now()
	if err := e.Evaluate(); err != nil {
		return GenerationReport{}, err
	}
	e.Rank()
	best := e.Population.Best()
	r := GenerationReport{
		Generation:    e.generation,
		Best:          best,
		BestError:     best.Fitness(),
		ErrorPerPixel: best.Fitness() / float64(e.Goal.Len()),
		CodeSize:      e.Population.CodeSize(),
		Population:    e.Population.Size(),
		Elapsed:       time.Since(start),
	}
	log.Debug().
		Int("generation", r.Generation).
		Float64("error", r.BestError).
		Int("code_size", r.CodeSize).
		Dur("elapsed", r.Elapsed).
		Msg("generation ranked")
	return r, nil
}

// RenderBest draws the current best program at the goal's size.
func (e *Engine) RenderBest() *picture.Gray {
	return picture.Render(e.Population.Best().Program, e.Goal.Width, e.Goal.Height)
}

// Statistics returns the counters accumulated since the engine was built.
func (e *Engine) Statistics() Statistics {
	s := Statistics{
		Evaluations: e.evaluations.Load(),
		CacheHits:   e.cacheHits.Load(),
		Redraws:     e.redraws,
		Fallbacks:   e.fallbacks,
	}
	if e.Cache != nil {
		s.Cache = cas.CacheStats{Size: e.Cache.Len()}
		if st, ok := e.Cache.(interface{ Stats() cas.CacheStats }); ok {
			s.Cache = st.Stats()
		}
	}
	return s
}

func (e *Engine) Close() {
	e.Evaluator.Close()
}
