package model

import (
	"github.com/pixapprox/pixapprox/cas"
	"github.com/rs/zerolog/log"
)

// Observer is called after every ranked generation. Returning false stops the
// run before the next reproduction.
type Observer func(r GenerationReport) bool

// Statistics are the counters of a run so far.
type Statistics struct {
	// Evaluations counts programs actually rendered and scored.
	Evaluations int64
	// CacheHits counts programs whose score came from the fitness cache.
	CacheHits int64
	// Redraws counts children discarded for overflowing the stack, and
	// Fallbacks the slots that got an unmutated parent copy instead.
	Redraws   int64
	Fallbacks int64
	Cache     cas.CacheStats
}

type RunResult struct {
	Best        *Individual
	BestError   float64
	Generations int
	// Stopped is set when the observer ended the run early.
	Stopped    bool
	Statistics Statistics
}

// Run evaluates generations until Config.Generations have been ranked or obs
// returns false. A nil observer runs to completion.
func (e *Engine) Run(obs Observer) (*RunResult, error) {
	res := &RunResult{}
	for e.generation < e.Config.Generations {
		r, err := e.Step()
		if err != nil {
			return nil, err
		}
		e.Reporter.Generation(r)
		res.Best = r.Best
		res.BestError = r.BestError
		res.Generations = r.Generation + 1
		if obs != nil && !obs(r) {
			log.Info().Int("generation", r.Generation).Msg("run stopped by observer")
			res.Stopped = true
			break
		}
		if e.generation+1 == e.Config.Generations {
			break
		}
		e.Reproduce()
	}
	res.Statistics = e.Statistics()
	return res, nil
}
