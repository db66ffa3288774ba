package model

import (
	"github.com/pixapprox/pixapprox/interp"
	"github.com/pixapprox/pixapprox/picture"
)

// scorer owns the mutable scratch of one evaluating goroutine: a register
// file and a render buffer the size of the goal.
type scorer struct {
	engine *Engine
	state  *interp.State
	buf    *picture.Gray
}

func newScorer(e *Engine) *scorer {
	return &scorer{
		engine: e,
		state:  interp.NewState(e.Config.Vars),
		buf:    picture.NewGray(e.Goal.Width, e.Goal.Height),
	}
}

func (s *scorer) score(ind *Individual) error {
	e := s.engine
	if e.Cache != nil {
		v, ok, err := e.Cache.Get(ind.Program)
		if err != nil {
			return err
		}
		if ok {
			ind.SetFitness(v)
			e.cacheHits.Add(1)
			return nil
		}
	}
	picture.RenderInto(s.buf, ind.Program, s.state)
	v := e.Metric(e.Goal, s.buf)
	ind.SetFitness(v)
	e.evaluations.Add(1)
	if e.Cache != nil {
		if _, err := e.Cache.Put(ind.Program, v); err != nil {
			return err
		}
	}
	return nil
}
