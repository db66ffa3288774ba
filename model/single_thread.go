package model

// SingleThreadEngine evaluates the population in slot order on the calling
// goroutine.
type SingleThreadEngine struct {
	scorer *scorer
}

func NewSingleThread(e *Engine) *SingleThreadEngine {
	return &SingleThreadEngine{scorer: newScorer(e)}
}

func (s *SingleThreadEngine) Evaluate(pop *Population) error {
	for _, ind := range pop.Individuals {
		if err := s.scorer.score(ind); err != nil {
			return err
		}
	}
	return nil
}

func (s *SingleThreadEngine) Close() {}
