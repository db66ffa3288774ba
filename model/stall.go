package model

// StallDetector reports when the best error has not improved for Patience
// consecutive generations. A zero Patience never stalls.
type StallDetector struct {
	Patience int

	best  float64
	since int
	seen  bool
}

// Observe records the best error of one generation and returns true once the
// run has gone Patience generations without improving.
func (s *StallDetector) Observe(bestError float64) bool {
	if !s.seen || bestError < s.best {
		s.best = bestError
		s.since = 0
		s.seen = true
		return false
	}
	s.since++
	return s.Patience > 0 && s.since >= s.Patience
}

// Since is the number of generations since the last improvement.
func (s *StallDetector) Since() int {
	return s.since
}
