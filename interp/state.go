package interp

import (
	"fmt"
	"strings"
)

func NewState(nvars int) *State {
	if nvars < 0 || nvars > MaxVars {
		panic(fmt.Errorf("%w: %d (max %d)", ErrTooManyVars, nvars, MaxVars))
	}
	return &State{N: nvars}
}

// Set stores the first len(vals) registers.
func (s *State) Set(vals ...float32) {
	if len(vals) > s.N {
		panic(fmt.Errorf("%w: %d values for %d registers", ErrTooManyVars, len(vals), s.N))
	}
	copy(s.Vars[:], vals)
}

func (s *State) Get(i int) float32 {
	if i < 0 || i >= s.N {
		panic(fmt.Errorf("%w: %d (have %d)", ErrBadVar, i, s.N))
	}
	return s.Vars[i]
}

func (s *State) Clone() *State {
	out := *s
	return &out
}

func (s *State) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < s.N; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%g", s.Vars[i])
	}
	b.WriteByte(']')
	return b.String()
}
