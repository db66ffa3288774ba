package model

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
)

// Reporter receives every ranked generation of a run for progress display.
type Reporter interface {
	Generation(r GenerationReport)
}

// SilentReporter does not output any progress
type SilentReporter struct{}

func (r *SilentReporter) Generation(GenerationReport) {}

// ColorReporter prints a colored progress line to a writer (typically
// stderr) every Every generations, and whenever the best error improves.
type ColorReporter struct {
	Writer io.Writer
	Every  int

	best     float64
	haveBest bool
}

func (r *ColorReporter) Generation(g GenerationReport) {
	improved := !r.haveBest || g.BestError < r.best
	if improved {
		r.best = g.BestError
		r.haveBest = true
	}
	if improved || r.Every <= 1 || g.Generation%r.Every == 0 {
		fmt.Fprintln(r.Writer, FormatGeneration(g))
	}
}

// LogReporter emits progress as structured log events, for runs whose
// stderr is collected rather than watched.
type LogReporter struct{}

func (r *LogReporter) Generation(g GenerationReport) {
	log.Info().
		Int("generation", g.Generation).
		Int("population", g.Population).
		Int("code_size", g.CodeSize).
		Float64("error_per_pixel", g.ErrorPerPixel).
		Dur("elapsed", g.Elapsed).
		Msg("generation")
}
