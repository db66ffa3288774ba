package model

import (
	"fmt"
	"strings"

	"github.com/gookit/color"
)

// FormatGeneration renders the one-line progress summary of a ranked
// generation.
func FormatGeneration(r GenerationReport) string {
	var b strings.Builder
	b.WriteString(color.Cyan.Sprintf("gen %6d", r.Generation))
	b.WriteString(color.Gray.Sprint(" | "))
	b.WriteString(fmt.Sprintf("pop %d", r.Population))
	b.WriteString(color.Gray.Sprint(" | "))
	b.WriteString(fmt.Sprintf("code %d", r.CodeSize))
	b.WriteString(color.Gray.Sprint(" | "))
	b.WriteString(color.Yellow.Sprintf("err/px %.4f", r.ErrorPerPixel))
	b.WriteString(color.Gray.Sprint(" | "))
	b.WriteString(r.Elapsed.String())
	return b.String()
}

// FormatBest shows the best program of a run.
func FormatBest(res *RunResult) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(color.Gray.Sprint("================================================================================"))
	b.WriteString("\n")
	b.WriteString(color.Green.Sprint("BEST PROGRAM"))
	b.WriteString("\n")
	b.WriteString(color.Gray.Sprint("================================================================================"))
	b.WriteString("\n")
	if res.Best == nil {
		b.WriteString("  (no generation was evaluated)\n")
		return b.String()
	}
	b.WriteString(color.Bold.Sprint("Error:   "))
	b.WriteString(color.Yellow.Sprintf("%g\n", res.BestError))
	b.WriteString(color.Bold.Sprint("Length:  "))
	b.WriteString(fmt.Sprintf("%d\n", res.Best.Program.Len()))
	b.WriteString(color.Bold.Sprint("Program: "))
	b.WriteString(fmt.Sprintf("%s\n", res.Best.Program))
	return b.String()
}

func FormatStatistics(res *RunResult) string {
	stats := res.Statistics
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(color.Cyan.Sprint("=== Evolution statistics ==="))
	b.WriteString("\n")
	b.WriteString(color.Bold.Sprint("Generations ranked: "))
	b.WriteString(fmt.Sprintf("%d\n", res.Generations))
	b.WriteString(color.Bold.Sprint("Programs rendered: "))
	b.WriteString(fmt.Sprintf("%d\n", stats.Evaluations))
	b.WriteString(color.Bold.Sprint("Fitness cache hits: "))
	b.WriteString(fmt.Sprintf("%d\n", stats.CacheHits))
	if stats.Cache.MaxSize > 0 {
		b.WriteString(color.Bold.Sprint("Cache hit rate: "))
		b.WriteString(fmt.Sprintf("%.1f%% (%d/%d entries)\n", stats.Cache.HitRate()*100, stats.Cache.Size, stats.Cache.MaxSize))
	}

	if stats.Redraws > 0 || stats.Fallbacks > 0 {
		b.WriteString(color.Bold.Sprint("Children over stack depth: "))
		b.WriteString(color.Yellow.Sprintf("%d redrawn, %d kept unmutated\n", stats.Redraws, stats.Fallbacks))
	}

	b.WriteString(color.Bold.Sprint("Stopped early: "))
	if res.Stopped {
		b.WriteString(color.Yellow.Sprint("yes\n"))
	} else {
		b.WriteString(color.Green.Sprint("no\n"))
	}
	return b.String()
}
