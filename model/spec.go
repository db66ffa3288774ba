package model

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pixapprox/pixapprox/picture"
	"github.com/pixapprox/pixapprox/vm"
)

// Spec is the TOML run file. Zero values fall back to DefaultConfig.
type Spec struct {
	Run        RunSpec        `toml:"run"`
	Population PopulationSpec `toml:"population"`
	History    HistorySpec    `toml:"history"`
	Cache      CacheSpec      `toml:"cache"`
}

type RunSpec struct {
	Image       string `toml:"image,omitempty"`
	Output      string `toml:"output,omitempty"`
	Seed        int64  `toml:"seed,omitempty"`
	Generations int    `toml:"generations,omitempty"`
	Metric      string `toml:"metric,omitempty"`
	// Scale shrinks the goal image by this factor before the run.
	Scale int `toml:"scale,omitempty"`
	// Patience stops the run after this many generations without
	// improvement.
	Patience int `toml:"patience,omitempty"`
}

type PopulationSpec struct {
	Size      int `toml:"size,omitempty"`
	NBest     int `toml:"nbest,omitempty"`
	Elites    int `toml:"elites,omitempty"`
	Mutations int `toml:"mutations,omitempty"`
	Workers   int `toml:"workers,omitempty"`
	// Seed is an infix expression every individual starts from.
	Seed string `toml:"seed,omitempty"`
}

type HistorySpec struct {
	Backend string `toml:"backend,omitempty"`
	Path    string `toml:"path,omitempty"`
}

type CacheSpec struct {
	Size int    `toml:"size,omitempty"`
	Kind string `toml:"kind,omitempty"`
}

func parseSpec(f io.Reader) (*Spec, error) {
	var out Spec
	_, err := toml.NewDecoder(f).Decode(&out)
	return &out, err
}

// LoadSpecFromFile reads a run file. The goal image defaults to the run
// file's name with a .png extension, and every relative path resolves
// against the run file's directory.
func LoadSpecFromFile(path string) (*Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	s, err := parseSpec(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Run.Image == "" {
		parts := strings.Split(fi.Name(), ".")
		parts = parts[:len(parts)-1]
		parts = append(parts, "png")
		s.Run.Image = strings.Join(parts, ".")
	}
	if s.Run.Output == "" {
		s.Run.Output = "result"
	}
	filedir := filepath.Dir(path)
	s.Run.Image = resolve(filedir, s.Run.Image)
	s.Run.Output = resolve(filedir, s.Run.Output)
	if s.History.Path != "" {
		s.History.Path = resolve(filedir, s.History.Path)
	}
	return s, nil
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(dir, p))
}

// Config merges the file's values over DefaultConfig.
func (s *Spec) Config() (Config, error) {
	cfg := DefaultConfig()
	if s.Run.Generations != 0 {
		cfg.Generations = s.Run.Generations
	}
	if s.Run.Metric != "" {
		cfg.Metric = picture.Metric(s.Run.Metric)
	}
	cfg.Seed = s.Run.Seed
	if s.Population.Size != 0 {
		cfg.Population = s.Population.Size
	}
	if s.Population.NBest != 0 {
		cfg.NBest = s.Population.NBest
	}
	if s.Population.Mutations != 0 {
		cfg.Mutations = s.Population.Mutations
	}
	cfg.Elites = s.Population.Elites
	cfg.Workers = s.Population.Workers
	cfg.CacheSize = s.Cache.Size
	cfg.CacheKind = s.Cache.Kind
	if s.Population.Seed != "" {
		p, err := vm.Compile(s.Population.Seed)
		if err != nil {
			return cfg, fmt.Errorf("%w: seed expression %q: %w", ErrBadConfig, s.Population.Seed, err)
		}
		cfg.SeedProgram = p
	}
	return cfg, cfg.Validate()
}
