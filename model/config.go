package model

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/pixapprox/pixapprox/cas"
	"github.com/pixapprox/pixapprox/picture"
	"github.com/pixapprox/pixapprox/vm"
)

const (
	DefaultPopulation  = 70
	DefaultGenerations = 15000
	DefaultNBest       = 10
	DefaultMutations   = 2
	DefaultVars        = 2
)

var ErrBadConfig = errors.New("invalid configuration")

// Config holds the parameters of one evolutionary run.
type Config struct {
	Population  int
	Generations int
	NBest       int
	Elites      int
	Mutations   int
	Vars        int

	// Workers is the evaluation pool size; 0 means runtime.NumCPU().
	Workers int
	// CacheSize bounds the fitness cache; 0 disables it unless CacheKind
	// is "memory", which never evicts.
	CacheSize int
	CacheKind string

	Metric picture.Metric
	Seed   int64

	// SeedProgram is copied into every slot of the first generation.
	// Nil means vm.NewSeed().
	SeedProgram *vm.Program
}

func DefaultConfig() Config {
	return Config{
		Population:  DefaultPopulation,
		Generations: DefaultGenerations,
		NBest:       DefaultNBest,
		Mutations:   DefaultMutations,
		Vars:        DefaultVars,
		Metric:      picture.Perceptual,
	}
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

func (c Config) cacheEnabled() bool {
	return c.CacheSize > 0 || c.CacheKind == "memory"
}

func (c Config) Validate() error {
	switch {
	case c.Population < 1:
		return fmt.Errorf("%w: population must be positive, got %d", ErrBadConfig, c.Population)
	case c.Generations < 1:
		return fmt.Errorf("%w: generations must be positive, got %d", ErrBadConfig, c.Generations)
	case c.NBest < 1 || c.NBest > c.Population:
		return fmt.Errorf("%w: nbest must be in [1, %d], got %d", ErrBadConfig, c.Population, c.NBest)
	case c.Elites < 0 || c.Elites > c.Population:
		return fmt.Errorf("%w: elites must be in [0, %d], got %d", ErrBadConfig, c.Population, c.Elites)
	case c.Mutations < 1:
		return fmt.Errorf("%w: mutations must be at least 1, got %d", ErrBadConfig, c.Mutations)
	case c.Vars < 1 || c.Vars > picture.ImageVars:
		return fmt.Errorf("%w: vars must be in [1, %d], got %d", ErrBadConfig, picture.ImageVars, c.Vars)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrBadConfig, c.Workers)
	case c.CacheSize < 0:
		return fmt.Errorf("%w: cache size must not be negative, got %d", ErrBadConfig, c.CacheSize)
	}
	if c.cacheEnabled() {
		if _, err := cas.New(c.CacheKind, c.CacheSize); err != nil {
			return fmt.Errorf("%w: %w", ErrBadConfig, err)
		}
	}
	if _, err := c.Metric.Func(); err != nil {
		return fmt.Errorf("%w: %w", ErrBadConfig, err)
	}
	if c.SeedProgram != nil {
		if err := c.SeedProgram.Validate(c.Vars); err != nil {
			return fmt.Errorf("%w: seed program: %w", ErrBadConfig, err)
		}
	}
	return nil
}
