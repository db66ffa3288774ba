package model

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/pixapprox/pixapprox/vm"
	"github.com/shamaton/msgpack/v2"
)

var ErrNotEvaluated = errors.New("individual has not been evaluated")

// Individual is one candidate program. Its fitness is the image error of the
// program's rendering against the goal; lower is better.
type Individual struct {
	Program *vm.Program

	fitness   float64
	evaluated bool
}

func NewIndividual(p *vm.Program) *Individual {
	return &Individual{Program: p}
}

func (i *Individual) Fitness() float64 {
	if !i.evaluated {
		panic(fmt.Errorf("%w: %s", ErrNotEvaluated, i.Program.Render(vm.IndexedNames)))
	}
	return i.fitness
}

func (i *Individual) Evaluated() bool {
	return i.evaluated
}

func (i *Individual) SetFitness(v float64) {
	i.fitness = v
	i.evaluated = true
}

// Clone deep-copies the program. The copy is unevaluated.
func (i *Individual) Clone() *Individual {
	return &Individual{Program: i.Program.Clone()}
}

type Population struct {
	Individuals []*Individual
}

// NewPopulation fills size slots with copies of seed, or of vm.NewSeed() when
// seed is nil.
func NewPopulation(size int, seed *vm.Program) *Population {
	if seed == nil {
		seed = vm.NewSeed()
	}
	p := &Population{Individuals: make([]*Individual, size)}
	for i := range p.Individuals {
		p.Individuals[i] = NewIndividual(seed.Clone())
	}
	return p
}

func (p *Population) Size() int {
	return len(p.Individuals)
}

// Best is the first individual. It is only meaningful after Rank.
func (p *Population) Best() *Individual {
	return p.Individuals[0]
}

// Rank sorts ascending by fitness. The sort is stable so ties keep their
// slot order, which keeps elites ahead of equal offspring.
func (p *Population) Rank() {
	sort.SliceStable(p.Individuals, func(a, b int) bool {
		return p.Individuals[a].Fitness() < p.Individuals[b].Fitness()
	})
}

// CodeSize sums the instruction counts of every program.
func (p *Population) CodeSize() int {
	n := 0
	for _, ind := range p.Individuals {
		n += ind.Program.Len()
	}
	return n
}

type populationRecord struct {
	Programs []*vm.Program
}

// Serialize writes the programs only; scores are recomputed after loading.
func (p *Population) Serialize(w io.Writer) error {
	rec := populationRecord{Programs: make([]*vm.Program, len(p.Individuals))}
	for i, ind := range p.Individuals {
		rec.Programs[i] = ind.Program
	}
	return msgpack.MarshalWrite(w, rec)
}

func (p *Population) Deserialize(r io.Reader) error {
	var rec populationRecord
	if err := msgpack.UnmarshalRead(r, &rec); err != nil {
		return err
	}
	p.Individuals = make([]*Individual, len(rec.Programs))
	for i, prog := range rec.Programs {
		p.Individuals[i] = NewIndividual(prog)
	}
	return nil
}
