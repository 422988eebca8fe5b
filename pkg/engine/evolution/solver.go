package evolution

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/DrSkyle/knapsack-ga/pkg/catalog"
	"github.com/DrSkyle/knapsack-ga/pkg/config"
	"github.com/DrSkyle/knapsack-ga/pkg/engine/genome"
)

// ErrNilRandom is returned when no random source is supplied.
var ErrNilRandom = errors.New("evolution: nil random source")

// GenerationFunc observes each generation as soon as it is complete.
// Returning an error aborts the run.
type GenerationFunc func(s Stats) error

// Result is the outcome of a finished run.
type Result struct {
	BestValue   int            `json:"best_value"`
	BestWeight  int            `json:"best_weight"`
	Capacity    int            `json:"capacity"`
	BestItems   []catalog.Item `json:"best_items"`
	// Waste is the capacity the best item set leaves unused.
	Waste       int            `json:"waste"`
	Utilization float64        `json:"utilization"`
	Generations []Stats        `json:"generations"`
}

// NewRand returns a PCG source seeded from a single value.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Solver owns the population and the best-ever record for one run.
type Solver struct {
	cfg     config.EvolutionConfig
	catalog *catalog.Catalog
	rng     *rand.Rand

	population  Population
	best        *genome.Individual
	bestFitness int
	generation  int
}

// NewSolver validates the parameters and prepares a run. The random source
// is used for every draw, so a seeded source gives a reproducible run.
func NewSolver(cat *catalog.Catalog, cfg config.EvolutionConfig, rng *rand.Rand) (*Solver, error) {
	if cat == nil {
		return nil, errors.New("evolution: nil catalog")
	}
	if rng == nil {
		return nil, ErrNilRandom
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Solver{cfg: cfg, catalog: cat, rng: rng}, nil
}

// Run seeds the population, evolves cfg.Iterations generations and returns
// the best individual found. onGeneration may be nil.
func (s *Solver) Run(onGeneration GenerationFunc) (*Result, error) {
	history := make([]Stats, 0, s.cfg.Iterations+1)

	emit := func(st Stats) error {
		history = append(history, st)
		if onGeneration == nil {
			return nil
		}
		if err := onGeneration(st); err != nil {
			return fmt.Errorf("generation %d: %w", st.Generation, err)
		}
		return nil
	}

	if err := emit(s.seed()); err != nil {
		return nil, err
	}

	for s.generation < s.cfg.Iterations {
		s.generation++
		if err := emit(s.evolve()); err != nil {
			return nil, err
		}
	}

	return &Result{
		BestValue:   s.bestFitness,
		BestWeight:  s.best.TotalWeight(),
		Capacity:    s.catalog.Capacity(),
		BestItems:   s.best.Items(),
		Waste:       s.best.Waste(),
		Utilization: s.best.Utilization(),
		Generations: history,
	}, nil
}

// Population exposes the current generation.
func (s *Solver) Population() Population { return s.population }

// Best returns a copy of the best individual seen so far.
func (s *Solver) Best() *genome.Individual {
	if s.best == nil {
		return nil
	}
	return s.best.Clone()
}

func (s *Solver) seed() Stats {
	s.population = RandomPopulation(s.catalog, s.cfg.PopulationSize, s.rng)

	leader := s.population.Best()
	s.best = leader.Clone()
	s.bestFitness = leader.Fitness()

	return summarize(0, s.population, s.bestFitness)
}

func (s *Solver) evolve() Stats {
	next := make(Population, 0, s.cfg.PopulationSize)

	var (
		genBest        *genome.Individual
		genBestFitness int
		kept           int
		crossovers     int
		mutations      int
	)

	for i := 0; i < s.cfg.PopulationSize; i++ {
		parent, _ := RouletteSelect(s.population, s.rng)
		child := parent.Clone()

		if s.rng.Float64() < s.cfg.KeepRate {
			kept++
		} else {
			if Crossover(child, s.population, s.catalog, s.cfg.CrossoverRate, s.rng) {
				crossovers++
			}
			mutations += Mutate(child, s.catalog, s.cfg.MutationRate, s.rng)
		}

		next = append(next, child)
		if f := child.Fitness(); f > genBestFitness {
			genBest = child
			genBestFitness = f
		}
	}

	s.population = next

	if genBest != nil && genBestFitness > s.bestFitness {
		s.best = genBest.Clone()
		s.bestFitness = genBestFitness
	}

	st := summarize(s.generation, s.population, s.bestFitness)
	st.Kept = kept
	st.Crossovers = crossovers
	st.Mutations = mutations
	return st
}
