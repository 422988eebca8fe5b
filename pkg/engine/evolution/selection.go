package evolution

import (
	"math/rand/v2"

	"github.com/DrSkyle/knapsack-ga/pkg/engine/genome"
)

// RouletteSelect picks an individual with probability proportional to its
// fitness. It returns false only for an empty population. When every
// individual scores zero the pick falls back to a uniform random choice.
func RouletteSelect(pop Population, rng *rand.Rand) (*genome.Individual, bool) {
	if len(pop) == 0 {
		return nil, false
	}

	sum := pop.FitnessSum()
	if sum <= 0 {
		return pop[rng.IntN(len(pop))], true
	}

	r := rng.Float64() * float64(sum)
	var last *genome.Individual
	for _, ind := range pop {
		f := ind.Fitness()
		if f == 0 {
			continue
		}
		last = ind
		r -= float64(f)
		if r < 0 {
			return ind, true
		}
	}

	// rounding left r at or just above zero
	return last, true
}
