package evolution

import (
	"math/rand/v2"

	"github.com/DrSkyle/knapsack-ga/pkg/catalog"
	"github.com/DrSkyle/knapsack-ga/pkg/engine/genome"
)

// Crossover performs uniform crossover into child with probability rate.
// A second parent is drawn by roulette; for each catalog item, in catalog
// order, a fair coin decides whether the child copies that parent's gene.
// It reports whether crossover ran.
func Crossover(child *genome.Individual, pop Population, cat *catalog.Catalog, rate float64, rng *rand.Rand) bool {
	if rng.Float64() >= rate {
		return false
	}

	donor, ok := RouletteSelect(pop, rng)
	if !ok {
		return false
	}

	for i := 0; i < cat.Len(); i++ {
		item := cat.At(i)
		if rng.IntN(2) != 1 {
			continue
		}
		if donor.Contains(item.ID) {
			child.Add(item)
		} else {
			child.Remove(item)
		}
	}
	return true
}

// Mutate toggles each catalog item in child independently with probability
// rate and returns the number of toggles.
func Mutate(child *genome.Individual, cat *catalog.Catalog, rate float64, rng *rand.Rand) int {
	flips := 0
	for i := 0; i < cat.Len(); i++ {
		if rng.Float64() >= rate {
			continue
		}
		child.Toggle(cat.At(i))
		flips++
	}
	return flips
}
