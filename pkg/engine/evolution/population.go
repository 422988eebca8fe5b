// Package evolution is the genetic search: population seeding, roulette
// selection, uniform crossover, bit-flip mutation and the generational loop.
package evolution

import (
	"math/rand/v2"

	"github.com/DrSkyle/knapsack-ga/pkg/catalog"
	"github.com/DrSkyle/knapsack-ga/pkg/engine/genome"
)

// Population is the ordered set of individuals of one generation.
type Population []*genome.Individual

// FitnessSum adds up the fitness of every individual.
func (p Population) FitnessSum() int64 {
	var sum int64
	for _, ind := range p {
		sum += int64(ind.Fitness())
	}
	return sum
}

// Best returns the first individual with the highest fitness, or nil.
func (p Population) Best() *genome.Individual {
	var best *genome.Individual
	for _, ind := range p {
		if best == nil || ind.Fitness() > best.Fitness() {
			best = ind
		}
	}
	return best
}

// Fitnesses returns the fitness of each individual in order.
func (p Population) Fitnesses() []float64 {
	out := make([]float64, len(p))
	for i, ind := range p {
		out[i] = float64(ind.Fitness())
	}
	return out
}

// RandomPopulation builds size individuals with RandomIndividual.
func RandomPopulation(cat *catalog.Catalog, size int, rng *rand.Rand) Population {
	pop := make(Population, 0, size)
	for i := 0; i < size; i++ {
		pop = append(pop, RandomIndividual(cat, rng))
	}
	return pop
}

// RandomIndividual packs items in uniformly random order. An item is
// accepted only while the running weight stays strictly below capacity; a
// rejected item is never drawn again since the weight can only grow.
func RandomIndividual(cat *catalog.Catalog, rng *rand.Rand) *genome.Individual {
	ind := genome.New(cat.Capacity())

	pool := make([]int, cat.Len())
	for i := range pool {
		pool[i] = i
	}

	for len(pool) > 0 {
		k := rng.IntN(len(pool))
		item := cat.At(pool[k])

		pool[k] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]

		if ind.TotalWeight()+item.Weight < cat.Capacity() {
			ind.Add(item)
		}
	}
	return ind
}
