package evolution

import (
	"gonum.org/v1/gonum/stat"
)

// Stats describes one generation. Generation 0 is the initial population.
type Stats struct {
	Generation int `json:"generation"`
	// Best is the best fitness seen so far in the run. It never decreases.
	Best int `json:"best"`
	// GenerationBest is the best fitness inside this generation only.
	GenerationBest int     `json:"generation_best"`
	Mean           float64 `json:"mean"`
	StdDev         float64 `json:"std_dev"`
	Feasible       int     `json:"feasible"`
	Kept           int     `json:"kept"`
	Crossovers     int     `json:"crossovers"`
	Mutations      int     `json:"mutations"`
}

func summarize(gen int, pop Population, best int) Stats {
	fitnesses := pop.Fitnesses()

	s := Stats{
		Generation: gen,
		Best:       best,
	}
	for _, ind := range pop {
		if ind.Feasible() {
			s.Feasible++
		}
		if f := ind.Fitness(); f > s.GenerationBest {
			s.GenerationBest = f
		}
	}
	switch {
	case len(fitnesses) > 1:
		s.Mean, s.StdDev = stat.MeanStdDev(fitnesses, nil)
	case len(fitnesses) == 1:
		// sample std dev is undefined for n=1
		s.Mean = fitnesses[0]
	}
	return s
}
