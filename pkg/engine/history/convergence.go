package history

import (
	"fmt"

	"github.com/DrSkyle/knapsack-ga/pkg/engine/evolution"
)

// ConvergenceResult contains signals derived from the generation series.
type ConvergenceResult struct {
	FinalBest int
	// LastImprovement is the generation where the best fitness last rose.
	LastImprovement int
	// Stagnation counts generations since the last improvement.
	Stagnation int
	// Velocity is the mean best-fitness gain per generation over the window.
	Velocity float64
	// Diversity is the final generation's fitness standard deviation.
	Diversity float64

	Alerts []string
}

// AnalyzeConvergence inspects the last window generations (all when
// window <= 0) of a run.
func AnalyzeConvergence(gens []evolution.Stats, window int) ConvergenceResult {
	if len(gens) == 0 {
		return ConvergenceResult{}
	}

	last := gens[len(gens)-1]
	res := ConvergenceResult{
		FinalBest: last.Best,
		Diversity: last.StdDev,
	}

	for i := 1; i < len(gens); i++ {
		if gens[i].Best > gens[i-1].Best {
			res.LastImprovement = gens[i].Generation
		}
	}
	res.Stagnation = last.Generation - res.LastImprovement

	start := 0
	if window > 0 && len(gens) > window+1 {
		start = len(gens) - 1 - window
	}
	if span := last.Generation - gens[start].Generation; span > 0 {
		res.Velocity = float64(last.Best-gens[start].Best) / float64(span)
	}

	if last.Generation > 0 && res.Stagnation*2 >= last.Generation {
		res.Alerts = append(res.Alerts, fmt.Sprintf("[INFO] PLATEAU: no improvement for %d of %d generations", res.Stagnation, last.Generation))
	}
	if last.Feasible == 0 {
		res.Alerts = append(res.Alerts, "[WARNING] INFEASIBLE: every individual of the final generation exceeds capacity")
	}
	if len(gens) > 1 && last.StdDev == 0 && last.Mean > 0 {
		res.Alerts = append(res.Alerts, "[INFO] COLLAPSE: population converged to a single fitness value")
	}

	return res
}
