// Package report renders and exports the outcome of a run.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/DrSkyle/knapsack-ga/pkg/catalog"
	"github.com/DrSkyle/knapsack-ga/pkg/engine/evolution"
	"github.com/DrSkyle/knapsack-ga/pkg/engine/history"
)

// Banner heads the summary block.
const Banner = "-------------------- Result --------------------"

// Summary is everything the end-of-run report shows.
type Summary struct {
	Input       string
	Seed        uint64
	ElapsedMS   int64
	Result      *evolution.Result
	Convergence history.ConvergenceResult
	// Optimum is set when the run was verified by exhaustive search.
	Optimum *int
}

// WriteSummary prints the plain-text result block.
func WriteSummary(w io.Writer, s Summary) error {
	if s.Result == nil {
		return fmt.Errorf("report: nil result")
	}
	r := s.Result

	var b strings.Builder
	b.WriteString(Banner + "\n")
	fmt.Fprintf(&b, "Time taken (in milliseconds): %d\n", s.ElapsedMS)
	fmt.Fprintf(&b, "Best total value: %d\n", r.BestValue)
	fmt.Fprintf(&b, "Best total weight: %d (capacity %d, %.1f%% used)\n", r.BestWeight, r.Capacity, r.Utilization*100)
	fmt.Fprintf(&b, "Best item set: %s\n", FormatItems(r.BestItems))
	if s.Input != "" {
		fmt.Fprintf(&b, "Input: %s\n", s.Input)
	}
	fmt.Fprintf(&b, "Seed: %d\n", s.Seed)

	if n := len(r.Generations); n > 0 {
		c := s.Convergence
		fmt.Fprintf(&b, "Generations: %d (last improvement at %d, velocity %.2f/gen)\n",
			n, c.LastImprovement, c.Velocity)
	}
	if s.Optimum != nil {
		fmt.Fprintf(&b, "Optimum: %d (gap %d)\n", *s.Optimum, *s.Optimum-r.BestValue)
	}
	for _, alert := range s.Convergence.Alerts {
		b.WriteString(alert + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// FormatItems renders items as [(id, value, weight), ...].
func FormatItems(items []catalog.Item) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
