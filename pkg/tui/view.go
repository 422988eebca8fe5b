package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/DrSkyle/knapsack-ga/pkg/engine/report"
	"github.com/charmbracelet/lipgloss"
)

var (
	special    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF99"))
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00CCFF"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0055"))
)

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("KNAPSACK-GA") + dimStyle.Render("  "+m.Input) + "\n\n")

	if !m.started {
		s.WriteString(fmt.Sprintf("   %s Seeding population...\n", m.spinner.View()))
		return s.String()
	}

	c := m.current
	state := m.spinner.View()
	if m.done {
		state = special.Render("✔")
	}
	s.WriteString(fmt.Sprintf("   %s Generation %d/%d\n", state, c.Generation, m.iterations))
	s.WriteString("   " + m.progress.ViewAs(m.Percent()) + "\n\n")

	s.WriteString(fmt.Sprintf("   Best        %s\n", special.Render(fmt.Sprintf("%d", c.Best))))
	s.WriteString(fmt.Sprintf("   Generation  %d\n", c.GenerationBest))
	s.WriteString(fmt.Sprintf("   Mean        %.2f ± %.2f\n", c.Mean, c.StdDev))
	s.WriteString(fmt.Sprintf("   Feasible    %d\n", c.Feasible))
	s.WriteString("   Trend       " + renderSparkline(m.history) + "\n")

	if m.done {
		s.WriteString("\n")
		switch {
		case m.err != nil:
			s.WriteString(errStyle.Render("   FAILED: "+m.err.Error()) + "\n")
		case m.outcome != nil:
			r := m.outcome.Result
			s.WriteString(fmt.Sprintf("   Best item set: %s\n", report.FormatItems(r.BestItems)))
			for _, alert := range m.outcome.Convergence.Alerts {
				s.WriteString(warnStyle.Render("   "+alert) + "\n")
			}
		}
	} else {
		elapsed := time.Since(m.startTime).Round(time.Millisecond)
		s.WriteString(dimStyle.Render(fmt.Sprintf("\n   %s elapsed  •  q to quit", elapsed)) + "\n")
	}

	return s.String()
}

func renderSparkline(data []float64) string {
	if len(data) == 0 {
		return "[NO DATA]"
	}
	bars := []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

	max := 0.0
	for _, v := range data {
		if v > max {
			max = v
		}
	}

	var s strings.Builder
	s.WriteString("[")
	for _, v := range data {
		if max == 0 {
			s.WriteString(bars[0])
			continue
		}
		idx := int((v / max) * float64(len(bars)-1))
		if idx >= len(bars) {
			idx = len(bars) - 1
		}
		s.WriteString(bars[idx])
	}
	s.WriteString("]")
	return s.String()
}
