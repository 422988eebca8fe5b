package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/DrSkyle/knapsack-ga/pkg/catalog"
	"github.com/DrSkyle/knapsack-ga/pkg/engine"
	"github.com/DrSkyle/knapsack-ga/pkg/engine/evolution"
	"github.com/DrSkyle/knapsack-ga/pkg/engine/history"
	tea "github.com/charmbracelet/bubbletea"
)

func TestModel_GenerationUpdates(t *testing.T) {
	model := NewModel("instance.txt", 10)

	if !strings.Contains(model.View(), "Seeding population") {
		t.Errorf("Expected seeding view before the first generation, got:\n%s", model.View())
	}

	for gen, best := range []int{3, 5, 5, 8} {
		updated, _ := model.Update(GenerationMsg(evolution.Stats{Generation: gen, Best: best, GenerationBest: best, Feasible: 20}))
		model = updated.(Model)
	}

	if got := model.Percent(); got != 0.3 {
		t.Errorf("Expected 0.3 progress, got %v", got)
	}

	view := model.View()
	for _, want := range []string{"Generation 3/10", "Best", "8", "Feasible", "instance.txt"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected view to contain %q, got:\n%s", want, view)
		}
	}
	if len(model.history) != 4 {
		t.Errorf("Expected 4 history points, got %d", len(model.history))
	}
}

func TestModel_HistoryIsCapped(t *testing.T) {
	model := NewModel("x", 1000)
	for gen := 0; gen < sparkWidth+10; gen++ {
		updated, _ := model.Update(GenerationMsg(evolution.Stats{Generation: gen, Best: gen}))
		model = updated.(Model)
	}
	if len(model.history) != sparkWidth {
		t.Errorf("Expected history capped at %d, got %d", sparkWidth, len(model.history))
	}
}

func TestModel_Done(t *testing.T) {
	model := NewModel("instance.txt", 2)
	updated, _ := model.Update(GenerationMsg(evolution.Stats{Generation: 2, Best: 8}))
	model = updated.(Model)

	outcome := &engine.Outcome{
		Result: &evolution.Result{
			BestValue: 8,
			BestItems: []catalog.Item{{ID: 2, Value: 3, Weight: 4}, {ID: 3, Value: 5, Weight: 6}},
		},
		Convergence: history.ConvergenceResult{Alerts: []string{"[INFO] PLATEAU: test"}},
	}
	updated, cmd := model.Update(DoneMsg{Outcome: outcome})
	model = updated.(Model)

	if cmd == nil {
		t.Fatal("Expected quit command after DoneMsg")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}

	got, err := model.Outcome()
	if err != nil || got != outcome {
		t.Errorf("Expected stored outcome, got %v, %v", got, err)
	}

	view := model.View()
	for _, want := range []string{"(2, 3, 4), (3, 5, 6)", "PLATEAU"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected view to contain %q, got:\n%s", want, view)
		}
	}
}

func TestModel_DoneWithError(t *testing.T) {
	model := NewModel("instance.txt", 2)
	updated, _ := model.Update(GenerationMsg(evolution.Stats{Generation: 1}))
	updated, _ = updated.(Model).Update(DoneMsg{Err: errors.New("disk full")})
	model = updated.(Model)

	if _, err := model.Outcome(); err == nil || err.Error() != "disk full" {
		t.Errorf("Expected run error, got %v", err)
	}
	if !strings.Contains(model.View(), "FAILED: disk full") {
		t.Errorf("Expected failure line, got:\n%s", model.View())
	}
}

func TestModel_QuitBeforeDone(t *testing.T) {
	model := NewModel("instance.txt", 5)
	updated, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	model = updated.(Model)

	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, err := model.Outcome(); !errors.Is(err, ErrInterrupted) {
		t.Errorf("Expected ErrInterrupted, got %v", err)
	}
}

func TestPercent_ZeroIterations(t *testing.T) {
	model := NewModel("x", 0)
	updated, _ := model.Update(GenerationMsg(evolution.Stats{}))
	if got := updated.(Model).Percent(); got != 1 {
		t.Errorf("Expected complete progress, got %v", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := renderSparkline(nil); got != "[NO DATA]" {
		t.Errorf("Expected [NO DATA], got %s", got)
	}
	if got := renderSparkline([]float64{0, 0}); got != "[  ]" {
		t.Errorf("Expected blank bars, got %q", got)
	}
	if got := renderSparkline([]float64{4, 8}); got != "[▄█]" {
		t.Errorf("Expected [▄█], got %q", got)
	}
}
