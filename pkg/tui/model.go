// Package tui renders live progress of a run with bubbletea.
package tui

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/DrSkyle/knapsack-ga/pkg/engine"
	"github.com/DrSkyle/knapsack-ga/pkg/engine/evolution"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrInterrupted is returned when the user quits before the run finishes.
var ErrInterrupted = errors.New("run interrupted")

// GenerationMsg carries one finished generation.
type GenerationMsg evolution.Stats

// DoneMsg ends the program with the run's outcome.
type DoneMsg struct {
	Outcome *engine.Outcome
	Err     error
}

// sparkWidth caps the best-fitness history kept for the sparkline.
const sparkWidth = 48

type Model struct {
	spinner  spinner.Model
	progress progress.Model

	Input      string
	iterations int

	current evolution.Stats
	started bool
	history []float64

	done     bool
	quitting bool
	outcome  *engine.Outcome
	err      error

	width     int
	startTime time.Time
}

func NewModel(input string, iterations int) Model {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = special

	prog := progress.New(progress.WithGradient("#00FF99", "#00CCFF"))

	return Model{
		spinner:    s,
		progress:   prog,
		Input:      input,
		iterations: iterations,
		startTime:  time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(max(msg.Width-20, 10), 60)

	case GenerationMsg:
		m.started = true
		m.current = evolution.Stats(msg)
		m.history = append(m.history, float64(msg.Best))
		if len(m.history) > sparkWidth {
			m.history = m.history[len(m.history)-sparkWidth:]
		}

	case DoneMsg:
		m.done = true
		m.outcome = msg.Outcome
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// Percent is the share of generations completed.
func (m Model) Percent() float64 {
	if !m.started {
		return 0
	}
	if m.iterations <= 0 {
		return 1
	}
	return min(float64(m.current.Generation)/float64(m.iterations), 1)
}

// Outcome returns the finished run, if any.
func (m Model) Outcome() (*engine.Outcome, error) {
	if !m.done {
		return nil, ErrInterrupted
	}
	return m.outcome, m.err
}

// Run shows the progress view while run executes on its own goroutine.
// run receives the observer it must install on the engine.
func Run(ctx context.Context, out io.Writer, input string, iterations int,
	run func(ctx context.Context, progress evolution.GenerationFunc) (*engine.Outcome, error)) (*engine.Outcome, error) {

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(input, iterations), tea.WithOutput(out), tea.WithContext(ctx))

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		o, err := run(ctx, func(s evolution.Stats) error {
			if ctx.Err() != nil {
				return ErrInterrupted
			}
			p.Send(GenerationMsg(s))
			return nil
		})
		p.Send(DoneMsg{Outcome: o, Err: err})
	}()

	final, err := p.Run()
	cancel()
	<-finished

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return nil, err
	}
	if m, ok := final.(Model); ok {
		return m.Outcome()
	}
	return nil, ErrInterrupted
}
