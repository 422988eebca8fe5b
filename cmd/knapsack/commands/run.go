package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/DrSkyle/knapsack-ga/pkg/config"
	"github.com/DrSkyle/knapsack-ga/pkg/engine"
	"github.com/DrSkyle/knapsack-ga/pkg/engine/evolution"
	"github.com/DrSkyle/knapsack-ga/pkg/engine/history"
	"github.com/DrSkyle/knapsack-ga/pkg/engine/report"
	"github.com/DrSkyle/knapsack-ga/pkg/tui"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const positionalArgs = 6

func newRunCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <input_file> <iterations> <population_size> <keep_rate> <crossover_rate> <mutation_rate>",
		Short: "Evolve a solution for a knapsack instance",
		Long: `Loads a knapsack instance and evolves the best packing it can find.

The input file holds the capacity on its first line and one "value weight"
pair per following line. Files ending in .hcl are read as HCL documents.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < positionalArgs || args[0] == "help" {
				printUsage(cmd.OutOrStdout())
				return nil
			}
			return runSolve(cmd, v, args)
		},
	}

	flags := cmd.Flags()
	flags.Uint64("seed", 0, "Random seed; 0 picks one from the clock")
	flags.String("log-file", config.DefaultLogFile, "Per-generation best fitness log")
	flags.String("export", "", "Export the result (.json, .yaml, .csv, .xlsx)")
	flags.Bool("no-ledger", false, "Do not record the run in the ledger")
	flags.String("output-dir", "", "Directory or s3://bucket/prefix for artifacts")
	flags.String("where", "", "CEL filter over id, value, weight, capacity")
	flags.Bool("verify", false, "Compare against exhaustive search (small catalogs only)")
	flags.Bool("tui", false, "Show live progress")
	bindFlags(v, flags, map[string]string{
		"seed":       "seed",
		"log-file":   "log_file",
		"export":     "export",
		"no-ledger":  "no_ledger",
		"output-dir": "output_dir",
		"where":      "where",
		"verify":     "verify",
		"tui":        "tui",
	})

	return cmd
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "----- Knapsack with genetic algorithm -----")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: knapsack run <input_file> <algorithm_parameters>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "    * input_file - path to input file describing knapsack instance")
	fmt.Fprintln(w, "    * algorithm_parameters (in this order):")
	fmt.Fprintln(w, "       * iterations       - integer for evolution iteration count")
	fmt.Fprintln(w, "       * population_size  - size of the population in each evolution stage")
	fmt.Fprintln(w, "       * keep_rate        - chance for child to be left unmodified")
	fmt.Fprintln(w, "       * crossover_rate   - chance for child to be crossed over with another parent (uniform crossover)")
	fmt.Fprintln(w, "       * mutation_rate    - chance for each item to be toggled in child")
	fmt.Fprintln(w)
}

// parseParams reads the five numeric positional arguments over base.
func parseParams(base config.EvolutionConfig, args []string) (config.EvolutionConfig, error) {
	cfg := base
	var err error

	if cfg.Iterations, err = strconv.Atoi(args[0]); err != nil {
		return cfg, fmt.Errorf("%w: iterations %q is not an integer", config.ErrInvalidParameter, args[0])
	}
	if cfg.PopulationSize, err = strconv.Atoi(args[1]); err != nil {
		return cfg, fmt.Errorf("%w: population size %q is not an integer", config.ErrInvalidParameter, args[1])
	}

	rates := []struct {
		name string
		dst  *float64
		raw  string
	}{
		{"keep rate", &cfg.KeepRate, args[2]},
		{"crossover rate", &cfg.CrossoverRate, args[3]},
		{"mutation rate", &cfg.MutationRate, args[4]},
	}
	for _, r := range rates {
		if *r.dst, err = strconv.ParseFloat(r.raw, 64); err != nil {
			return cfg, fmt.Errorf("%w: %s %q is not a number", config.ErrInvalidParameter, r.name, r.raw)
		}
	}

	return cfg, cfg.Validate()
}

func loadConfig(v *viper.Viper, args []string) (engine.Config, error) {
	evo := config.DefaultEvolutionConfig()
	if err := v.Unmarshal(&evo); err != nil {
		return engine.Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	evo, err := parseParams(evo, args[1:positionalArgs])
	if err != nil {
		return engine.Config{}, err
	}

	out := config.DefaultOutputConfig()
	if err := v.Unmarshal(&out); err != nil {
		return engine.Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if out.LogFile == "" {
		out.LogFile = config.DefaultLogFile
	}
	if v.GetBool("no_ledger") {
		out.LedgerPath = ""
	} else if out.LedgerPath == "" {
		path, err := history.GetLedgerPath()
		if err != nil {
			return engine.Config{}, err
		}
		out.LedgerPath = path
	}

	return engine.Config{
		InputPath:     args[0],
		Evolution:     evo,
		Output:        out,
		Filter:        v.GetString("where"),
		Verify:        v.GetBool("verify"),
		Verbose:       v.GetBool("verbose"),
		JsonLogs:      v.GetBool("json_logs"),
		OtelEndpoint:  v.GetString("otel_endpoint"),
		SkipTelemetry: v.GetBool("no_telemetry"),
	}, nil
}

func runSolve(cmd *cobra.Command, v *viper.Viper, args []string) error {
	cfg, err := loadConfig(v, args)
	if err != nil {
		return err
	}

	var outcome *engine.Outcome
	if !v.GetBool("tui") {
		cfg.Logger = engine.NewLogger(cmd.ErrOrStderr(), cfg.JsonLogs, cfg.Verbose)
		outcome, err = solve(cmd.Context(), cfg)
	} else {
		// the progress view owns the terminal
		cfg.Logger = engine.NewLogger(io.Discard, false, false)
		outcome, err = tui.Run(cmd.Context(), cmd.ErrOrStderr(), cfg.InputPath, cfg.Evolution.Iterations,
			func(ctx context.Context, progress evolution.GenerationFunc) (*engine.Outcome, error) {
				cfg.Progress = progress
				return solve(ctx, cfg)
			})
	}
	if err != nil {
		return err
	}

	return printOutcome(cmd.OutOrStdout(), cfg, outcome)
}

func solve(ctx context.Context, cfg engine.Config) (*engine.Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	eng, err := engine.New(ctx, engine.WithConfig(cfg))
	if err != nil {
		return nil, err
	}
	defer eng.Close(context.Background())

	return eng.Run(ctx)
}

func printOutcome(w io.Writer, cfg engine.Config, outcome *engine.Outcome) error {
	if err := report.WriteSummary(w, outcome.Summary(cfg.InputPath)); err != nil {
		return err
	}

	note := lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	fmt.Fprintln(w, note.Render("Generation log: "+outcome.LogPath))
	if outcome.ExportPath != "" {
		fmt.Fprintln(w, note.Render("Export: "+outcome.ExportPath))
	}
	return nil
}
