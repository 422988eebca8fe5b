package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/DrSkyle/knapsack-ga/pkg/version"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. KNAPSACK_SEED.
const EnvPrefix = "KNAPSACK"

// NewRootCmd builds the command tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "knapsack",
		Short: "Genetic-algorithm 0/1 knapsack solver",
		Long: `knapsack-ga - 0/1 Knapsack with a genetic algorithm

Evolve. Select. Pack.`,
		Version:       version.Current,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default $HOME/.knapsack.yaml)")
	flags.BoolP("verbose", "v", false, "Log every generation")
	flags.Bool("json-logs", false, "Emit logs as JSON")
	flags.String("otel-endpoint", "", "OTLP HTTP endpoint for traces")
	flags.Bool("no-telemetry", false, "Disable OpenTelemetry setup")
	flags.String("ledger", "", "Run ledger, a path or s3://bucket/key (default $HOME/.knapsack/ledger.jsonl)")
	bindFlags(v, flags, map[string]string{
		"verbose":       "verbose",
		"json-logs":     "json_logs",
		"otel-endpoint": "otel_endpoint",
		"no-telemetry":  "no_telemetry",
		"ledger":        "ledger",
	})

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		renderHelp(cmd.OutOrStdout(), cmd)
	})

	rootCmd.AddCommand(newRunCmd(v))
	rootCmd.AddCommand(newHistoryCmd(v))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// bindFlags maps flag names onto viper keys.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if f := flags.Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.SetConfigFile(filepath.Join(home, ".knapsack.yaml"))
			v.SetConfigType("yaml")
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	// The home config is optional; an explicit one is not.
	if err := v.ReadInConfig(); err != nil && cfgFile != "" {
		return fmt.Errorf("failed to read config %s: %w", cfgFile, err)
	}
	return nil
}

func renderHelp(w io.Writer, cmd *cobra.Command) {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00FF99")).
		MarginBottom(1)

	flagStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA"))

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("KNAPSACK-GA %s", version.Current)))
	fmt.Fprintln(w, "0/1 knapsack solver driven by a genetic algorithm.")

	fmt.Fprintln(w, titleStyle.Render("USAGE"))
	fmt.Fprintf(w, "  %s\n\n", cmd.UseLine())

	if cmds := cmd.Commands(); len(cmds) > 0 {
		fmt.Fprintln(w, titleStyle.Render("COMMANDS"))
		for _, c := range cmds {
			if c.IsAvailableCommand() {
				fmt.Fprintf(w, "  %-12s %s\n", c.Name(), c.Short)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, titleStyle.Render("EXAMPLES"))
	fmt.Fprintln(w, "  knapsack run instance.txt 100 50 0.1 0.7 0.05              # Plain run")
	fmt.Fprintln(w, "  knapsack run instance.hcl 500 80 0.1 0.7 0.02 --tui        # Live progress")
	fmt.Fprintln(w, "  knapsack run instance.txt 100 50 0.1 0.7 0.05 --export r.xlsx --verify")
	fmt.Fprintln(w)

	fmt.Fprintln(w, titleStyle.Render("FLAGS"))
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		output := fmt.Sprintf("  --%-15s %s", f.Name, f.Usage)
		if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" {
			output += fmt.Sprintf(" (default %s)", f.DefValue)
		}
		fmt.Fprintln(w, flagStyle.Render(output))
	})
	fmt.Fprintln(w)
}
