package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/DrSkyle/knapsack-ga/pkg/engine"
	"github.com/DrSkyle/knapsack-ga/pkg/engine/history"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newHistoryCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs from the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, _ := cmd.Flags().GetInt("limit")

			location := v.GetString("ledger")
			if location == "" {
				path, err := history.GetLedgerPath()
				if err != nil {
					return err
				}
				location = path
			}

			backend, err := engine.OpenLedger(cmd.Context(), location)
			if err != nil {
				return err
			}
			records, err := history.NewClient(backend).LoadWindow(cmd.Context(), n)
			if err != nil {
				return fmt.Errorf("failed to load ledger: %w", err)
			}

			printHistory(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.Flags().IntP("limit", "n", 10, "Number of runs to show (0 for all)")

	return cmd
}

func printHistory(w io.Writer, records []history.RunRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF99"))
	fmt.Fprintln(w, header.Render(fmt.Sprintf("%-8s  %-19s  %-24s  %6s  %6s  %8s  %8s", "RUN", "TIME", "INPUT", "ITEMS", "BEST", "OPTIMUM", "MS")))

	for _, r := range records {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		optimum := "-"
		if r.Optimum != nil {
			optimum = fmt.Sprintf("%d", *r.Optimum)
		}
		fmt.Fprintf(w, "%-8s  %-19s  %-24s  %6d  %6d  %8s  %8d\n",
			id,
			r.Time().Format(time.DateTime),
			truncate(r.Input, 24),
			r.Items,
			r.BestValue,
			optimum,
			r.ElapsedMS,
		)
	}
}

// truncate keeps the last n-1 runes of s behind an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return "…" + string(r[len(r)-n+1:])
}
