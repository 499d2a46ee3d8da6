package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/scgoddard/InventoryManagement/internal/config"
	"github.com/scgoddard/InventoryManagement/internal/service/reconcile"
)

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Run one reconciliation pass",
		Long: `Loads the form responses, gear inventory, checkout log and dashboard,
applies every check-out and check-in, and commits the result.
Nothing is written when any step fails.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

			var overrides []func(*config.Config)
			if strict {
				overrides = append(overrides, func(cfg *config.Config) { cfg.Reconcile.Strict = true })
			}

			a, err := bootstrap(cmd.Context(), rootOpts, overrides...)
			if err != nil {
				return f.Failure(err)
			}
			defer shutdown(cmd.Context(), a)

			report, err := a.Reconciler.Run(cmd.Context())
			if err != nil {
				return f.Failure(WrapExitError(ExitFailure, "reconciliation failed", err))
			}
			return f.Success(report, func(w io.Writer) { renderReport(w, report) })
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail the pass on unknown serials or ambiguous check-ins")

	return cmd
}

func renderReport(w io.Writer, report *reconcile.RunReport) {
	fmt.Fprintf(w, "run %s: %d events (%d already reconciled)\n", report.RunID, report.Events, report.Replayed)

	outcomes := make([]string, 0, len(report.Outcomes))
	for o := range report.Outcomes {
		outcomes = append(outcomes, string(o))
	}
	sort.Strings(outcomes)
	for _, o := range outcomes {
		fmt.Fprintf(w, "  %-20s %d\n", o, report.Outcomes[reconcile.Outcome(o)])
	}

	if len(report.MarkedOverdue) > 0 {
		fmt.Fprintf(w, "newly overdue: %v\n", report.MarkedOverdue)
	}
	fmt.Fprintf(w, "checkout log: %d entries\n", report.LedgerSize)
}
