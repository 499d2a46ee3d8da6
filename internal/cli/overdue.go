package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scgoddard/InventoryManagement/internal/service/reporting"
)

// NewOverdueCommand creates the overdue command.
func NewOverdueCommand(rootOpts *RootOptions) *cobra.Command {
	var notify bool

	cmd := &cobra.Command{
		Use:           "overdue",
		Short:         "List checked out items past their due date",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

			a, err := bootstrap(cmd.Context(), rootOpts)
			if err != nil {
				return f.Failure(err)
			}
			defer shutdown(cmd.Context(), a)

			items, err := a.Reports.Overdue(cmd.Context())
			if err != nil {
				return f.Failure(WrapExitError(ExitFailure, "overdue report failed", err))
			}

			if notify {
				if !a.Notifier.Enabled() {
					a.Logger.Warn("--notify ignored, whatsapp is not configured")
				} else if err := a.Notifier.NotifyOverdue(cmd.Context(), items); err != nil {
					a.Logger.Error("failed to send overdue report", zap.Error(err))
				}
			}

			if items == nil {
				items = []reporting.OverdueItem{}
			}
			return f.Success(items, func(w io.Writer) {
				fmt.Fprintln(w, reporting.FormatOverdueReport(items))
			})
		},
	}

	cmd.Flags().BoolVar(&notify, "notify", false, "also send the report to the custodian over WhatsApp")

	return cmd
}
