package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/scgoddard/InventoryManagement/internal/service/reporting"
)

// NewAvailabilityCommand creates the availability command.
func NewAvailabilityCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "availability <serial>",
		Short:         "Check whether an item can be checked out",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

			a, err := bootstrap(cmd.Context(), rootOpts)
			if err != nil {
				return f.Failure(err)
			}
			defer shutdown(cmd.Context(), a)

			result, err := a.Reports.Availability(cmd.Context(), args[0])
			if err != nil {
				return f.Failure(WrapExitError(ExitFailure, "availability check failed", err))
			}
			return f.Success(result, func(w io.Writer) { renderAvailability(w, result) })
		},
	}

	return cmd
}

func renderAvailability(w io.Writer, a reporting.Availability) {
	fmt.Fprintf(w, "%s: %s\n", a.Serial, a.Message)
	if a.EarliestDate != nil {
		fmt.Fprintf(w, "earliest available: %s\n", a.EarliestDate.Format("2006-01-02"))
	}
}
