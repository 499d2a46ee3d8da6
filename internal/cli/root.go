package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scgoddard/InventoryManagement/internal/app"
	"github.com/scgoddard/InventoryManagement/internal/config"
	"github.com/scgoddard/InventoryManagement/pkg/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile string
	Format  string // "json" | "text"

	appOpts []app.Option
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the inventory CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Equipment inventory reconciler",
		Long: `Reconciles check-out and check-in form submissions against the gear
inventory, keeps the checkout log and refreshes the dashboard metrics.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "load environment variables from this file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewReconcileCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewAvailabilityCommand(opts))
	cmd.AddCommand(NewOverdueCommand(opts))

	return cmd
}

// bootstrap loads configuration, applies command-line overrides and wires the
// application. The caller closes it.
func bootstrap(ctx context.Context, opts *RootOptions, overrides ...func(*config.Config)) (*app.App, error) {
	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	for _, override := range overrides {
		override(cfg)
	}

	base, err := logger.New(cfg.Server.LogLevel)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	zap.ReplaceGlobals(base)

	a, err := app.New(ctx, cfg, base, opts.appOpts...)
	if err != nil {
		_ = base.Sync()
		return nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}
	return a, nil
}

func shutdown(ctx context.Context, a *app.App) {
	if err := a.Close(ctx); err != nil {
		a.Logger.Error("failed to close connections", zap.Error(err))
	}
	_ = a.Logger.Sync()
}
