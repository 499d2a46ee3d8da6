package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scgoddard/InventoryManagement/internal/scheduler"
	"github.com/scgoddard/InventoryManagement/internal/server/handlers"
	"github.com/scgoddard/InventoryManagement/internal/server/router"
	"github.com/scgoddard/InventoryManagement/pkg/logger"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port string
	var noScheduler bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and run scheduled reconciliation",
		Long: `Starts the HTTP API and, unless --no-scheduler is given, reconciles on
RECONCILE_CRON_SCHEDULE. Overdue items are reported to the custodian after
each scheduled pass when WhatsApp is configured.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.ErrOrStderr()}

			a, err := bootstrap(cmd.Context(), rootOpts)
			if err != nil {
				return f.Failure(err)
			}
			defer shutdown(context.Background(), a)

			if port == "" {
				port = a.Config.Server.Port
			}

			if !noScheduler {
				sched := scheduler.NewScheduler(a.Config.Reconcile, a.Location, a.Reconciler, a.Reports, a.Notifier, logger.Named(a.Logger, "scheduler"))
				if err := sched.Start(); err != nil {
					return f.Failure(WrapExitError(ExitCommandError, "invalid schedule", err))
				}
				defer sched.Stop()
			}

			handler := handlers.NewInventoryHandler(a.Reconciler, a.Reports, logger.Named(a.Logger, "handlers.inventory"))
			engine := router.New(handler, logger.Named(a.Logger, "router"))

			srv := &http.Server{
				Addr:         ":" + port,
				Handler:      engine,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 5 * time.Minute,
				IdleTimeout:  60 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			serveErr := make(chan error, 1)
			go func() {
				a.Logger.Info("server starting", zap.String("port", port))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			select {
			case err := <-serveErr:
				if err != nil {
					return f.Failure(WrapExitError(ExitCommandError, "http server crashed", err))
				}
			case <-ctx.Done():
				a.Logger.Info("shutdown signal received")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.Logger.Error("graceful shutdown failed", zap.Error(err))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (defaults to APP_PORT)")
	cmd.Flags().BoolVar(&noScheduler, "no-scheduler", false, "serve the API without scheduled reconciliation")

	return cmd
}
