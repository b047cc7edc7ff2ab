package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"ledger/internal/cli"
	"ledger/internal/config"
	apphttp "ledger/internal/http"
	"ledger/internal/log"
)

const (
	shutdownTimeout    = 30 * time.Second
	cacheJanitorPeriod = 5 * time.Minute
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web UI",
		Long:  `Start the web UI: an entry form, the transaction list and the summary dashboard.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, cleanup, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			// Fail on an unreadable store now rather than on the first request.
			if err := session.Load(cmd.Context()); err != nil {
				return err
			}

			srv := apphttp.NewServer(":"+a.cfg.Port, session, apphttp.WithLogger(a.logger))

			ctx, done := cli.GracefulShutdown(a.logger, shutdownTimeout, func(ctx context.Context) {
				if err := srv.Shutdown(ctx); err != nil {
					a.logger.Error("Server shutdown error", log.FieldError, err)
				}
			})
			go srv.RunCacheJanitor(ctx, cacheJanitorPeriod)

			a.logger.Info("Starting ledger server",
				"port", a.cfg.Port,
				log.FieldBackend, a.cfg.DataBackend)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve on port %s: %w", a.cfg.Port, err)
			}

			<-done
			a.logger.Info("Server stopped gracefully")
			return nil
		},
	}

	cmd.Flags().String("port", "", "HTTP port (default 8080)")
	_ = a.v.BindPFlag(config.KeyPort, cmd.Flags().Lookup("port"))
	return cmd
}
