package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"splicer/internal/logging"
	"splicer/internal/preflight"
	"splicer/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and websocket progress stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind != "" {
				cfg.Paths.APIBind = bind
			}
			logger, err := ctx.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			for _, failed := range preflight.Failed(preflight.RunAll(cmd.Context(), cfg)) {
				logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
					logging.String("check", failed.Name),
					logging.String("detail", failed.Detail),
				)
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			eng := newEngine(cfg, logger)
			defer eng.Close()
			manager := newManager(cfg, eng, logger)

			srv, err := server.New(cfg, manager, server.WithLogger(logger))
			if err != nil {
				return err
			}
			if err := srv.Start(runCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", srv.Addr())

			<-runCtx.Done()
			logger.Info("splicer shutting down")
			srv.Stop()
			if err := manager.Reset(context.Background()); err != nil {
				logger.Warn("workspace cleanup failed", logging.Error(err))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Override the configured api_bind address")
	return cmd
}
