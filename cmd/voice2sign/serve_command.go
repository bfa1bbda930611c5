package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"voice2sign/internal/logging"
	"voice2sign/internal/preflight"
	"voice2sign/internal/web"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}
			logger := ctx.log()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			for _, result := range preflight.Failed(preflight.RunAll(runCtx, cfg)) {
				logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
					logging.String("check", result.Name),
					logging.String("detail", result.Detail),
					logging.String(logging.FieldImpact, "analyses may fail until this is fixed"),
				)
			}

			runner, cache, err := ctx.runner()
			if err != nil {
				return err
			}
			renderer, err := ctx.renderer()
			if err != nil {
				return err
			}
			loader, err := ctx.signLoader()
			if err != nil {
				return err
			}
			deps := web.Deps{Analyzer: runner, Cache: cache, Renderer: renderer, Dataset: loader}
			if ctx.history != nil {
				deps.History = ctx.history
			}
			srv, err := web.New(cfg, deps, logger)
			if err != nil {
				return err
			}
			if err := srv.Start(runCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "voice2sign listening on http://%s\n", srv.Addr())

			<-runCtx.Done()
			logger.Info("voice2sign shutting down")
			srv.Stop()
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Override server.bind (host:port)")
	return cmd
}
