package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"timesheet/internal/server"
	"timesheet/internal/util"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var port int
	var openBrowser bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP analysis API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			// config.toml 显式配置的端口优先
			if port > 0 && !ctx.configInfo.PortSpecified {
				cfg.Server.Port = port
			}

			coordinator, err := ctx.newCoordinator(cfg)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.NewServer(cfg, coordinator, ctx.logger)
			addr := fmt.Sprintf(":%d", cfg.Server.Port)
			url := fmt.Sprintf("http://localhost:%d/api/status", cfg.Server.Port)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Listening on %s (strategies: %v)\n", addr, coordinator.Strategies())
			if openBrowser {
				if err := util.NewBrowserOpener(ctx.logger).Open(url); err != nil {
					fmt.Fprintf(out, "Could not open a browser, visit %s\n", url)
				}
			}
			fmt.Fprintln(out, "Press Ctrl+C to stop")

			return srv.Run(runCtx, addr)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (ignored when config.toml sets one)")
	cmd.Flags().BoolVar(&openBrowser, "open", false, "Open the status page in a browser")
	return cmd
}

