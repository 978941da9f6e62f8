package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"timesheet/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var outDir string
	var noBackfill bool

	cmd := &cobra.Command{
		Use:   "watch [DIR]",
		Short: "Analyze workbooks dropped into a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			watchCfg := cfg.Watch
			if len(args) == 1 {
				watchCfg.Dir = args[0]
				if outDir == "" {
					watchCfg.OutputDir = ""
				}
			}
			if outDir != "" {
				watchCfg.OutputDir = outDir
			}
			if noBackfill {
				watchCfg.Backfill = false
			}

			coordinator, err := ctx.newCoordinator(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := watch.New(watchCfg, coordinator, ctx.logger)
			w.OnResult = func(r watch.Result) {
				if r.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.Path, r.Err)
					return
				}
				fmt.Fprintf(out, "%s: %d analyzed, %d skipped -> %s\n",
					r.Path, r.Report.AnalyzedSheets, r.Report.SkippedSheets, r.ReportPath)
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", watchCfg.Dir)
			return w.Run(runCtx)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory for reports and feedback (default DIR/reports)")
	cmd.Flags().BoolVar(&noBackfill, "no-backfill", false, "Skip workbooks already present at start")
	return cmd
}
