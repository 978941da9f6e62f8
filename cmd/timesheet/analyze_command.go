package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"timesheet/internal/model"
	"timesheet/internal/service/excel"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var format string
	var exportPath string
	var feedbackPath string
	var feedbackSheet string
	var scanLimit int
	var strategies []string

	cmd := &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Analyze timesheet workbooks and report utilization",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			effective := *cfg
			if cmd.Flags().Changed("scan-limit") {
				effective.Analysis.ScanLimit = scanLimit
			}
			if cmd.Flags().Changed("strategies") {
				effective.Analysis.Strategies = strategies
			}
			if err := effective.Validate(); err != nil {
				return err
			}

			outFormat, err := resolveFormat(format, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			coordinator, err := ctx.newCoordinator(&effective)
			if err != nil {
				return err
			}

			multi := len(args) > 1
			var reports []*model.WorkbookReport
			var failed []string
			for _, path := range args {
				report, err := coordinator.AnalyzeFile(cmd.Context(), path)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					failed = append(failed, path)
					continue
				}
				reports = append(reports, report)

				if exportPath != "" {
					target := perFilePath(exportPath, path, multi)
					if err := excel.NewExporter().SaveAs(report, target); err != nil {
						return fmt.Errorf("export %s: %w", path, err)
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s\n", target)
				}
				if feedbackPath != "" {
					text, err := coordinator.Feedback(report, feedbackSheet)
					if err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: feedback: %v\n", path, err)
						continue
					}
					target := perFilePath(feedbackPath, path, multi)
					if err := os.WriteFile(target, []byte(text), 0o644); err != nil {
						return fmt.Errorf("write feedback: %w", err)
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "Wrote feedback %s\n", target)
				}
			}

			if len(reports) > 0 {
				if err := writeReports(cmd, outFormat, reports); err != nil {
					return err
				}
			}
			if len(failed) > 0 {
				return errors.New("unreadable workbook(s): " + strings.Join(failed, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: table, json or yaml (default table on a terminal, json otherwise)")
	cmd.Flags().StringVar(&exportPath, "export", "", "Write the analysis to an .xlsx file")
	cmd.Flags().StringVar(&feedbackPath, "feedback", "", "Write the feedback text to a file")
	cmd.Flags().StringVar(&feedbackSheet, "sheet", "", "Sheet used for feedback (default: all analyzed sheets combined)")
	cmd.Flags().IntVar(&scanLimit, "scan-limit", 0, "Rows scanned for the header")
	cmd.Flags().StringSliceVar(&strategies, "strategies", nil, "Column matching strategies in order (substring,fuzzy,semantic)")
	return cmd
}

// perFilePath 多个输入时在目标文件名中插入源文件名
func perFilePath(target, source string, multi bool) string {
	if !multi {
		return target
	}
	ext := filepath.Ext(target)
	src := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return strings.TrimSuffix(target, ext) + "-" + src + ext
}
