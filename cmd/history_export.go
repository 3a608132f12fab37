package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"jiralog/output"

	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportMode   string
	exportOutput string
)

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded work logs to CSV/Excel",
	Long: `Export recorded work logs from the local history.

Modes:
- raw: export each recorded work log
- daily: export per-day aggregates (first start, last end, logged time, breaks, per-issue totals)

Output format can be selected explicitly via --format or inferred from --output extension.`,
	Example: `
  # Export raw rows to CSV
  jiralog history export --mode raw --output ./worklogs.csv

  # Export March as a daily summary to Excel
  jiralog history export --mode daily --from 2026-03-01 --to 2026-03-31 --output ./march.xlsx

  # Force Excel format independent of extension
  jiralog history export --mode daily --format excel --output ./daily-summary.out
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := exportFormat
		if strings.TrimSpace(format) == "" {
			format = detectExportFormat(exportOutput)
		}

		filter, err := buildHistoryFilter(historyFrom, historyTo, historyIssue, time.Now())
		if err != nil {
			return err
		}

		store, _, err := openHistory(historyDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.ListWorklogs(filter)
		if err != nil {
			return err
		}

		mode := strings.TrimSpace(strings.ToLower(exportMode))
		switch mode {
		case "", "raw":
			writer, writerErr := output.WriterForFormat(format)
			if writerErr != nil {
				return writerErr
			}
			if err := writer.Write(exportOutput, entries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Export completed. Rows: %d, Mode: raw, Format: %s, File: %s\n", len(entries), format, exportOutput)
		case "daily":
			summaries := output.BuildDailySummaries(entries)
			if err := output.WriteDailySummaries(exportOutput, format, summaries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Export completed. Days: %d, Mode: daily, Format: %s, File: %s\n", len(summaries), format, exportOutput)
		default:
			return fmt.Errorf("unsupported export mode: %s (supported: raw, daily)", exportMode)
		}
		return nil
	},
}

func detectExportFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "csv":
		return "csv"
	case "xlsx", "xlsm", "xls":
		return "excel"
	default:
		return "csv"
	}
}

func init() {
	historyCmd.AddCommand(historyExportCmd)

	addHistoryFilterFlags(historyExportCmd)
	historyExportCmd.Flags().StringVar(&exportMode, "mode", "raw", "Export mode: raw|daily")
	historyExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	historyExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")

	_ = historyExportCmd.MarkFlagRequired("output")
}
