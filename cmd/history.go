package cmd

import (
	"fmt"
	"strings"
	"time"

	"jiralog/internal/formatter"
	"jiralog/internal/timeutil"
	"jiralog/output"
	"jiralog/storage"

	"github.com/spf13/cobra"
)

var (
	historyDBPath string
	historyFrom   string
	historyTo     string
	historyIssue  string
	historyDaily  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect, export and clean up the local history of logged work.",
	Long: `Every work log accepted by Jira is recorded in a local SQLite database.

The history is a local audit trail only. Entries are never re-submitted.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded work logs.",
	Example: `
  # Everything logged today
  jiralog history list --from today

  # One issue in a date range, summarized per day
  jiralog history list --issue OPS-12 --from 2026-03-01 --to 2026-03-31 --daily
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		if historyDaily {
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDailySummaries(output.BuildDailySummaries(entries)))
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), formatter.FormatHistory(entries))
		return nil
	},
}

// buildHistoryFilter turns day flags into an inclusive local-day range.
// "today" and "yesterday" are accepted besides YYYY-MM-DD.
func buildHistoryFilter(from, to, issueKey string, now time.Time) (storage.ListFilter, error) {
	filter := storage.ListFilter{IssueKey: strings.ToUpper(strings.TrimSpace(issueKey))}

	if strings.TrimSpace(from) != "" {
		day, err := parseDayFlag(from, now)
		if err != nil {
			return storage.ListFilter{}, fmt.Errorf("invalid --from: %w", err)
		}
		start := timeutil.StartOfDay(day)
		filter.From = &start
	}
	if strings.TrimSpace(to) != "" {
		day, err := parseDayFlag(to, now)
		if err != nil {
			return storage.ListFilter{}, fmt.Errorf("invalid --to: %w", err)
		}
		end := timeutil.EndOfDay(day)
		filter.To = &end
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return storage.ListFilter{}, fmt.Errorf("--to must not be before --from")
	}
	return filter, nil
}

func parseDayFlag(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "today":
		return now, nil
	case "yesterday":
		return now.AddDate(0, 0, -1), nil
	default:
		return timeutil.ParseDay(value)
	}
}

func addHistoryFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&historyFrom, "from", "", "First day to include (YYYY-MM-DD, today, yesterday)")
	cmd.Flags().StringVar(&historyTo, "to", "", "Last day to include (YYYY-MM-DD, today, yesterday)")
	cmd.Flags().StringVar(&historyIssue, "issue", "", "Only include this issue key")
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)

	historyCmd.PersistentFlags().StringVar(&historyDBPath, "db", "", "Path to history SQLite database (default: history.db from config)")
	addHistoryFilterFlags(historyListCmd)
	historyListCmd.Flags().BoolVar(&historyDaily, "daily", false, "Summarize per day")
}
