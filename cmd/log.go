package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"jiralog/config"
	"jiralog/duration"
	"jiralog/internal/classify"
	"jiralog/jira"
	"jiralog/storage"
	"jiralog/submitter"
	"jiralog/worklog"

	"github.com/spf13/cobra"
)

var (
	logComment   string
	logStarted   string
	logProject   string
	logDBPath    string
	logNoHistory bool
	logForce     bool
)

// workLogger is the part of submitter.Service the commands use.
type workLogger interface {
	LogWork(ctx context.Context, sub submitter.Submission) (submitter.Result, error)
}

var logCmd = &cobra.Command{
	Use:   "log <ISSUE> <TIME>",
	Short: "Log work on an issue.",
	Long: `Submit a work-log entry to Jira and record it in the local history.

TIME uses Jira notation ("1h 30m", "2h", "45m", "1.5h"). A bare number is read
as hours, so "2" logs 2h. "0m", "0h" and "0" log the one-minute minimum.
Without --comment the configured tracking.default_comment is sent.

With --started the entry is compared with local history first: an identical
entry is refused unless --force is given, and overlapping entries are listed
as warnings.`,
	Example: `
  # Log 1h 30m now
  jiralog log OPS-12 "1h 30m"

  # Log 45 minutes that started this morning, with a comment
  jiralog log OPS-12 45m --started "2026-03-05 09:15" --comment "Standup notes"
`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var started time.Time
		if strings.TrimSpace(logStarted) != "" {
			parsed, err := parseStartedFlag(logStarted)
			if err != nil {
				return err
			}
			started = parsed
		}

		cfg, client, err := loadJiraClient()
		if err != nil {
			return err
		}
		service, store, closeHistory, err := newSubmitService(cfg, client, logDBPath, logNoHistory)
		if err != nil {
			return err
		}
		defer closeHistory()

		sub := submitter.Submission{
			IssueKey:   args[0],
			ProjectKey: logProject,
			TimeSpent:  args[1],
			Comment:    logComment,
			Started:    started,
		}
		if store != nil && !started.IsZero() {
			if err := checkAgainstHistory(cmd.OutOrStdout(), store, sub, logForce); err != nil {
				return err
			}
		}
		return submitAndReport(withCommandContext(cmd), cmd.OutOrStdout(), service, sub)
	},
}

// newSubmitService returns a nil store when history is disabled or cannot be opened.
func newSubmitService(cfg *config.Config, client *jira.HTTPClient, dbPath string, noHistory bool) (*submitter.Service, *storage.SQLiteStore, func(), error) {
	service := &submitter.Service{
		Client:         client,
		Log:            logger.With().Str("component", "submitter").Logger(),
		DefaultComment: cfg.Tracking.DefaultComment,
	}
	if noHistory {
		return service, nil, func() {}, nil
	}

	store, path, err := openHistory(dbPath)
	if err != nil {
		logger.Warn().Err(err).Str("db", path).Msg("history unavailable, work logs will not be recorded")
		return service, nil, func() {}, nil
	}
	service.Store = store
	return service, store, func() { _ = store.Close() }, nil
}

type historyLister interface {
	ListWorklogs(filter storage.ListFilter) ([]worklog.Entry, error)
}

// checkAgainstHistory refuses exact duplicates of recorded work logs unless
// force is set and prints a warning for overlapping ones.
func checkAgainstHistory(out io.Writer, history historyLister, sub submitter.Submission, force bool) error {
	seconds, err := duration.Parse(sub.TimeSpent)
	if err != nil {
		// Reported by the submission itself.
		return nil
	}

	// Earlier entries may run into the candidate span, so only the end bounds the lookup.
	end := sub.Started.Add(time.Duration(seconds) * time.Second)
	existing, err := history.ListWorklogs(storage.ListFilter{To: &end})
	if err != nil {
		logger.Warn().Err(err).Msg("history lookup failed, skipping overlap check")
		return nil
	}

	candidate := worklog.Entry{
		IssueKey:         strings.ToUpper(strings.TrimSpace(sub.IssueKey)),
		Started:          sub.Started,
		TimeSpentSeconds: seconds,
	}
	result := classify.Classify(candidate, existing)
	switch result.Outcome {
	case classify.OutcomeDuplicate:
		if !force {
			return fmt.Errorf("%s %s at %s is already recorded as history entry %d; pass --force to log it again",
				candidate.IssueKey, sub.TimeSpent, sub.Started.Format("2006-01-02 15:04"), result.Conflicts[0].ID)
		}
	case classify.OutcomeOverlap:
		for _, conflict := range result.Conflicts {
			fmt.Fprintf(out, "Warning: overlaps history entry %d (%s %s-%s)\n",
				conflict.ID, conflict.IssueKey,
				conflict.Started.In(sub.Started.Location()).Format("15:04"),
				conflict.End().In(sub.Started.Location()).Format("15:04"))
		}
	}
	return nil
}

func submitAndReport(ctx context.Context, out io.Writer, service workLogger, sub submitter.Submission) error {
	result, err := service.LogWork(ctx, sub)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Logged %s on %s", result.Entry.TimeSpent, result.Entry.IssueKey)
	if result.Worklog.ID != "" {
		fmt.Fprintf(out, " (worklog %s)", result.Worklog.ID)
	}
	fmt.Fprintln(out)
	if !result.Recorded {
		fmt.Fprintln(out, "Note: the work log was not recorded in local history.")
	}
	return nil
}

var startedLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"15:04",
}

// parseStartedFlag accepts RFC3339 or local "YYYY-MM-DD HH:MM"; a bare
// "HH:MM" means today.
func parseStartedFlag(value string) (time.Time, error) {
	return parseStartedAt(value, time.Now())
}

func parseStartedAt(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range startedLayouts {
		var (
			parsed time.Time
			err    error
		)
		if layout == time.RFC3339 {
			parsed, err = time.Parse(layout, value)
		} else {
			parsed, err = time.ParseInLocation(layout, value, now.Location())
		}
		if err != nil {
			continue
		}
		if layout == "15:04" {
			year, month, day := now.Date()
			parsed = time.Date(year, month, day, parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
		}
		return parsed, nil
	}
	return time.Time{}, fmt.Errorf("invalid --started value %q (use RFC3339, \"YYYY-MM-DD HH:MM\" or \"HH:MM\")", value)
}

func init() {
	rootCmd.AddCommand(logCmd)

	logCmd.Flags().StringVarP(&logComment, "comment", "c", "", "Work-log comment (default: tracking.default_comment)")
	logCmd.Flags().StringVar(&logStarted, "started", "", "Start of the work (RFC3339, \"YYYY-MM-DD HH:MM\" or \"HH:MM\")")
	logCmd.Flags().StringVarP(&logProject, "project", "p", "", "Project key recorded in history (default: derived from issue key)")
	logCmd.Flags().StringVar(&logDBPath, "db", "", "Path to history SQLite database (default: history.db from config)")
	logCmd.Flags().BoolVar(&logNoHistory, "no-history", false, "Do not record the work log in local history")
	logCmd.Flags().BoolVar(&logForce, "force", false, "Log even when an identical entry is already in history")
}
