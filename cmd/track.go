package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"jiralog/session"
	"jiralog/submitter"

	"github.com/spf13/cobra"
)

var (
	trackProject   string
	trackRemind    int
	trackDBPath    string
	trackNoHistory bool
)

var trackCmd = &cobra.Command{
	Use:   "track <ISSUE>",
	Short: "Track time on an issue interactively and log it when done.",
	Long: `Start a tracking session on an issue.

While tracking, type one of:
  status   show the elapsed time
  snooze   postpone the next reminder by 5 minutes
  stop     stop tracking and log work (Enter alone does the same)
  cancel   stop tracking without logging

On stop, the tracked time rounded to the nearest minute is offered as the
default time spent. A reminder fires every tracking.reminder_minutes minutes
(0 disables reminders).`,
	Example: `
  # Track OPS-12 with the configured reminder interval
  jiralog track OPS-12

  # Remind every 15 minutes
  jiralog track OPS-12 --remind 15
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := loadJiraClient()
		if err != nil {
			return err
		}
		service, _, closeHistory, err := newSubmitService(cfg, client, trackDBPath, trackNoHistory)
		if err != nil {
			return err
		}
		defer closeHistory()

		minutes := cfg.Tracking.ReminderMinutes
		if cmd.Flags().Changed("remind") {
			minutes = trackRemind
		}

		out := &lockedWriter{w: cmd.OutOrStdout()}
		tracker := &trackRun{
			session:  session.New(),
			service:  service,
			out:      out,
			now:      time.Now,
			interval: session.MinutesInterval(minutes),
		}
		return tracker.run(withCommandContext(cmd), cmd.InOrStdin(), args[0], trackProject)
	},
}

type trackRun struct {
	session  *session.Session
	service  workLogger
	out      io.Writer
	now      func() time.Time
	interval time.Duration
}

var errTrackingCancelled = errors.New("tracking cancelled, nothing was logged")

func (t *trackRun) run(ctx context.Context, in io.Reader, issueKey, projectKey string) error {
	issueKey = strings.ToUpper(strings.TrimSpace(issueKey))
	projectKey = strings.ToUpper(strings.TrimSpace(projectKey))
	if projectKey == "" {
		projectKey = submitter.ProjectKeyFromIssue(issueKey)
	}

	if err := t.session.Start(projectKey, issueKey, t.now()); err != nil {
		return err
	}

	reminder := session.NewReminder(t.interval, func() {
		fmt.Fprintf(t.out, "\a\nReminder: tracking %s for %s. Type \"stop\" to log work or \"snooze\".\n", issueKey, t.session.ElapsedText(t.now()))
	}, logger.With().Str("component", "reminder").Logger())
	reminder.Start()
	defer reminder.Stop()

	fmt.Fprintf(t.out, "Tracking %s since %s. Commands: status, snooze, stop, cancel.\n", issueKey, t.now().Format("15:04"))

	reader := bufio.NewReader(in)
	for {
		line, err := reader.ReadString('\n')
		command := strings.ToLower(strings.TrimSpace(line))
		if err != nil && command == "" {
			if errors.Is(err, io.EOF) {
				_, _ = t.session.Stop(t.now())
				return errTrackingCancelled
			}
			return fmt.Errorf("read tracking command: %w", err)
		}

		switch command {
		case "status":
			fmt.Fprintf(t.out, "%s elapsed on %s\n", t.session.ElapsedClock(t.now()), issueKey)
		case "snooze":
			reminder.Snooze()
			fmt.Fprintf(t.out, "Next reminder in %d minutes.\n", session.SnoozeMinutes)
		case "cancel", "quit":
			_, _ = t.session.Stop(t.now())
			return errTrackingCancelled
		case "", "stop":
			reminder.Stop()
			tracked, stopErr := t.session.Stop(t.now())
			if stopErr != nil {
				return stopErr
			}
			return t.submit(ctx, reader, tracked)
		default:
			fmt.Fprintf(t.out, "Unknown command %q. Commands: status, snooze, stop, cancel.\n", command)
		}
	}
}

func (t *trackRun) submit(ctx context.Context, reader *bufio.Reader, tracked session.Tracked) error {
	fmt.Fprintf(t.out, "Tracked %s on %s.\n", session.FormatClock(tracked.Seconds()), tracked.IssueKey)

	timeSpent, err := promptWithDefault(reader, t.out, "Time spent", tracked.TimeSpent())
	if err != nil {
		return err
	}
	fmt.Fprint(t.out, "Comment (empty for default): ")
	comment, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read comment: %w", err)
	}

	return submitAndReport(ctx, t.out, t.service, submitter.Submission{
		IssueKey:   tracked.IssueKey,
		ProjectKey: tracked.ProjectKey,
		TimeSpent:  timeSpent,
		Comment:    strings.TrimSpace(comment),
		Started:    tracked.Started,
	})
}

// lockedWriter serializes reminder output with prompt output.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func init() {
	rootCmd.AddCommand(trackCmd)

	trackCmd.Flags().StringVarP(&trackProject, "project", "p", "", "Project key recorded in history (default: derived from issue key)")
	trackCmd.Flags().IntVar(&trackRemind, "remind", 0, "Reminder interval in minutes, 0 disables (default: tracking.reminder_minutes)")
	trackCmd.Flags().StringVar(&trackDBPath, "db", "", "Path to history SQLite database (default: history.db from config)")
	trackCmd.Flags().BoolVar(&trackNoHistory, "no-history", false, "Do not record the work log in local history")
}
