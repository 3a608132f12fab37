package submitter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jiralog/duration"
	"jiralog/jira"
	"jiralog/worklog"

	"github.com/rs/zerolog"
)

// WorklogClient is the part of jira.Client the service needs.
type WorklogClient interface {
	LogWork(ctx context.Context, req jira.WorkLogRequest) (jira.CreatedWorklog, error)
}

// HistoryStore records accepted work logs.
type HistoryStore interface {
	InsertWorklog(entry worklog.Entry) (int64, error)
}

// Submission is a work log as entered by the user.
type Submission struct {
	IssueKey   string
	ProjectKey string
	TimeSpent  string
	Comment    string
	Started    time.Time
}

type Result struct {
	Worklog  jira.CreatedWorklog
	Entry    worklog.Entry
	Recorded bool
}

type Service struct {
	Client         WorklogClient
	Store          HistoryStore
	Log            zerolog.Logger
	DefaultComment string
	Now            func() time.Time
}

// LogWork validates and normalizes the submission, sends it to Jira and
// records the accepted work log in history. A history failure is logged and
// reported through Result.Recorded; the remote write is not undone.
func (s *Service) LogWork(ctx context.Context, sub Submission) (Result, error) {
	issueKey := strings.ToUpper(strings.TrimSpace(sub.IssueKey))
	if issueKey == "" {
		return Result{}, fmt.Errorf("log work: issue key is required")
	}

	timeSpent, err := duration.Normalize(sub.TimeSpent)
	if err != nil {
		return Result{}, fmt.Errorf("log work on %s: %w", issueKey, err)
	}

	comment := sub.Comment
	if strings.TrimSpace(comment) == "" {
		comment = s.DefaultComment
	}

	req := jira.WorkLogRequest{
		IssueKey:  issueKey,
		TimeSpent: timeSpent,
		Comment:   comment,
	}
	if !sub.Started.IsZero() {
		started := sub.Started
		req.Started = &started
	}

	created, err := s.Client.LogWork(ctx, req)
	if err != nil {
		return Result{}, err
	}

	entry := s.entryFor(sub, issueKey, timeSpent, comment, created)
	result := Result{Worklog: created, Entry: entry}
	if s.Store == nil {
		return result, nil
	}

	id, err := s.Store.InsertWorklog(entry)
	if err != nil {
		s.Log.Warn().Err(err).Str("issue", issueKey).Str("worklog", created.ID).Msg("record work log in history")
		return result, nil
	}
	result.Entry.ID = id
	result.Recorded = true
	return result, nil
}

func (s *Service) entryFor(sub Submission, issueKey, timeSpent, comment string, created jira.CreatedWorklog) worklog.Entry {
	now := s.now()

	started := sub.Started
	if started.IsZero() {
		started = now
		if parsed, err := time.Parse(jira.StartedLayout, created.Started); err == nil {
			started = parsed
		}
	}

	seconds := created.TimeSpentSeconds
	if seconds <= 0 {
		// timeSpent was validated before submission.
		seconds, _ = duration.Parse(timeSpent)
	}
	if created.TimeSpent != "" {
		timeSpent = created.TimeSpent
	}

	projectKey := strings.ToUpper(strings.TrimSpace(sub.ProjectKey))
	if projectKey == "" {
		projectKey = ProjectKeyFromIssue(issueKey)
	}

	return worklog.Entry{
		IssueKey:         issueKey,
		ProjectKey:       projectKey,
		Started:          started,
		TimeSpent:        timeSpent,
		TimeSpentSeconds: seconds,
		Comment:          comment,
		RemoteID:         created.ID,
		LoggedAt:         now,
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ProjectKeyFromIssue returns the project part of an issue key such as
// "OPS-12", or "" when the key has no project prefix.
func ProjectKeyFromIssue(issueKey string) string {
	index := strings.LastIndex(issueKey, "-")
	if index <= 0 {
		return ""
	}
	return strings.ToUpper(issueKey[:index])
}
