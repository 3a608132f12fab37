package output

import (
	"fmt"
	"jiralog/duration"
	"jiralog/worklog"
	"math"
	"sort"
	"strings"
	"time"
)

// DailySummary aggregates the work logged on one local calendar day.
type DailySummary struct {
	Date          string
	StartDateTime time.Time
	EndDateTime   time.Time
	LoggedSeconds int
	LoggedHours   float64
	BreakHours    float64
	WorklogCount  int
	Issues        []IssueTotal
}

// IssueTotal is the time logged against one issue within a day.
type IssueTotal struct {
	IssueKey string
	Seconds  int
}

func (t IssueTotal) String() string {
	return t.IssueKey + " " + duration.Format(t.Seconds)
}

type interval struct {
	start time.Time
	end   time.Time
}

func BuildDailySummaries(entries []worklog.Entry) []DailySummary {
	if len(entries) == 0 {
		return []DailySummary{}
	}

	byDay := make(map[string][]worklog.Entry)
	for _, entry := range entries {
		day := entry.Started.In(time.Local).Format("2006-01-02")
		byDay[day] = append(byDay[day], entry)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	summaries := make([]DailySummary, 0, len(days))
	for _, day := range days {
		summaries = append(summaries, summarizeDay(day, byDay[day]))
	}

	return summaries
}

func summarizeDay(day string, entries []worklog.Entry) DailySummary {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Started.Equal(entries[j].Started) {
			return entries[i].End().Before(entries[j].End())
		}
		return entries[i].Started.Before(entries[j].Started)
	})

	start := entries[0].Started
	end := start
	loggedSeconds := 0
	perIssue := make(map[string]int)
	intervals := make([]interval, 0, len(entries))

	for _, entry := range entries {
		loggedSeconds += entry.TimeSpentSeconds
		perIssue[entry.IssueKey] += entry.TimeSpentSeconds
		if entry.End().After(end) {
			end = entry.End()
		}
		intervals = append(intervals, interval{start: entry.Started, end: entry.End()})
	}

	breakDuration := end.Sub(start) - mergedCoverage(intervals)
	if breakDuration < 0 {
		breakDuration = 0
	}

	issues := make([]IssueTotal, 0, len(perIssue))
	for key, seconds := range perIssue {
		issues = append(issues, IssueTotal{IssueKey: key, Seconds: seconds})
	}
	sort.Slice(issues, func(i, j int) bool {
		return issues[i].IssueKey < issues[j].IssueKey
	})

	return DailySummary{
		Date:          day,
		StartDateTime: start,
		EndDateTime:   end,
		LoggedSeconds: loggedSeconds,
		LoggedHours:   roundHours(float64(loggedSeconds) / 3600.0),
		BreakHours:    roundHours(breakDuration.Hours()),
		WorklogCount:  len(entries),
		Issues:        issues,
	}
}

// mergedCoverage expects intervals sorted by start.
func mergedCoverage(intervals []interval) time.Duration {
	if len(intervals) == 0 {
		return 0
	}

	currentStart := intervals[0].start
	currentEnd := intervals[0].end
	covered := time.Duration(0)

	for _, candidate := range intervals[1:] {
		if candidate.start.After(currentEnd) {
			covered += currentEnd.Sub(currentStart)
			currentStart = candidate.start
			currentEnd = candidate.end
			continue
		}

		if candidate.end.After(currentEnd) {
			currentEnd = candidate.end
		}
	}

	covered += currentEnd.Sub(currentStart)
	return covered
}

func roundHours(value float64) float64 {
	return math.Round(value*100) / 100
}

func WriteDailySummaries(path, format string, summaries []DailySummary) error {
	switch normalizeFormat(format) {
	case "csv":
		return writeDailySummariesCSV(path, summaries)
	case "excel", "xlsx":
		return writeDailySummariesExcel(path, summaries)
	default:
		return fmt.Errorf("unsupported output format for daily summaries: %s", format)
	}
}

var summaryHeaders = []string{"Date", "StartTime", "EndTime", "Logged", "LoggedHours", "BreakHours", "WorklogCount", "Issues"}

func summaryRow(summary DailySummary) []string {
	issues := make([]string, 0, len(summary.Issues))
	for _, issue := range summary.Issues {
		issues = append(issues, issue.String())
	}

	return []string{
		summary.Date,
		summary.StartDateTime.In(time.Local).Format("15:04"),
		summary.EndDateTime.In(time.Local).Format("15:04"),
		duration.Format(summary.LoggedSeconds),
		fmt.Sprintf("%.2f", summary.LoggedHours),
		fmt.Sprintf("%.2f", summary.BreakHours),
		fmt.Sprintf("%d", summary.WorklogCount),
		strings.Join(issues, "; "),
	}
}
