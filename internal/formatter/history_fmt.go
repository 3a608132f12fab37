package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"jiralog/duration"
	"jiralog/output"
	"jiralog/worklog"
)

func FormatHistory(entries []worklog.Entry) string {
	if len(entries) == 0 {
		return Dim("No work logs recorded.") + "\n"
	}

	total := 0
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		total += entry.TimeSpentSeconds
		rows = append(rows, []string{
			strconv.FormatInt(entry.ID, 10),
			entry.Started.In(time.Local).Format("2006-01-02 15:04"),
			Bold(entry.IssueKey),
			entry.TimeSpent,
			dash(entry.RemoteID),
			truncate(entry.Comment, 40),
		})
	}

	table := RenderTable([]string{"ID", "STARTED", "ISSUE", "TIME", "JIRA ID", "COMMENT"}, rows)
	return Header("Logged work") + "\n" + table + fmt.Sprintf("Total: %s\n", Bold(duration.Format(total)))
}

func FormatDailySummaries(summaries []output.DailySummary) string {
	if len(summaries) == 0 {
		return Dim("No work logs recorded.") + "\n"
	}

	rows := make([][]string, 0, len(summaries))
	for _, summary := range summaries {
		issues := make([]string, 0, len(summary.Issues))
		for _, issue := range summary.Issues {
			issues = append(issues, issue.String())
		}
		rows = append(rows, []string{
			summary.Date,
			summary.StartDateTime.In(time.Local).Format("15:04") + "-" + summary.EndDateTime.In(time.Local).Format("15:04"),
			Bold(duration.Format(summary.LoggedSeconds)),
			strconv.Itoa(summary.WorklogCount),
			strings.Join(issues, ", "),
		})
	}
	return Header("Daily summary") + "\n" + RenderTable([]string{"DATE", "SPAN", "LOGGED", "LOGS", "ISSUES"}, rows)
}

func truncate(value string, limit int) string {
	runes := []rune(strings.TrimSpace(value))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit-1]) + "…"
}
