package formatter

import (
	"strings"
	"testing"
	"time"

	"jiralog/jira"
	"jiralog/output"
	"jiralog/worklog"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable([]string{"KEY", "NAME"}, [][]string{
		{"OPS", "Operations"},
		{"WEBSITE", "Web"},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, lipgloss.Width(lines[2]), lipgloss.Width("OPS      Operations"))
	assert.Contains(t, lines[3], "WEBSITE  Web")
}

func TestRenderTable_NoHeaders(t *testing.T) {
	assert.Equal(t, "", RenderTable(nil, nil))
}

func TestFormatIssues_MarksCappedList(t *testing.T) {
	issues := make([]jira.Issue, jira.MaxIssueResults)
	for i := range issues {
		issues[i] = jira.Issue{Key: "OPS-1", Summary: "Fix it", Status: "Done"}
	}

	out := FormatIssues("OPS", issues)
	assert.Contains(t, out, "MOST RECENT 50")
	assert.Contains(t, out, "Fix it")
}

func TestFormatIssues_Empty(t *testing.T) {
	assert.Contains(t, FormatIssues("OPS", nil), "No issues found in OPS.")
}

func TestFormatProjects(t *testing.T) {
	out := FormatProjects([]jira.Project{{Key: "OPS", Name: "Operations", ProjectTypeKey: "software"}})
	assert.Contains(t, out, "Operations")
	assert.Contains(t, out, "software")
}

func TestFormatHistory_ShowsTotal(t *testing.T) {
	started := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	out := FormatHistory([]worklog.Entry{
		{ID: 1, IssueKey: "OPS-1", Started: started, TimeSpent: "1h", TimeSpentSeconds: 3600},
		{ID: 2, IssueKey: "OPS-2", Started: started, TimeSpent: "30m", TimeSpentSeconds: 1800, Comment: strings.Repeat("x", 80)},
	})

	assert.Contains(t, out, "Total: ")
	assert.Contains(t, out, "1h 30m")
	assert.Contains(t, out, "…")
}

func TestFormatDailySummaries(t *testing.T) {
	started := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	summaries := output.BuildDailySummaries([]worklog.Entry{
		{IssueKey: "OPS-1", Started: started, TimeSpentSeconds: 5400},
	})

	out := FormatDailySummaries(summaries)
	assert.Contains(t, out, "OPS-1 1h 30m")
}

func TestStatus_EmptyIsDash(t *testing.T) {
	assert.Contains(t, Status(""), "--")
	assert.Contains(t, Status("In Progress"), "In Progress")
}
