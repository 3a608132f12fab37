package formatter

import (
	"fmt"

	"jiralog/jira"
)

func FormatProjects(projects []jira.Project) string {
	if len(projects) == 0 {
		return Dim("No projects visible to this account.") + "\n"
	}

	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{Bold(p.Key), p.Name, dash(p.ProjectTypeKey)})
	}
	return Header("Projects") + "\n" + RenderTable([]string{"KEY", "NAME", "TYPE"}, rows)
}

func FormatIssues(projectKey string, issues []jira.Issue) string {
	if len(issues) == 0 {
		return Dim(fmt.Sprintf("No issues found in %s.", projectKey)) + "\n"
	}

	rows := make([][]string, 0, len(issues))
	for _, issue := range issues {
		rows = append(rows, []string{Bold(issue.Key), Status(issue.Status), issue.Summary})
	}
	title := fmt.Sprintf("Issues in %s", projectKey)
	if len(issues) >= jira.MaxIssueResults {
		title += fmt.Sprintf(" (most recent %d)", jira.MaxIssueResults)
	}
	return Header(title) + "\n" + RenderTable([]string{"KEY", "STATUS", "SUMMARY"}, rows)
}

func dash(value string) string {
	if value == "" {
		return Dim("--")
	}
	return value
}
