package jira

import "strings"

// IssueType is the closed set of issue types this client creates.
type IssueType string

const (
	IssueTypeTask  IssueType = "Task"
	IssueTypeBug   IssueType = "Bug"
	IssueTypeStory IssueType = "Story"
)

// ParseIssueType maps free-form input onto a known issue type. Unknown or
// empty input falls back to Task.
func ParseIssueType(value string) IssueType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "bug":
		return IssueTypeBug
	case "story":
		return IssueTypeStory
	default:
		return IssueTypeTask
	}
}

func (t IssueType) String() string {
	return string(t)
}
