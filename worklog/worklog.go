package worklog

import "time"

// Entry is one work log that Jira accepted, as recorded in local history.
type Entry struct {
	ID               int64
	IssueKey         string
	ProjectKey       string
	Started          time.Time
	TimeSpent        string
	TimeSpentSeconds int
	Comment          string
	RemoteID         string
	LoggedAt         time.Time
}

// End returns Started plus the logged duration.
func (e Entry) End() time.Time {
	return e.Started.Add(time.Duration(e.TimeSpentSeconds) * time.Second)
}
