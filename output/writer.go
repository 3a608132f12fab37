package output

import (
	"fmt"
	"jiralog/worklog"
	"strconv"
	"strings"
	"time"
)

type Writer interface {
	Write(path string, entries []worklog.Entry) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

var entryHeaders = []string{"ID", "IssueKey", "ProjectKey", "Started", "Ended", "TimeSpent", "TimeSpentSeconds", "Comment", "RemoteID", "LoggedAt"}

func entryRow(entry worklog.Entry) []string {
	return []string{
		strconv.FormatInt(entry.ID, 10),
		entry.IssueKey,
		entry.ProjectKey,
		entry.Started.In(time.Local).Format(time.RFC3339),
		entry.End().In(time.Local).Format(time.RFC3339),
		entry.TimeSpent,
		strconv.Itoa(entry.TimeSpentSeconds),
		entry.Comment,
		entry.RemoteID,
		entry.LoggedAt.In(time.Local).Format(time.RFC3339),
	}
}
