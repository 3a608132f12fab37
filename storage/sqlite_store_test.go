package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"jiralog/worklog"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustParseRFC3339(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return parsed
}

func TestSQLiteStore_InsertAndList(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	entries := []worklog.Entry{
		{
			IssueKey:         "OPS-2",
			ProjectKey:       "OPS",
			Started:          mustParseRFC3339(t, "2026-03-05T14:00:00+01:00"),
			TimeSpent:        "45m",
			TimeSpentSeconds: 2700,
			Comment:          "Review",
			RemoteID:         "10002",
		},
		{
			IssueKey:         "OPS-1",
			ProjectKey:       "OPS",
			Started:          mustParseRFC3339(t, "2026-03-05T09:00:00+01:00"),
			TimeSpent:        "1h 30m",
			TimeSpentSeconds: 5400,
			RemoteID:         "10001",
		},
	}
	for _, entry := range entries {
		id, err := store.InsertWorklog(entry)
		if err != nil {
			t.Fatalf("insert worklog: %v", err)
		}
		if id <= 0 {
			t.Fatalf("expected positive id, got %d", id)
		}
	}

	listed, err := store.ListWorklogs(ListFilter{})
	if err != nil {
		t.Fatalf("list worklogs: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(listed))
	}
	if listed[0].IssueKey != "OPS-1" || listed[1].IssueKey != "OPS-2" {
		t.Fatalf("expected rows ordered by start, got %s, %s", listed[0].IssueKey, listed[1].IssueKey)
	}
	if !listed[0].Started.Equal(entries[1].Started) {
		t.Fatalf("started mismatch: %v vs %v", listed[0].Started, entries[1].Started)
	}
	if listed[0].LoggedAt.IsZero() {
		t.Fatalf("expected logged_at to default to now")
	}
}

func TestSQLiteStore_ListFilter(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	for _, raw := range []string{"2026-03-04T10:00:00Z", "2026-03-05T10:00:00Z", "2026-03-06T10:00:00Z"} {
		if _, err := store.InsertWorklog(worklog.Entry{
			IssueKey:         "OPS-1",
			Started:          mustParseRFC3339(t, raw),
			TimeSpent:        "1h",
			TimeSpentSeconds: 3600,
		}); err != nil {
			t.Fatalf("insert worklog: %v", err)
		}
	}
	if _, err := store.InsertWorklog(worklog.Entry{
		IssueKey:         "WEB-7",
		Started:          mustParseRFC3339(t, "2026-03-05T12:00:00Z"),
		TimeSpent:        "15m",
		TimeSpentSeconds: 900,
	}); err != nil {
		t.Fatalf("insert worklog: %v", err)
	}

	from := mustParseRFC3339(t, "2026-03-05T00:00:00Z")
	to := mustParseRFC3339(t, "2026-03-05T23:59:59Z")
	got, err := store.ListWorklogs(ListFilter{From: &from, To: &to})
	if err != nil {
		t.Fatalf("list worklogs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows in range, got %d", len(got))
	}

	got, err = store.ListWorklogs(ListFilter{From: &from, To: &to, IssueKey: "WEB-7"})
	if err != nil {
		t.Fatalf("list worklogs: %v", err)
	}
	if len(got) != 1 || got[0].TimeSpentSeconds != 900 {
		t.Fatalf("unexpected filtered rows: %+v", got)
	}
}

func TestSQLiteStore_RejectsInvalidEntries(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	if _, err := store.InsertWorklog(worklog.Entry{TimeSpentSeconds: 60}); err == nil {
		t.Fatalf("expected error for missing issue key")
	}
	if _, err := store.InsertWorklog(worklog.Entry{IssueKey: "OPS-1"}); err == nil {
		t.Fatalf("expected error for zero duration")
	}
}

func TestSQLiteStore_GetAndDelete(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	id, err := store.InsertWorklog(worklog.Entry{
		IssueKey:         "OPS-1",
		Started:          mustParseRFC3339(t, "2026-03-05T10:00:00Z"),
		TimeSpent:        "1m",
		TimeSpentSeconds: 60,
	})
	if err != nil {
		t.Fatalf("insert worklog: %v", err)
	}

	entry, found, err := store.GetWorklogByID(id)
	if err != nil || !found {
		t.Fatalf("get worklog: found=%v err=%v", found, err)
	}
	if entry.TimeSpent != "1m" {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	if err := store.DeleteWorklog(id); err != nil {
		t.Fatalf("delete worklog: %v", err)
	}
	if err := store.DeleteWorklog(id); !errors.Is(err, ErrWorklogNotFound) {
		t.Fatalf("expected ErrWorklogNotFound, got %v", err)
	}
	if _, found, err := store.GetWorklogByID(id); err != nil || found {
		t.Fatalf("expected missing worklog, found=%v err=%v", found, err)
	}
}

func TestSQLiteStore_DeleteAllWorklogs(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	for i := 0; i < 3; i++ {
		if _, err := store.InsertWorklog(worklog.Entry{IssueKey: "OPS-1", TimeSpent: "1h", TimeSpentSeconds: 3600}); err != nil {
			t.Fatalf("insert worklog: %v", err)
		}
	}

	deleted, err := store.DeleteAllWorklogs()
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("expected 3 deleted rows, got %d", deleted)
	}
}
