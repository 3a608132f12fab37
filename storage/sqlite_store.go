package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jiralog/worklog"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

var ErrWorklogNotFound = errors.New("worklog not found")

// ListFilter bounds ListWorklogs by start time (inclusive) and issue key.
type ListFilter struct {
	From     *time.Time
	To       *time.Time
	IssueKey string
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create database directory %q: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS worklogs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	issue_key TEXT NOT NULL,
	project_key TEXT NOT NULL DEFAULT '',
	started TEXT NOT NULL,
	time_spent TEXT NOT NULL,
	time_spent_seconds INTEGER NOT NULL CHECK(time_spent_seconds > 0),
	comment TEXT NOT NULL DEFAULT '',
	remote_id TEXT NOT NULL DEFAULT '',
	logged_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_worklogs_started ON worklogs(started);
CREATE INDEX IF NOT EXISTS idx_worklogs_issue ON worklogs(issue_key);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// InsertWorklog records one accepted work log and returns its row ID.
func (s *SQLiteStore) InsertWorklog(entry worklog.Entry) (int64, error) {
	if strings.TrimSpace(entry.IssueKey) == "" {
		return 0, fmt.Errorf("worklog issue key is required")
	}
	if entry.TimeSpentSeconds <= 0 {
		return 0, fmt.Errorf("worklog time spent must be > 0 seconds")
	}
	loggedAt := entry.LoggedAt
	if loggedAt.IsZero() {
		loggedAt = time.Now()
	}

	const insertStmt = `
INSERT INTO worklogs (
	issue_key,
	project_key,
	started,
	time_spent,
	time_spent_seconds,
	comment,
	remote_id,
	logged_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?);`

	res, err := s.db.Exec(
		insertStmt,
		entry.IssueKey,
		entry.ProjectKey,
		formatTime(entry.Started),
		entry.TimeSpent,
		entry.TimeSpentSeconds,
		entry.Comment,
		entry.RemoteID,
		formatTime(loggedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert worklog: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted row id: %w", err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid inserted row id %d", id)
	}
	return id, nil
}

const selectColumns = `
SELECT
	id,
	issue_key,
	project_key,
	started,
	time_spent,
	time_spent_seconds,
	comment,
	remote_id,
	logged_at
FROM worklogs`

func (s *SQLiteStore) ListWorklogs(filter ListFilter) ([]worklog.Entry, error) {
	conditions := make([]string, 0, 3)
	args := make([]any, 0, 3)
	if filter.From != nil {
		conditions = append(conditions, "started >= ?")
		args = append(args, formatTime(*filter.From))
	}
	if filter.To != nil {
		conditions = append(conditions, "started <= ?")
		args = append(args, formatTime(*filter.To))
	}
	if key := strings.TrimSpace(filter.IssueKey); key != "" {
		conditions = append(conditions, "issue_key = ?")
		args = append(args, key)
	}

	query := selectColumns
	if len(conditions) > 0 {
		query += "\nWHERE " + strings.Join(conditions, " AND ")
	}
	query += "\nORDER BY started, id;"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query worklogs: %w", err)
	}
	defer rows.Close()

	entries := make([]worklog.Entry, 0, 64)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate worklogs: %w", err)
	}

	return entries, nil
}

// GetWorklogByID returns one worklog by ID.
func (s *SQLiteStore) GetWorklogByID(id int64) (worklog.Entry, bool, error) {
	if id <= 0 {
		return worklog.Entry{}, false, fmt.Errorf("worklog id must be > 0")
	}

	entry, err := scanEntry(s.db.QueryRow(selectColumns+"\nWHERE id = ?;", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return worklog.Entry{}, false, nil
		}
		return worklog.Entry{}, false, fmt.Errorf("query worklog %d: %w", id, err)
	}
	return entry, true, nil
}

// DeleteWorklog removes the row with the given ID from local history only.
func (s *SQLiteStore) DeleteWorklog(id int64) error {
	if id <= 0 {
		return fmt.Errorf("worklog id must be > 0")
	}

	res, err := s.db.Exec(`DELETE FROM worklogs WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete worklog %d: %w", id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read deleted row count: %w", err)
	}
	if rowsAffected == 0 {
		return ErrWorklogNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteAllWorklogs() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM worklogs;`)
	if err != nil {
		return 0, fmt.Errorf("delete worklogs: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read deleted row count: %w", err)
	}
	return rows, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (worklog.Entry, error) {
	var (
		entry       worklog.Entry
		startedRaw  string
		loggedAtRaw string
	)
	if err := row.Scan(
		&entry.ID,
		&entry.IssueKey,
		&entry.ProjectKey,
		&startedRaw,
		&entry.TimeSpent,
		&entry.TimeSpentSeconds,
		&entry.Comment,
		&entry.RemoteID,
		&loggedAtRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return worklog.Entry{}, err
		}
		return worklog.Entry{}, fmt.Errorf("scan worklog: %w", err)
	}

	var err error
	entry.Started, err = time.Parse(time.RFC3339, startedRaw)
	if err != nil {
		return worklog.Entry{}, fmt.Errorf("parse started %q: %w", startedRaw, err)
	}
	entry.LoggedAt, err = time.Parse(time.RFC3339, loggedAtRaw)
	if err != nil {
		return worklog.Entry{}, fmt.Errorf("parse logged_at %q: %w", loggedAtRaw, err)
	}
	return entry, nil
}

// formatTime stores UTC so lexical order in SQLite matches time order.
func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339)
}
