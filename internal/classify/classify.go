// Package classify compares a work log about to be submitted with the work
// logs already recorded in history.
package classify

import (
	"strings"

	"jiralog/worklog"
)

type Outcome int

const (
	OutcomeNew Outcome = iota
	OutcomeDuplicate
	OutcomeOverlap
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeOverlap:
		return "overlap"
	default:
		return "new"
	}
}

type Result struct {
	Outcome Outcome
	// Conflicts holds the recorded entries that caused the outcome.
	Conflicts []worklog.Entry
}

// Classify reports a duplicate when an entry with the same issue, start and
// duration exists, otherwise an overlap for every entry whose time range
// intersects the candidate's. Overlaps across issues count.
func Classify(candidate worklog.Entry, existing []worklog.Entry) Result {
	duplicates := make([]worklog.Entry, 0)
	for _, entry := range existing {
		if Equivalent(entry, candidate) {
			duplicates = append(duplicates, entry)
		}
	}
	if len(duplicates) > 0 {
		return Result{Outcome: OutcomeDuplicate, Conflicts: duplicates}
	}

	overlaps := make([]worklog.Entry, 0)
	for _, entry := range existing {
		if Overlaps(candidate, entry) {
			overlaps = append(overlaps, entry)
		}
	}
	if len(overlaps) > 0 {
		return Result{Outcome: OutcomeOverlap, Conflicts: overlaps}
	}
	return Result{Outcome: OutcomeNew}
}

// Equivalent ignores comments and remote IDs.
func Equivalent(a, b worklog.Entry) bool {
	return strings.EqualFold(strings.TrimSpace(a.IssueKey), strings.TrimSpace(b.IssueKey)) &&
		a.Started.Equal(b.Started) &&
		a.TimeSpentSeconds == b.TimeSpentSeconds
}

// Overlaps treats ranges as half-open, so back-to-back entries do not overlap.
func Overlaps(a, b worklog.Entry) bool {
	if a.TimeSpentSeconds <= 0 || b.TimeSpentSeconds <= 0 {
		return false
	}
	return a.Started.Before(b.End()) && b.Started.Before(a.End())
}
