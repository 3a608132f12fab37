// Package session holds the state of an in-progress time tracking session.
//
// A Session is owned by its caller; nothing in this package keeps
// process-wide tracking state.
package session

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"jiralog/duration"
)

var (
	ErrAlreadyTracking = errors.New("a tracking session is already running")
	ErrNotTracking     = errors.New("no tracking session is running")
)

// Tracked describes a running or finished tracking session.
type Tracked struct {
	ProjectKey string
	IssueKey   string
	Started    time.Time
	Stopped    time.Time
}

// Seconds returns the whole seconds between Started and Stopped.
func (t Tracked) Seconds() int {
	if !t.Stopped.After(t.Started) {
		return 0
	}
	return int(t.Stopped.Sub(t.Started) / time.Second)
}

// TimeSpent renders the tracked time rounded to the nearest minute in
// work-log notation. Sessions shorter than half a minute yield "0m".
func (t Tracked) TimeSpent() string {
	minutes := int(math.Round(float64(t.Seconds()) / 60))
	return duration.Format(minutes * 60)
}

type Session struct {
	mu      sync.Mutex
	active  bool
	current Tracked
}

func New() *Session {
	return &Session{}
}

// Start begins tracking issueKey at now.
func (s *Session) Start(projectKey, issueKey string, now time.Time) error {
	issueKey = strings.TrimSpace(issueKey)
	if issueKey == "" {
		return fmt.Errorf("start tracking: issue key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return fmt.Errorf("start tracking %s: %w (tracking %s)", issueKey, ErrAlreadyTracking, s.current.IssueKey)
	}

	s.active = true
	s.current = Tracked{
		ProjectKey: strings.TrimSpace(projectKey),
		IssueKey:   issueKey,
		Started:    now,
	}
	return nil
}

// Stop ends the session and returns what was tracked.
func (s *Session) Stop(now time.Time) (Tracked, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return Tracked{}, ErrNotTracking
	}

	tracked := s.current
	tracked.Stopped = now
	s.active = false
	s.current = Tracked{}
	return tracked, nil
}

func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Current returns the running session with Stopped unset.
func (s *Session) Current() (Tracked, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.active
}

func (s *Session) Elapsed(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || now.Before(s.current.Started) {
		return 0
	}
	return now.Sub(s.current.Started)
}

// ElapsedText returns the elapsed time as Jira duration text.
func (s *Session) ElapsedText(now time.Time) string {
	return duration.Format(int(s.Elapsed(now) / time.Second))
}

// ElapsedClock returns the elapsed time as HH:MM:SS.
func (s *Session) ElapsedClock(now time.Time) string {
	return FormatClock(int(s.Elapsed(now) / time.Second))
}

// FormatClock renders seconds as HH:MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
