package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"jiralog/session"
)

type steppingClock struct {
	now  time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	current := c.now
	c.now = c.now.Add(c.step)
	return current
}

func newTestTrackRun(service workLogger, out *bytes.Buffer, clock *steppingClock) *trackRun {
	return &trackRun{
		session: session.New(),
		service: service,
		out:     out,
		now:     clock.Now,
	}
}

func TestTrackRun_StopUsesTrackedTime(t *testing.T) {
	var out bytes.Buffer
	service := &fakeWorkLogger{}
	clock := &steppingClock{now: time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC), step: 20 * time.Minute}
	run := newTestTrackRun(service, &out, clock)

	input := strings.NewReader("status\nstop\n\nReviewed PR\n")
	if err := run.run(context.Background(), input, "ops-7", ""); err != nil {
		t.Fatalf("unexpected error: %v\noutput:\n%s", err, out.String())
	}

	if len(service.submissions) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(service.submissions))
	}
	sub := service.submissions[0]
	if sub.IssueKey != "OPS-7" || sub.ProjectKey != "OPS" {
		t.Fatalf("unexpected submission keys: %+v", sub)
	}
	// start, banner, status, stop: the clock advanced three steps before stop.
	if sub.TimeSpent != "1h" {
		t.Fatalf("expected tracked time 1h, got %q\noutput:\n%s", sub.TimeSpent, out.String())
	}
	if sub.Comment != "Reviewed PR" {
		t.Fatalf("unexpected comment %q", sub.Comment)
	}
	if !sub.Started.Equal(time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected started %s", sub.Started)
	}
	if !strings.Contains(out.String(), "elapsed on OPS-7") {
		t.Fatalf("expected status output, got:\n%s", out.String())
	}
}

func TestTrackRun_OverrideTimeSpent(t *testing.T) {
	var out bytes.Buffer
	service := &fakeWorkLogger{}
	clock := &steppingClock{now: time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC), step: time.Minute}
	run := newTestTrackRun(service, &out, clock)

	if err := run.run(context.Background(), strings.NewReader("\n2h 15m\n\n"), "OPS-7", "ops"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if service.submissions[0].TimeSpent != "2h 15m" {
		t.Fatalf("expected override, got %q", service.submissions[0].TimeSpent)
	}
	if service.submissions[0].Comment != "" {
		t.Fatalf("expected empty comment for default, got %q", service.submissions[0].Comment)
	}
}

func TestTrackRun_CancelDoesNotLog(t *testing.T) {
	for _, input := range []string{"cancel\n", ""} {
		var out bytes.Buffer
		service := &fakeWorkLogger{}
		clock := &steppingClock{now: time.Now(), step: time.Second}
		run := newTestTrackRun(service, &out, clock)

		err := run.run(context.Background(), strings.NewReader(input), "OPS-7", "")
		if !errors.Is(err, errTrackingCancelled) {
			t.Fatalf("input %q: expected cancellation, got %v", input, err)
		}
		if len(service.submissions) != 0 {
			t.Fatalf("input %q: expected no submission", input)
		}
		if run.session.Active() {
			t.Fatalf("input %q: expected session to be stopped", input)
		}
	}
}

func TestTrackRun_UnknownCommand(t *testing.T) {
	var out bytes.Buffer
	clock := &steppingClock{now: time.Now(), step: time.Second}
	run := newTestTrackRun(&fakeWorkLogger{}, &out, clock)

	_ = run.run(context.Background(), strings.NewReader("dance\ncancel\n"), "OPS-7", "")
	if !strings.Contains(out.String(), `Unknown command "dance"`) {
		t.Fatalf("expected unknown command message, got:\n%s", out.String())
	}
}
