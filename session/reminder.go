package session

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// SnoozeMinutes is the interval used by Reminder.Snooze.
const SnoozeMinutes = 5

// Reminder fires a callback at a fixed interval while a session runs.
type Reminder struct {
	mu       sync.Mutex
	log      zerolog.Logger
	notify   func()
	interval time.Duration
	c        *cron.Cron
}

// MinutesInterval converts a reminder setting in minutes to an interval.
// Zero or negative values disable reminders.
func MinutesInterval(minutes int) time.Duration {
	if minutes <= 0 {
		return 0
	}
	return time.Duration(minutes) * time.Minute
}

func NewReminder(interval time.Duration, notify func(), log zerolog.Logger) *Reminder {
	return &Reminder{log: log, notify: notify, interval: interval}
}

// Start schedules the reminder. It is a no-op when already running or
// when the interval is disabled.
func (r *Reminder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.startLocked()
}

// Stop cancels future reminders. A callback already running is not awaited.
func (r *Reminder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

// Reschedule replaces the interval, restarting the schedule when running.
func (r *Reminder) Reschedule(interval time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	running := r.c != nil
	r.stopLocked()
	r.interval = interval
	if running {
		r.startLocked()
	}
}

// Snooze postpones the next reminder by SnoozeMinutes and keeps that interval.
func (r *Reminder) Snooze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
	r.interval = MinutesInterval(SnoozeMinutes)
	r.startLocked()
}

func (r *Reminder) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.c != nil
}

func (r *Reminder) Interval() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.interval
}

func (r *Reminder) startLocked() {
	if r.c != nil || r.interval <= 0 || r.notify == nil {
		return
	}
	c := cron.New()
	c.Schedule(cron.Every(r.interval), cron.FuncJob(r.fire))
	c.Start()
	r.c = c
	r.log.Debug().Dur("interval", r.interval).Msg("reminder scheduled")
}

func (r *Reminder) stopLocked() {
	if r.c == nil {
		return
	}
	r.c.Stop()
	r.c = nil
	r.log.Debug().Msg("reminder cleared")
}

func (r *Reminder) fire() {
	r.log.Info().Msg("tracking reminder")
	r.notify()
}
