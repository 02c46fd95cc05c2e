package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

var errInvalidInterval = errors.New("scheduler: interval must be positive")

// AnimationTimer runs one repeating tick at a fixed interval. At most one
// tick job exists at a time.
type AnimationTimer struct {
	mu        sync.Mutex
	scheduler *gocron.Scheduler
	interval  time.Duration
	job       *gocron.Job
}

// New creates a stopped timer.
func New(interval time.Duration) *AnimationTimer {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &AnimationTimer{
		scheduler: s,
		interval:  interval,
	}
}

// Start schedules tick every interval, first firing one interval from now.
// Starting a running timer is a no-op: it keeps its current tick.
func (t *AnimationTimer) Start(tick func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.job != nil {
		return nil
	}
	if t.interval <= 0 {
		return errInvalidInterval
	}

	job, err := t.scheduler.Every(t.interval).WaitForSchedule().Do(tick)
	if err != nil {
		return fmt.Errorf("scheduler: schedule tick: %w", err)
	}
	t.job = job
	if !t.scheduler.IsRunning() {
		t.scheduler.StartAsync()
	}
	slog.Debug("animation timer started", "interval", t.interval)
	return nil
}

// Stop cancels the tick. It is safe to call on a stopped timer.
func (t *AnimationTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.job == nil {
		return
	}
	t.scheduler.RemoveByReference(t.job)
	t.job = nil
	slog.Debug("animation timer stopped")
}

// Running reports whether a tick is scheduled.
func (t *AnimationTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.job != nil
}

// Shutdown stops the tick and the underlying scheduler.
func (t *AnimationTimer) Shutdown() {
	t.Stop()
	if t.scheduler != nil {
		t.scheduler.Stop()
	}
}
