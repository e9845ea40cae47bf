// Package schedule runs recurring background tasks, such as re-warming
// the image validation cache.
//
//	s := schedule.New()
//	s.Every(10 * time.Minute).Name("images:warm").WithoutOverlapping().Run(warm)
//	s.Start(ctx) // returns at once; stops when ctx is cancelled
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/bloomthread/pkg/logger"
)

// Task is the signature of a scheduled task. ctx is cancelled when the
// scheduler stops.
type Task func(ctx context.Context)

type entry struct {
	id        string
	interval  time.Duration
	task      Task
	noOverlap bool

	mu      sync.Mutex
	lastRun time.Time
	running bool
}

// Scheduler dispatches due entries on every tick.
type Scheduler struct {
	tick time.Duration

	mu      sync.Mutex
	entries []*entry
	wg      sync.WaitGroup
}

// New returns a scheduler that checks for due tasks every second.
func New() *Scheduler {
	return &Scheduler{tick: time.Second}
}

// Schedule is the fluent builder for one entry.
type Schedule struct {
	s *Scheduler
	e *entry
}

// Every starts an entry that runs once at start and then every d.
func (s *Scheduler) Every(d time.Duration) *Schedule {
	return &Schedule{s: s, e: &entry{interval: d}}
}

// EveryMinutes is Every(n minutes).
func (s *Scheduler) EveryMinutes(n int) *Schedule {
	return s.Every(time.Duration(n) * time.Minute)
}

// WithoutOverlapping skips a run while the previous one is still going.
func (sc *Schedule) WithoutOverlapping() *Schedule {
	sc.e.noOverlap = true
	return sc
}

// Name labels the entry in logs.
func (sc *Schedule) Name(id string) *Schedule {
	sc.e.id = id
	return sc
}

// Run registers the task.
func (sc *Schedule) Run(fn Task) {
	sc.e.task = fn
	sc.s.mu.Lock()
	defer sc.s.mu.Unlock()
	if sc.e.id == "" {
		sc.e.id = fmt.Sprintf("task-%d", len(sc.s.entries)+1)
	}
	sc.s.entries = append(sc.s.entries, sc.e)
}

// List describes every entry, for the CLI.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, fmt.Sprintf("%s  [every %s]", e.id, e.interval))
	}
	return out
}

// Start runs the dispatch loop in the background until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx)
	logger.Info("schedule: scheduler started", "tasks", len(s.List()))
}

// Wait blocks until every dispatched task has returned.
func (s *Scheduler) Wait() { s.wg.Wait() }

func (s *Scheduler) loop(ctx context.Context) {
	s.dispatchDue(ctx, time.Now())

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("schedule: scheduler stopped")
			return
		case now := <-ticker.C:
			s.dispatchDue(ctx, now)
		}
	}
}

func (s *Scheduler) dispatchDue(ctx context.Context, now time.Time) {
	s.mu.Lock()
	current := make([]*entry, len(s.entries))
	copy(current, s.entries)
	s.mu.Unlock()

	for _, e := range current {
		s.dispatch(ctx, e, now)
	}
}

func (s *Scheduler) dispatch(ctx context.Context, e *entry, now time.Time) {
	e.mu.Lock()
	if !e.lastRun.IsZero() && now.Sub(e.lastRun) < e.interval {
		e.mu.Unlock()
		return
	}
	if e.noOverlap && e.running {
		e.mu.Unlock()
		logger.Warn("schedule: skipping overlapping task", "id", e.id)
		return
	}
	e.running = true
	e.lastRun = now
	e.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
			if r := recover(); r != nil {
				logger.Error("schedule: task panicked", "id", e.id, "panic", r)
			}
		}()
		logger.Debug("schedule: running task", "id", e.id)
		e.task(ctx)
	}()
}
