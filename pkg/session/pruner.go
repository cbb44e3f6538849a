package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Pruner removes expired sessions from a Backend on a cron schedule.
type Pruner struct {
	backend  Backend
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewPruner creates a pruner for backend. schedule uses standard cron
// syntax or descriptors such as "@every 10m".
func NewPruner(backend Backend, schedule string) *Pruner {
	return &Pruner{
		backend:  backend,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "session.pruner"),
	}
}

// Start schedules pruning. An empty schedule disables the pruner.
// Pruning stops when ctx is cancelled or Stop is called.
func (p *Pruner) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.schedule == "" {
		p.logger.Info("prune schedule not configured, skipping pruner")
		return nil
	}
	if p.running {
		return fmt.Errorf("pruner already running")
	}

	if _, err := cron.ParseStandard(p.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", p.schedule, err)
	}

	if _, err := p.cron.AddFunc(p.schedule, func() {
		p.run(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	p.cron.Start()
	p.running = true

	p.logger.Info("session pruner started", "schedule", p.schedule)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()

	return nil
}

func (p *Pruner) run(ctx context.Context) {
	deleted, err := p.RunOnce(ctx)
	if err != nil {
		p.logger.Error("scheduled session pruning failed", "error", err)
		return
	}
	if deleted > 0 {
		p.logger.Info("expired sessions pruned", "deleted_count", deleted)
	} else {
		p.logger.Debug("session pruning completed, nothing expired")
	}
}

// RunOnce prunes expired sessions immediately.
func (p *Pruner) RunOnce(ctx context.Context) (int64, error) {
	return p.backend.Prune(ctx, time.Now())
}

// Stop stops the schedule and waits for a running prune to finish.
func (p *Pruner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		<-p.cron.Stop().Done()
		p.running = false
		p.logger.Info("session pruner stopped")
	}
}

// IsRunning returns true if the pruner is scheduled.
func (p *Pruner) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// NextRun returns the next scheduled prune, or nil when not running.
func (p *Pruner) NextRun() *time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries := p.cron.Entries()
	if !p.running || len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
