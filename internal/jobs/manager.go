// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package jobs runs the background maintenance tasks: a health check,
// the scheduled-post publisher and the orphan upload sweep.
package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Manager owns the cron engine and the registered jobs.
type Manager struct {
	engine *cron.Cron
}

// NewManager creates a manager whose engine accepts six-field expressions and
// descriptors such as "@daily". A panicking job is recovered and logged,
// and a job still running when its next tick arrives is skipped.
func NewManager() *Manager {
	logger := cron.PrintfLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn))
	return &Manager{
		engine: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

// Register adds job on the given cron schedule.
func (m *Manager) Register(schedule string, job cron.Job) error {
	if _, err := m.engine.AddJob(schedule, job); err != nil {
		return fmt.Errorf("register job %q: %w", schedule, err)
	}
	return nil
}

// Len returns the number of registered jobs.
func (m *Manager) Len() int {
	return len(m.engine.Entries())
}

// Start runs the scheduler in its own goroutine.
func (m *Manager) Start() {
	slog.Info("cron scheduler started", "jobs", m.Len())
	m.engine.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (m *Manager) Stop(ctx context.Context) {
	done := m.engine.Stop()
	select {
	case <-done.Done():
		slog.Info("cron scheduler stopped")
	case <-ctx.Done():
		slog.Warn("cron scheduler stop timed out", "error", ctx.Err())
	}
}
