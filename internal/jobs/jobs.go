// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"featherpress/internal/service"
)

// Schedules of the built-in jobs.
const (
	HealthSchedule  = "@every 1m"
	PublishSchedule = "@every 1m"
	CleanupSchedule = "@daily"
)

// jobTimeout bounds a single run of any job.
const jobTimeout = 2 * time.Minute

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Publisher publishes scheduled posts that are due.
type Publisher interface {
	PublishScheduled(ctx context.Context) (int64, error)
}

// Cleaner removes orphaned uploads.
type Cleaner interface {
	CleanupOrphans(ctx context.Context, scope service.OrphanScope) (*service.CleanupResult, error)
}

// HealthJob pings PostgreSQL and, when configured, Valkey.
type HealthJob struct {
	db     Pinger
	valkey *redis.Client
}

// NewHealthJob creates the health check. valkey may be nil.
func NewHealthJob(db Pinger, valkey *redis.Client) *HealthJob {
	return &HealthJob{db: db, valkey: valkey}
}

// Run implements cron.Job.
func (j *HealthJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	j.check(ctx)
}

// check reports whether every dependency answered.
func (j *HealthJob) check(ctx context.Context) bool {
	healthy := true
	if err := j.db.PingContext(ctx); err != nil {
		slog.Error("health check failed", "job", "health", "dependency", "postgres", "error", err)
		healthy = false
	}
	if j.valkey != nil {
		if err := j.valkey.Ping(ctx).Err(); err != nil {
			slog.Error("health check failed", "job", "health", "dependency", "valkey", "error", err)
			healthy = false
		}
	}
	if healthy {
		slog.Debug("health check ok", "job", "health")
	}
	return healthy
}

// PublishJob flips due scheduled posts to published.
type PublishJob struct {
	posts Publisher
}

// NewPublishJob creates the scheduled publisher.
func NewPublishJob(posts Publisher) *PublishJob {
	return &PublishJob{posts: posts}
}

// Run implements cron.Job.
func (j *PublishJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := j.posts.PublishScheduled(ctx); err != nil {
		slog.Error("publish scheduled posts failed", "job", "publish", "error", err)
	}
}

// CleanupJob deletes orphaned uploads and their files. Media-library
// uploads are standalone and outside its scope.
type CleanupJob struct {
	uploads Cleaner
	scope   service.OrphanScope
}

// NewCleanupJob creates the orphan sweep for scope.
func NewCleanupJob(uploads Cleaner, scope service.OrphanScope) *CleanupJob {
	return &CleanupJob{uploads: uploads, scope: scope}
}

// Run implements cron.Job.
func (j *CleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	res, err := j.uploads.CleanupOrphans(ctx, j.scope)
	if err != nil {
		slog.Error("orphan cleanup failed", "job", "cleanup", "error", err)
		return
	}
	if res.Rows > 0 {
		slog.Info("orphan cleanup finished", "job", "cleanup", "deleted", res.Rows, "files", res.Files)
	}
}

// RegisterDefaults schedules the three maintenance jobs on m.
func RegisterDefaults(m *Manager, db Pinger, valkey *redis.Client, posts Publisher, uploads Cleaner) error {
	if err := m.Register(HealthSchedule, NewHealthJob(db, valkey)); err != nil {
		return err
	}
	if err := m.Register(PublishSchedule, NewPublishJob(posts)); err != nil {
		return err
	}
	return m.Register(CleanupSchedule, NewCleanupJob(uploads, service.ScheduledOrphanScope))
}
