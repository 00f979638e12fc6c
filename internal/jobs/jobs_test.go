package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"featherpress/internal/service"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

type fakePublisher struct {
	calls atomic.Int32
	err   error
}

func (f *fakePublisher) PublishScheduled(context.Context) (int64, error) {
	f.calls.Add(1)
	return 2, f.err
}

type fakeCleaner struct {
	scope service.OrphanScope
	err   error
}

func (f *fakeCleaner) CleanupOrphans(_ context.Context, scope service.OrphanScope) (*service.CleanupResult, error) {
	f.scope = scope
	if f.err != nil {
		return nil, f.err
	}
	return &service.CleanupResult{Rows: 3, Files: 2}, nil
}

func TestHealthJobCheck(t *testing.T) {
	tests := []struct {
		name string
		db   Pinger
		want bool
	}{
		{"healthy", fakePinger{}, true},
		{"database down", fakePinger{err: errors.New("connection refused")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := NewHealthJob(tt.db, nil)
			if got := j.check(context.Background()); got != tt.want {
				t.Errorf("check() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPublishJobRun(t *testing.T) {
	p := &fakePublisher{err: errors.New("boom")}
	j := NewPublishJob(p)

	// Failures are logged, never propagated.
	j.Run()
	j.Run()
	if got := p.calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestCleanupJobRun(t *testing.T) {
	c := &fakeCleaner{}
	NewCleanupJob(c, service.OrphanScope{OlderThan: 24 * time.Hour}).Run()
	if c.scope.OlderThan != 24*time.Hour {
		t.Errorf("OlderThan = %v, want 24h", c.scope.OlderThan)
	}

	failing := &fakeCleaner{err: errors.New("db gone")}
	NewCleanupJob(failing, service.OrphanScope{OlderThan: time.Hour}).Run()
}

func TestScheduledCleanupSparesStandaloneUploads(t *testing.T) {
	m := NewManager()
	c := &fakeCleaner{}
	if err := RegisterDefaults(m, fakePinger{}, nil, &fakePublisher{}, c); err != nil {
		t.Fatalf("RegisterDefaults: %v", err)
	}
	for _, e := range m.engine.Entries() {
		if job, ok := e.Job.(*CleanupJob); ok {
			job.Run()
		}
	}
	if c.scope.Standalone {
		t.Error("scheduled cleanup includes standalone uploads")
	}
	if c.scope.OlderThan != service.OrphanMaxAge {
		t.Errorf("OlderThan = %v, want %v", c.scope.OlderThan, service.OrphanMaxAge)
	}
}

func TestRegisterDefaults(t *testing.T) {
	m := NewManager()
	if err := RegisterDefaults(m, fakePinger{}, nil, &fakePublisher{}, &fakeCleaner{}); err != nil {
		t.Fatalf("RegisterDefaults: %v", err)
	}
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}
}

func TestRegisterInvalidSchedule(t *testing.T) {
	m := NewManager()
	if err := m.Register("every now and then", NewPublishJob(&fakePublisher{})); err == nil {
		t.Error("expected an error for an invalid schedule")
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestManagerRunsJobs(t *testing.T) {
	m := NewManager()
	p := &fakePublisher{}
	if err := m.Register("@every 1s", NewPublishJob(p)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	m.Start()

	deadline := time.Now().Add(3 * time.Second)
	for p.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	m.Stop(ctx)

	if p.calls.Load() == 0 {
		t.Error("job never ran")
	}
}
