// Package main is the entry point for the featherpress server. It loads
// configuration, connects to PostgreSQL, Valkey and the media backends,
// then runs the HTTP API and the maintenance scheduler until a shutdown
// signal arrives.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"featherpress/internal/auth"
	"featherpress/internal/cache"
	"featherpress/internal/config"
	"featherpress/internal/database"
	"featherpress/internal/handlers"
	"featherpress/internal/jobs"
	"featherpress/internal/middleware"
	"featherpress/internal/router"
	"featherpress/internal/service"
	"featherpress/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg)

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"storage", cfg.StorageBackend,
	)

	if err := run(cfg); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped gracefully")
}

// setupLogger installs the default slog logger: text in development and
// JSON otherwise, at the configured level.
func setupLogger(cfg *config.Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.IsDev() {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

func run(cfg *config.Config) error {
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			return err
		}
	}

	// Valkey is optional: without it caching and the shared rate limit
	// window are disabled.
	var (
		valkey   *redis.Client
		rc       *cache.ResponseCache
		counters *cache.Counters
	)
	if valkey, err = cache.ConnectValkey(context.Background(), cache.ValkeyOptions{
		Host:     cfg.ValkeyHost,
		Port:     cfg.ValkeyPort,
		Password: cfg.ValkeyPassword,
		DB:       cfg.ValkeyDB,
		PoolSize: cfg.ValkeyPoolSize,
	}); err != nil {
		slog.Warn("valkey unavailable, caching disabled", "error", err)
		valkey = nil
	} else {
		defer valkey.Close()
		rc = cache.NewResponseCache(valkey, cache.DefaultResponseTTL)
		counters = cache.NewCounters(valkey, cache.DefaultCounterTTL)
	}

	sink, err := newSink(cfg)
	if err != nil {
		return err
	}

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)

	posts := service.NewPosts(db, sink, rc, counters)
	feed := service.NewFeed(db, rc)
	engagement := service.NewEngagement(db, counters)
	taxonomy := service.NewTaxonomy(db, rc)
	uploads := service.NewUploads(db, sink)
	site := service.NewSite(db)
	maxUpload := cfg.MaxUploadBytes()

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow, valkey)
	defer limiter.Stop()

	r := router.New(issuer, limiter, cfg.UploadDir, router.Handlers{
		Posts:    handlers.NewPosts(posts, feed, engagement, maxUpload),
		Comments: handlers.NewComments(service.NewComments(db)),
		Auth:     handlers.NewAuth(service.NewAccounts(db, issuer)),
		Public:   handlers.NewPublic(taxonomy, site),
		Admin:    handlers.NewAdmin(service.NewUsers(db, sink, rc, counters), taxonomy, uploads, site, maxUpload),
	})

	scheduler := jobs.NewManager()
	if err := jobs.RegisterDefaults(scheduler, db, valkey, posts, uploads); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	scheduler.Start()
	g.Go(func() error {
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		scheduler.Stop(stopCtx)
		return nil
	})

	g.Go(func() error {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown: give active requests up to 30 seconds to finish.
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newSink builds the media sink: the configured remote backend, if any,
// in front of the local upload directory.
func newSink(cfg *config.Config) (*storage.Sink, error) {
	var remote storage.Backend
	switch cfg.StorageBackend {
	case "s3":
		s3, err := storage.NewS3(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			return nil, err
		}
		if s3 != nil {
			remote = s3
		}
	case "minio":
		mc, err := storage.NewMinIO(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL, cfg.MinioUseSSL)
		if err != nil {
			return nil, err
		}
		if mc != nil {
			remote = mc
		}
	default:
		slog.Warn("no remote storage configured, uploads stay on local disk", "dir", cfg.UploadDir)
	}
	if remote != nil {
		slog.Info("remote storage ready", "backend", remote.Name(), "bucket", cfg.S3Bucket)
	} else if cfg.StorageBackend != "none" {
		slog.Warn("remote storage not configured, uploads stay on local disk", "backend", cfg.StorageBackend)
	}
	return storage.NewSink(remote, storage.NewLocal(cfg.UploadDir)), nil
}
