package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"lol-blacklist/internal/blacklist"
	"lol-blacklist/internal/config"
	"lol-blacklist/internal/model"
	"lol-blacklist/internal/riot"
	"lol-blacklist/internal/store"
)

var errNoAPIKey = errors.New("no Riot API key: set RIOT_API_KEY or save one in the dashboard settings")

// app is the wiring shared by every command.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	manager  *blacklist.Manager
	settings model.Settings
	closers  []io.Closer
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg.LogLevel, os.Stderr)
	slog.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger}
	entries, puuids, err := a.openStores(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		logger.Warn("settings file unreadable, using defaults", "path", cfg.SettingsPath, "error", err)
	}
	if !settings.HasAPIKey() && cfg.RiotAPIKey != "" {
		settings.APIKey = cfg.RiotAPIKey
		if cfg.RiotRegion != "" {
			settings.Region = model.ParseRegion(cfg.RiotRegion)
		}
	}
	a.settings = settings

	a.manager = blacklist.NewManager(entries, puuids, blacklist.Options{
		MatchCount:    cfg.MatchCount,
		ClientFactory: clientFactory(cfg),
		Logger:        logger,
	})
	a.manager.Configure(settings.APIKey, settings.Region)
	return a, nil
}

// openStores picks the blacklist backend: Postgres, then SQLite, then memory
// or CSV files. REDIS_URL moves the PUUID cache to Redis.
func (a *app) openStores(ctx context.Context) (store.BlacklistStore, store.PUUIDCache, error) {
	var (
		entries store.BlacklistStore
		puuids  store.PUUIDCache
	)
	switch {
	case a.cfg.PostgresDSN != "":
		pg, err := store.NewPostgresStore(a.cfg.PostgresDSN, store.PostgresOptions{MigrationsDir: a.cfg.MigrationsDir})
		if err != nil {
			return nil, nil, fmt.Errorf("postgres store: %w", err)
		}
		a.closers = append(a.closers, pg)
		entries, puuids = pg, pg
		a.logger.Info("using postgres store")
	case a.cfg.SQLitePath != "":
		db, err := store.NewSQLiteStore(a.cfg.SQLitePath, store.SQLiteOptions{MigrationsDir: a.cfg.MigrationsDir})
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite store: %w", err)
		}
		a.closers = append(a.closers, db)
		entries, puuids = db, db
		a.logger.Info("using sqlite store", "path", a.cfg.SQLitePath)
	case a.cfg.Store == "memory":
		mem := store.NewMemoryStore()
		entries, puuids = mem, mem
		a.logger.Info("using in-memory store")
	default:
		files, err := store.NewFileStore(store.FileOptions{
			BlacklistPath: a.cfg.BlacklistPath,
			CachePath:     a.cfg.CachePath,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("file store: %w", err)
		}
		entries, puuids = files, files
		a.logger.Debug("using file store", "blacklist", a.cfg.BlacklistPath, "cache", a.cfg.CachePath)
	}

	if a.cfg.RedisURL != "" {
		cache, err := store.NewRedisCache(ctx, a.cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		a.closers = append(a.closers, cache)
		puuids = cache
		a.logger.Info("using redis puuid cache")
	}
	return entries, puuids, nil
}

func clientFactory(cfg *config.Config) blacklist.ClientFactory {
	return func(apiKey string) *riot.Client {
		var opts []riot.Option
		if cfg.RiotBaseURL != "" {
			opts = append(opts, riot.WithBaseURL(cfg.RiotBaseURL))
		}
		return riot.NewClient(apiKey, opts...)
	}
}

// requireAPI fails CLI commands early when no key is configured.
func (a *app) requireAPI() error {
	if !a.manager.Configured() {
		return errNoAPIKey
	}
	return nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
}

func newLogger(level string, w io.Writer) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}
