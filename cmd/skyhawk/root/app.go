package root

import (
	"context"
	"fmt"

	"github.com/tgienger/skyhawk/internal/builder"
	"github.com/tgienger/skyhawk/internal/config"
	"github.com/tgienger/skyhawk/internal/db"
	"github.com/tgienger/skyhawk/internal/logger"
)

// app holds everything a command opens: config, log file, database and
// the draft medium.
type app struct {
	cfg     config.Config
	log     *logger.Logger
	db      *db.DB
	medium  builder.Medium
	closers []func() error
}

func openApp(ctx context.Context, opts *options) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log}

	database, err := db.New(cfg.DBPath)
	if err != nil {
		log.Error("open database", "path", cfg.DBPath, "error", err)
		log.Sync()
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	a.db = database

	coach, err := database.SignIn(ctx, cfg.Coach)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("signing in %q: %w", cfg.Coach, err)
	}

	a.medium = a.openMedium()
	log.Info("skyhawk started",
		"version", version,
		"db", cfg.DBPath,
		"coach", coach.Name,
		"draft_backend", cfg.Draft.Backend,
	)
	return a, nil
}

// openMedium picks the draft medium. An unreachable redis is not fatal:
// the draft falls back to the local file so every edit is still written.
func (a *app) openMedium() builder.Medium {
	switch a.cfg.Draft.Backend {
	case config.DraftBackendRedis:
		m, err := builder.NewRedisMedium(builder.RedisOptions{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
			Key:      a.cfg.Redis.Key,
			Timeout:  a.cfg.Redis.Timeout,
		})
		if err != nil {
			a.log.Warn("redis draft backend unavailable, using the draft file", "addr", a.cfg.Redis.Addr, "path", a.cfg.Draft.Path, "error", err)
			return builder.NewFileMedium(a.cfg.Draft.Path)
		}
		a.closers = append(a.closers, m.Close)
		return m
	case config.DraftBackendMemory:
		return builder.NewMemoryMedium()
	}
	return builder.NewFileMedium(a.cfg.Draft.Path)
}

func (a *app) draftStore() *builder.DraftStore {
	return builder.NewDraftStore(a.medium, a.log)
}

func (a *app) committer() *builder.Committer {
	return builder.NewCommitter(a.db, a.log,
		builder.WithLongSessionMinutes(a.cfg.LongSessionMinutes),
		builder.WithTimeout(a.cfg.RemoteTimeout),
	)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("close database", "error", err)
		}
	}
	a.log.Sync()
}
