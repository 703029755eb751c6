package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/metrics"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/adapters/sqlite"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// app bundles everything a command needs: configuration, logger, the engine
// and the adapters behind it.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	engine   *arbor.Engine
	fixture  *memory.Source
	cache    *redis.Cache
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	closers  []io.Closer
}

// loadConfig merges the config file, ARBOR_* variables and persistent flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, os.Environ())
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Database, _ = flags.GetString("db")
	}
	if flags.Changed("fixture") {
		cfg.Fixture, _ = flags.GetString("fixture")
	}
	if flags.Changed("redis") {
		cfg.Redis.Addr, _ = flags.GetString("redis")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}
	return cfg, cfg.Validate()
}

// openApp wires the dataset, the optional cache and the metrics into an engine.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:    cfg,
		logger: logging.NewWithWriter(cmd.ErrOrStderr(), level, cfg.LogFormat),
	}

	var ds ports.Dataset
	label := cfg.Database
	if cfg.Fixture != "" {
		src, err := memory.NewFromFile(cfg.Fixture, memory.WithLogger(a.logger))
		if err != nil {
			return nil, err
		}
		a.fixture = src
		ds = src
		label = cfg.Fixture
	} else {
		db, err := sqlite.Open(cfg.Database)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db)
		ds = db
	}

	if cfg.Redis.Addr != "" {
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.cache = redis.NewFromClient(client, ds,
			redis.WithTTL(cfg.Redis.TTL),
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithLogger(a.logger),
		)
		if err := a.cache.Ping(cmd.Context()); err != nil {
			a.logger.Warn("Redis unreachable, reads go straight to the dataset", "addr", cfg.Redis.Addr, "err", err)
		}
		a.closers = append(a.closers, a.cache)
		ds = a.cache
	}

	a.registry = prometheus.NewRegistry()
	a.metrics = metrics.New(a.registry)

	a.engine, err = arbor.New(label,
		arbor.WithSource(ds),
		arbor.WithLogger(a.logger),
		arbor.WithLifecycleHooks(a.metrics.Hooks()),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the adapters in reverse order.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	return errors.Join(errs...)
}

// watchFixture reloads the fixture on change and drops stale cache entries.
func (a *app) watchFixture(ctx context.Context) error {
	if a.fixture == nil {
		return fmt.Errorf("--watch needs a fixture dataset")
	}
	reloads, err := a.fixture.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for range reloads {
			if a.cache != nil {
				if err := a.cache.Flush(ctx); err != nil {
					a.logger.Warn("Cache flush failed", "err", err)
				}
			}
			a.logger.Info("Fixture reloaded", "path", a.cfg.Fixture)
		}
	}()
	return nil
}

// parseKey accepts "12:5" or "12 5".
func parseKey(args []string) (domain.NodeKey, error) {
	parts := args
	if len(args) == 1 {
		parts = strings.SplitN(args[0], ":", 2)
	}
	if len(parts) != 2 {
		return domain.NodeKey{}, fmt.Errorf("%w: expected <conversation>:<dialogue>", domain.ErrInvalidKey)
	}
	conv, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return domain.NodeKey{}, fmt.Errorf("%w: conversation id %q", domain.ErrInvalidKey, parts[0])
	}
	dlg, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return domain.NodeKey{}, fmt.Errorf("%w: dialogue id %q", domain.ErrInvalidKey, parts[1])
	}
	key := domain.NodeKey{ConversationID: conv, DialogueID: dlg}
	return key, key.Validate()
}

// keyArgs validates the positional key arguments.
func keyArgs(cmd *cobra.Command, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("expected a node key as <conversation>:<dialogue> or <conversation> <dialogue>")
	}
	return nil
}
