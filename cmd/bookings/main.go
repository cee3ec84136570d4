package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tirecarstore/internal/cli"
	"tirecarstore/internal/config"
	"tirecarstore/internal/domain"
	"tirecarstore/internal/events"
	"tirecarstore/internal/logging"
	"tirecarstore/internal/metrics"
	"tirecarstore/internal/repository"
	"tirecarstore/internal/seed"
	"tirecarstore/internal/store"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to config.yaml (defaults are used when empty)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config path] <command> [args]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, logger, closer, err := loadConfigAndLogger(*configPath)
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, sqliteStorage, cleanup, err := initStorage(cfg, &logger)
	if err != nil {
		return err
	}
	defer cleanup()

	var opts []store.Option
	opts = append(opts, store.WithKey(cfg.Storage.Key))
	if cfg.Monitoring.MetricsEnabled {
		metrics.Register()
		opts = append(opts, store.WithRecorder(metrics.Recorder{}))
		defer writeMetrics(cfg.Monitoring.TextfilePath, &logger)
	}

	eventBus := events.NewEventBus()
	bookingStore := store.New(storage, seed.New(cfg.Seed.Path), eventBus, logging.Component(&logger, "store"), opts...)
	if err := bookingStore.Load(ctx); err != nil {
		return fmt.Errorf("load bookings: %w", err)
	}

	runner := cli.NewRunner(bookingStore, os.Stdout, cfg.Exports.Path, logging.Component(&logger, "cli"))
	runner.Notify(eventBus)
	if sqliteStorage != nil {
		runner.EnableBackups(repository.NewBackupService(sqliteStorage, cfg.Backup, logging.Component(&logger, "backup")))
	}

	return runner.Run(ctx, flag.Args())
}

func loadConfigAndLogger(configPath string) (*config.Config, zerolog.Logger, io.Closer, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "bookings-main").Logger()

	return cfg, logger, closer, nil
}

// initStorage opens the configured backend. A sqlite backend that cannot be
// opened degrades to memory when fallback is on, like a failed write does later.
// The sqlite handle is returned separately for backups and is nil otherwise.
func initStorage(cfg *config.Config, logger *zerolog.Logger) (domain.KeyValueStorage, *repository.SQLiteStorage, func(), error) {
	noop := func() {}

	if cfg.Storage.Backend == config.BackendMemory {
		logger.Warn().Msg("memory storage selected, bookings will not survive this session")
		return repository.NewMemoryStorage(), nil, noop, nil
	}

	sqliteStorage, err := repository.NewSQLiteStorage(cfg.Storage.Path, logging.Component(logger, "sqlite"))
	if err != nil {
		if !cfg.Storage.UseFallback() {
			return nil, nil, noop, fmt.Errorf("init storage: %w", err)
		}
		logger.Error().Err(err).Str("path", cfg.Storage.Path).Msg("sqlite storage unavailable, continuing with memory")
		return repository.NewMemoryStorage(), nil, noop, nil
	}
	cleanup := func() { _ = sqliteStorage.Close() }

	if !cfg.Storage.UseFallback() {
		return sqliteStorage, sqliteStorage, cleanup, nil
	}
	failover := repository.NewFailoverStorage(sqliteStorage, repository.NewMemoryStorage(), logging.Component(logger, "storage"))
	return failover, sqliteStorage, cleanup, nil
}

func writeMetrics(path string, logger *zerolog.Logger) {
	if err := metrics.WriteTextfile(path); err != nil {
		logger.Error().Err(err).Str("path", path).Msg("metrics textfile write failed")
	}
}
