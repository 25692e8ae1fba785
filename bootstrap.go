package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"inventory/internal/config"
	"inventory/internal/database"
	"inventory/internal/logger"
	"inventory/internal/repositories"
	"inventory/internal/services"
	"inventory/pkg/rabbitmq"
)

// environment holds the long-lived dependencies shared by the commands.
type environment struct {
	cfg       *config.Config
	log       *zap.Logger
	repo      repositories.ProductRepository
	publisher services.EventPublisher
	closers   []func() error
}

// loadConfig reads envFile into the process environment, when it exists, and builds the Config.
func loadConfig(envFile string) (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	return config.Load(v)
}

// bootstrap loads the configuration and opens the logger, the product store and the event publisher.
func bootstrap(envFile string) (*environment, error) {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	zap.ReplaceGlobals(log)

	env := &environment{cfg: cfg, log: log}
	if err := env.openRepository(); err != nil {
		env.Close()
		return nil, err
	}
	env.openPublisher()
	return env, nil
}

func (e *environment) openRepository() error {
	if e.cfg.Database.Driver == config.DriverMemory {
		e.log.Warn("Using the in-memory product store, data is lost on exit")
		e.repo = repositories.NewMemoryProductRepository()
		return nil
	}

	db, err := database.Open(e.cfg.Database)
	if err != nil {
		return err
	}
	e.closers = append(e.closers, func() error { return database.Close(db) })

	if err := database.Migrate(db); err != nil {
		return err
	}
	e.log.Info("Database connected", zap.String("driver", e.cfg.Database.Driver))
	e.repo = repositories.NewGORMProductRepository(db)
	return nil
}

// openPublisher connects to RabbitMQ when configured. Events are best effort, so an
// unreachable broker only disables them.
func (e *environment) openPublisher() {
	e.publisher = services.NoopPublisher{}
	if e.cfg.RabbitMQURL == "" {
		return
	}

	client, err := rabbitmq.NewClient(rabbitmq.Config{URL: e.cfg.RabbitMQURL}, e.log)
	if err != nil {
		e.log.Warn("Product events disabled", zap.Error(err))
		return
	}
	e.closers = append(e.closers, client.Close)
	e.publisher = client
}

// Close releases resources in reverse order of acquisition.
func (e *environment) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.log.Error("Error during shutdown", zap.Error(err))
		}
	}
	_ = e.log.Sync()
}
