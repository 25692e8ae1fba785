package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"inventory/internal/config"
	"inventory/internal/database"
	"inventory/internal/logger"
	"inventory/internal/models"
	"inventory/internal/server"
	"inventory/internal/services"
	"inventory/pkg/rabbitmq"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), envFile)
		},
	}

	rootCmd := &cobra.Command{
		Use:           "inventory-api",
		Short:         "Product inventory HTTP service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveCmd.RunE,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	rootCmd.AddCommand(
		serveCmd,
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(envFile)
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Insert the starter products into an empty store",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSeed(cmd.Context(), envFile, cmd)
			},
		},
		&cobra.Command{
			Use:   "watch-events",
			Short: "Print product events published to RabbitMQ",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWatchEvents(cmd.Context(), envFile)
			},
		},
	)
	return rootCmd
}

func runServe(ctx context.Context, envFile string) error {
	env, err := bootstrap(envFile)
	if err != nil {
		return err
	}
	defer env.Close()
	log := env.log

	productService := services.NewProductService(env.repo, env.publisher)
	if env.cfg.SeedOnStartup {
		seeded, err := productService.SeedProducts(logger.WithContext(ctx, log))
		if err != nil {
			return err
		}
		if seeded > 0 {
			log.Info("Seeded starter products", zap.Int("count", seeded))
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app, err := server.NewApp(server.Options{
		Config:   env.cfg,
		Products: productService,
		Logger:   log,
		Registry: reg,
	})
	if err != nil {
		return err
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("addr", env.cfg.AppPort))
		listenErr <- app.Listen(env.cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	log.Info("Shutting down server")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error("Error during Fiber shutdown", zap.Error(err))
	}
	log.Info("Server gracefully stopped")
	return nil
}

func runMigrate(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	if cfg.Database.Driver == config.DriverMemory {
		return errors.New("migrate needs a database, DB_DRIVER is memory")
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)
	return database.Migrate(db)
}

func runSeed(ctx context.Context, envFile string, cmd *cobra.Command) error {
	env, err := bootstrap(envFile)
	if err != nil {
		return err
	}
	defer env.Close()

	seeded, err := services.NewProductService(env.repo, env.publisher).SeedProducts(logger.WithContext(ctx, env.log))
	if err != nil {
		return err
	}
	cmd.Printf("seeded %d products\n", seeded)
	return nil
}

func runWatchEvents(ctx context.Context, envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	if cfg.RabbitMQURL == "" {
		return errors.New("RABBITMQ_URL is not set")
	}
	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return err
	}
	defer log.Sync()

	client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return client.ConsumeProductEvents(ctx, func(event models.ProductEvent) error {
		log.Info("Product event",
			zap.String("type", event.Type),
			zap.Int64("product_id", event.ProductID),
			zap.String("sku", event.SKU),
			zap.Int("quantity", event.Quantity),
			zap.String("request_id", event.RequestID),
			zap.Time("occurred_at", event.OccurredAt))
		return nil
	})
}
