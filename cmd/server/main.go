package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/edward93/project-joke-web/internal/api"
	"github.com/edward93/project-joke-web/internal/factory"
	redisstorage "github.com/edward93/project-joke-web/internal/storage/redis"
)

func main() {
	if err := newCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCmd() *cobra.Command {
	serverCfg := api.DefaultServerConfig()
	storageType := envOrDefault("STORAGE_TYPE", factory.StorageTypeMemory)
	redisURL := os.Getenv("REDIS_URL")

	cmd := &cobra.Command{
		Use:           "jokeweb",
		Short:         "Coordinator for the collaborative Mad-Libs story game",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(serverCfg, storageType, redisURL)
		},
	}

	cmd.Flags().IntVar(&serverCfg.Port, "port", serverCfg.Port, "Listen port")
	cmd.Flags().StringVar(&serverCfg.Host, "host", serverCfg.Host, "Listen host")
	cmd.Flags().StringVar(&storageType, "storage", storageType, "Storage backend: memory, redis (env: STORAGE_TYPE)")
	cmd.Flags().StringVar(&redisURL, "redis-url", redisURL, "Redis connection URL (env: REDIS_URL)")

	return cmd
}

func run(serverCfg api.ServerConfig, storageType, redisURL string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := factory.Config{
		Logger:      logger,
		StorageType: storageType,
	}

	if storageType == factory.StorageTypeRedis {
		if redisURL == "" {
			logger.Error("REDIS_URL required when storage backend is redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return err
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Dispatcher: app.Dispatcher,
	})

	server := api.NewServer(router, serverCfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
