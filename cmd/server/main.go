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

	"listing-forge/internal/config"
	"listing-forge/internal/export"
	"listing-forge/internal/gemini"
	"listing-forge/internal/generate"
	"listing-forge/internal/httpclient"
	"listing-forge/internal/project"
	"listing-forge/internal/retry"
	"listing-forge/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg)

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout(),
	})

	gem := gemini.New(gemini.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		APIVersion: cfg.GeminiAPIVersion,
		TextModel:  cfg.TextModel,
		ImageModel: cfg.ImageModel,
		HTTPClient: httpClient,
		Logger:     logger,
	})

	generator := generate.New(generate.Options{
		Client: gem,
		Policy: retry.Policy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.RetryBaseDelay(),
			Retryable:  retry.IsRateLimit,
		},
		Logger: logger,
	})

	store := newStore(cfg, logger)
	saver := project.NewSaver(project.SaverOptions{
		Store:    store,
		Debounce: cfg.SaveDebounce(),
		Logger:   logger,
	})

	renderer := export.New(export.Options{
		Logger:      logger,
		WebP:        cfg.ExportWebP,
		WebPQuality: float32(cfg.ExportWebPQuality),
	})

	srv := server.New(server.Options{
		Generator:      generator,
		Store:          store,
		Saver:          saver,
		Renderer:       renderer,
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout(),
	})

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      cfg.RequestTimeout() + time.Minute,
		IdleTimeout:       90 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server started", "addr", cfg.ListenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
	saver.Flush(shutdownCtx)
}

// newStore prefers Redis when configured and reachable; otherwise the
// process runs on the in-memory store.
func newStore(cfg config.Config, logger *slog.Logger) project.Store {
	if cfg.RedisAddr == "" {
		logger.Info("no redis configured, using in-memory store")
		return project.NewMemoryStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	store := project.NewRedisStore(client)

	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		logger.Warn("redis unreachable, falling back to in-memory store", "addr", cfg.RedisAddr, "err", err)
		return project.NewMemoryStore()
	}

	logger.Info("using redis store", "addr", cfg.RedisAddr)
	return store
}

func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
