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

	"github.com/portfolio/backend/internal/config"
	"github.com/portfolio/backend/internal/handler"
	"github.com/portfolio/backend/internal/logging"
	"github.com/portfolio/backend/internal/mailer"
	"github.com/portfolio/backend/internal/repository"
	"github.com/portfolio/backend/internal/service"
	"github.com/portfolio/backend/pkg/auth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("failed to load config", "error", err)
	}
	logging.Setup(cfg.LogLevel, cfg.Development())

	store, err := repository.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("failed to connect to database", "error", err)
	}
	defer store.Close()

	sender := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		FromName: cfg.MailFromName,
		Timeout:  cfg.SMTPTimeout,
	})
	if cfg.SMTPPassword == "" {
		slog.Warn("EMAIL_PASS is not set; contact notifications will fail")
	}
	contactService := service.NewContactService(store.Contacts, sender, cfg.OwnerEmail)

	limitStore, closeLimitStore := rateLimitStore(cfg.RedisURL)
	defer closeLimitStore()

	router := handler.NewRouter(handler.RouterConfig{
		DB:             store.DB,
		ContactService: contactService,
		FrontendURL:    cfg.FrontendURL,
		Detail:         handler.ErrorDetail{Development: cfg.Development()},
		RateLimiter:    handler.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow, limitStore, cfg.TrustedProxyCount),
		RequireAuth:    auth.RequireBearer([]byte(cfg.JWTSecret)),
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Two sequential SMTP round trips happen inside a submission.
		WriteTimeout: 2*cfg.SMTPTimeout + 10*time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr, "mode", cfg.Mode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// rateLimitStore returns a Redis-backed counter store when redisURL is set
// and reachable, and the in-process store otherwise.
func rateLimitStore(redisURL string) (handler.WindowStore, func()) {
	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			logging.Fatal("invalid REDIS_URL", "error", err)
		}
		rdb := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		err = rdb.Ping(ctx).Err()
		if err == nil {
			slog.Info("rate limiter using redis", "addr", opts.Addr)
			return handler.NewRedisStore(rdb), func() { _ = rdb.Close() }
		}
		slog.Warn("redis unreachable, rate limiting per process", "error", err)
		_ = rdb.Close()
	}
	mem := handler.NewMemoryStore()
	return mem, mem.Close
}
