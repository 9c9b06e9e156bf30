package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/wpup/conauth/config"
	"github.com/wpup/conauth/internal/email"
	"github.com/wpup/conauth/internal/health"
	"github.com/wpup/conauth/internal/infrastructure/postgres"
	ctxlog "github.com/wpup/conauth/internal/log"
	"github.com/wpup/conauth/internal/metrics"
	"github.com/wpup/conauth/internal/session"
	"github.com/wpup/conauth/internal/sweeper"
	httptransport "github.com/wpup/conauth/internal/transport/http"
	"github.com/wpup/conauth/internal/transport/http/handler"
	"github.com/wpup/conauth/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	directory := postgres.NewAccountRepository(pool)
	resolver := usecase.NewEmailResolver(directory, cfg.SharedDomains, logger)
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	sessions := session.NewJWTEstablisher([]byte(cfg.JWTSecret))

	loginUsecase := usecase.NewLoginUsecase(resolver, directory, sender, sessions, usecase.LoginConfig{
		TokenTTL:    cfg.TokenTTL(),
		LinkBase:    cfg.LoginLinkBase,
		ServiceName: cfg.ServiceName,
		CouchMode:   cfg.CouchMode,
	}, logger)
	loginHandler := handler.NewLoginHandler(loginUsecase, logger)

	if cfg.CouchMode {
		logger.Warn("couch mode enabled: sign-in links are returned to the requester")
	}

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	sweep, err := sweeper.New(directory, cfg.SweepCron, cfg.TokenTTL(), logger)
	if err != nil {
		stop()
		log.Fatalf("sweeper: %v", err)
	}
	go sweep.Start(ctx)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, loginHandler, []byte(cfg.JWTSecret)),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
