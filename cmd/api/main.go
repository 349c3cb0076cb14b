package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/pollrelay/internal/config"
	"github.com/hamed0406/pollrelay/internal/httpapi"
	apimw "github.com/hamed0406/pollrelay/internal/httpapi/middleware"
	"github.com/hamed0406/pollrelay/internal/logging"
	"github.com/hamed0406/pollrelay/internal/metrics"
	"github.com/hamed0406/pollrelay/internal/notify"
	"github.com/hamed0406/pollrelay/internal/poll"
	"github.com/hamed0406/pollrelay/internal/probe"
	"github.com/hamed0406/pollrelay/internal/repo/memory"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(logging.Options{
		Dir:         cfg.LogDir,
		Level:       cfg.LogLevel,
		Development: cfg.LogDevelopment,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	prober := probe.NewHTTPProber(cfg.AttemptTimeout, cfg.MaxBodyBytes, cfg.UserAgent)
	defer prober.Close()

	history := memory.New(cfg.HistorySize)

	ex := poll.NewExecutor(logger, prober, cfg.Budget())
	ex.Recorder = metrics.NewPollRecorder()
	ex.History = history
	alerts := notify.Multi{notify.Log{Logger: logger}}
	if s := notify.NewSlack(cfg.SlackWebhook); s != nil {
		alerts = append(alerts, s)
	}
	ex.Notifier = alerts

	api := httpapi.NewServer(logger, ex, history)
	handler := api.Router(httpapi.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		Keys:           apimw.Keys{Public: cfg.PublicAPIKeys},
		RateLimitRPM:   cfg.RateLimitRPM,
		RateLimitBurst: cfg.RateLimitBurst,
		Metrics:        true,
	})

	// A poll request may legitimately hold its connection for the whole budget.
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.MaxSequenceDuration() + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("api_listen",
			zap.String("addr", cfg.Addr),
			zap.Int("max_attempts", cfg.MaxAttempts),
			zap.Duration("delay", cfg.PollDelay),
			zap.Duration("attempt_timeout", cfg.AttemptTimeout),
			zap.Bool("auth", len(cfg.PublicAPIKeys) > 0),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("api_listen_failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("api_shutdown", zap.Duration("grace", cfg.ShutdownGrace))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("api_shutdown_incomplete", zap.Error(err))
	}
}
