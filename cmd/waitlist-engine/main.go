// cmd/waitlist-engine/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/andeslee444/Project-H-sub007/internal/common/aws"
	"github.com/andeslee444/Project-H-sub007/internal/common/config"
	"github.com/andeslee444/Project-H-sub007/internal/common/database"
	"github.com/andeslee444/Project-H-sub007/internal/common/httpclient"
	"github.com/andeslee444/Project-H-sub007/internal/common/logger"
	"github.com/andeslee444/Project-H-sub007/internal/events"
	"github.com/andeslee444/Project-H-sub007/internal/matching"
	"github.com/andeslee444/Project-H-sub007/internal/models"
	"github.com/andeslee444/Project-H-sub007/internal/notifications/channels"
	"github.com/andeslee444/Project-H-sub007/internal/notifications/dispatcher"
	"github.com/andeslee444/Project-H-sub007/internal/notifications/preferences"
	"github.com/andeslee444/Project-H-sub007/internal/notifications/queue"
	"github.com/andeslee444/Project-H-sub007/internal/notifications/scheduler"
	"github.com/andeslee444/Project-H-sub007/internal/notifications/templates"
	"github.com/andeslee444/Project-H-sub007/internal/store"
	"github.com/andeslee444/Project-H-sub007/internal/waitlist"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)
	zapLog.Info("Starting waitlist engine...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Core components ---
	st := store.NewPostgresStore(pg.DB)
	contacts := store.NewPostgresContactDirectory(pg.DB)
	providers := store.NewPostgresProviderDirectory(pg.DB)
	bus := events.NewBus(log)

	registry := templates.NewRegistry(log)
	if path := cfg.Notifications.Templates.RegistryPath; path != "" {
		if err := registry.LoadFile(path); err != nil {
			zapLog.Fatal("template registry load failed", zap.Error(err), zap.String("path", path))
		}
		zapLog.Info("template overrides loaded", zap.String("path", path))
	}

	resolver := preferences.NewResolver(st, log)

	// --- Channel senders ---
	senders := []channels.Sender{channels.NewInAppSender(bus)}

	if cfg.Notifications.Email.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		senders = append(senders, channels.NewEmailSender(sesClient, contacts, cfg.Notifications.Email.FromEmail))
	}

	if cfg.Notifications.SMS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		senders = append(senders, channels.NewSMSSender(snsClient, contacts, cfg.Notifications.SMS.SenderID))
	}

	if cfg.Notifications.Push.Enabled {
		pushHTTP := httpclient.NewClient(config.GetDuration(cfg.Notifications.SendTimeout))
		senders = append(senders, channels.NewPushSender(pushHTTP, cfg.Notifications.Push.GatewayURL, cfg.Notifications.Push.APIKey))
	}

	sendTimeout := config.GetDuration(cfg.Notifications.SendTimeout)
	disp := dispatcher.New(st, bus, senders, sendTimeout, log)
	dispatchFn := func(ctx context.Context, n *models.Notification) error {
		_, err := disp.Dispatch(ctx, n)
		return err
	}

	delayQueue := queue.New(rdb.Client, log)
	sched := scheduler.New(registry, resolver, st, delayQueue, dispatchFn,
		cfg.Notifications.QuietHours.DefaultTimezone, log)

	ranker := matching.NewRanker(cfg.Matching.HandRaiseBoost)
	svc := waitlist.New(st, providers, ranker, sched, bus, cfg.Matching.TopN, log)

	listener := waitlist.NewListener(rdb.Client, svc, log)
	go listener.Run(ctx)

	worker := queue.NewWorker(delayQueue, st, queue.DispatchFunc(dispatchFn),
		config.GetDuration(cfg.Notifications.PollInterval), log)
	go worker.Run(ctx)

	zapLog.Info("waitlist engine components wired",
		zap.Int("channels", len(senders)),
		zap.Strings("templateTypes", registry.Types()),
	)

	// --- Health & Metrics Server ---
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			status := http.StatusOK
			if err := pg.Ping(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{
				"status": http.StatusText(status),
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		mux.Handle("/metrics", promhttp.Handler())

		metricsSrv = &http.Server{Addr: cfg.Metrics.Address, Handler: mux}
		go func() {
			zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				zapLog.Error("Health/Metrics server failed", zap.Error(err))
			}
		}()
	}

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("Health/Metrics server shutdown failed", zap.Error(err))
		}
	}

	zapLog.Info("Waitlist engine stopped gracefully")
}
