// Command companion runs the offline-capable sync engine as a local
// daemon: it opens the embedded store, watches connectivity, and flushes
// buffered writes to the remote store whenever the connection returns.
// Chat exchanges are driven by the embedding application through the chat
// service; this process only hosts the background sync loop and metrics.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	appchat "github.com/alchemorsel/companion/internal/application/chat"
	appsync "github.com/alchemorsel/companion/internal/application/sync"
	"github.com/alchemorsel/companion/internal/infrastructure/ai"
	"github.com/alchemorsel/companion/internal/infrastructure/config"
	"github.com/alchemorsel/companion/internal/infrastructure/connectivity"
	gormstore "github.com/alchemorsel/companion/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/companion/internal/infrastructure/persistence/sqlite"
	"github.com/alchemorsel/companion/internal/infrastructure/remote"
	"github.com/alchemorsel/companion/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		Development: cfg.App.Environment == "development",
	})
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck

	db, err := sqlite.SetupDatabase(cfg.Database.Path, gormLogLevel(cfg.Database.LogLevel))
	if err != nil {
		zapLogger.Fatal("failed to open local store", zap.Error(err))
	}

	localStore := gormstore.NewLocalStore(db)
	tokens := remote.NewStaticTokenSource(cfg.Remote.Token)
	remoteStore := remote.NewClient(remote.Config{
		BaseURL: cfg.Remote.BaseURL,
		Timeout: cfg.Remote.Timeout,
	}, tokens, zapLogger)
	completions := ai.NewClient(ai.Config{
		CompletionURL:  cfg.AI.CompletionURL,
		RequestTimeout: cfg.AI.RequestTimeout,
	}, zapLogger)

	registry := prometheus.NewRegistry()
	reconciler := appsync.NewReconciler(localStore, remoteStore, zapLogger)
	scheduler := appsync.NewScheduler(localStore, remoteStore, reconciler, appsync.NewMetrics(registry), zapLogger)
	chatService := appchat.NewService(localStore, completions, remoteStore, zapLogger)

	probeURL := cfg.Sync.ProbeURL
	if probeURL == "" {
		probeURL = cfg.Remote.BaseURL + "/health"
	}
	observer := connectivity.NewPollingObserver(probeURL, cfg.Sync.ProbeInterval, zapLogger)
	scheduler.Register(observer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	observer.Start(ctx)

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{Addr: cfg.Sync.MetricsAddr, Handler: router}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Error("metrics server failed", zap.Error(err))
		}
	}()

	zapLogger.Info("companion engine started",
		zap.String("remote", cfg.Remote.BaseURL),
		zap.String("metrics", cfg.Sync.MetricsAddr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down")
	chatService.Shutdown(context.Background())
	observer.Stop()
	metricsServer.Shutdown(context.Background()) //nolint:errcheck
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "info":
		return gormlogger.Info
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}
