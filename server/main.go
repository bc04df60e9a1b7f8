package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phambaophuc/watermark-bot/internal/bot"
	"github.com/phambaophuc/watermark-bot/internal/config"
	"github.com/phambaophuc/watermark-bot/internal/http/handlers"
	"github.com/phambaophuc/watermark-bot/internal/http/routes"
	"github.com/phambaophuc/watermark-bot/internal/metrics"
	"github.com/phambaophuc/watermark-bot/internal/services/preference"
	"github.com/phambaophuc/watermark-bot/internal/services/processor"
	"github.com/phambaophuc/watermark-bot/internal/services/queue"
	"github.com/phambaophuc/watermark-bot/internal/services/storage"
	"github.com/phambaophuc/watermark-bot/internal/services/style"
	"github.com/phambaophuc/watermark-bot/internal/services/watermark"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	metrics.MustRegister()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize services
	imageProcessor := processor.NewImageProcessor(logger)

	resolver, err := style.NewResolver(cfg.Palette(), cfg.Watermark.DefaultColor)
	if err != nil {
		logger.Fatal("Invalid watermark palette", zap.Error(err))
	}

	storageService, err := storage.NewStorageService(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage service", zap.Error(err))
	}
	defer storageService.Close()
	storageService.StartCacheCleanup(ctx, cfg.Storage.CleanupInterval, logger)

	watermarkService := watermark.NewService(imageProcessor, resolver, cfg, storageService, logger)

	queueService, err := queue.NewQueueService(cfg.RabbitMQ.URL, watermarkService, storageService, cfg.Storage.MaxFileSize, logger)
	if err != nil {
		logger.Warn("Failed to initialize queue service", zap.Error(err))
		// Continue without queue service for basic functionality
		queueService = nil
	} else {
		defer queueService.Close()
		for i := 0; i < cfg.RabbitMQ.Workers; i++ {
			go func(id int) {
				if err := queueService.StartWorker(ctx, id); err != nil {
					logger.Error("Queue worker stopped", zap.Int("worker_id", id), zap.Error(err))
				}
			}(i)
		}
	}

	startBot(ctx, cfg, watermarkService, resolver, storageService, logger)

	// Initialize handlers
	imageHandler := handlers.NewImageHandler(watermarkService, storageService, queueService, logger, cfg)

	router := routes.NewRouter(imageHandler, logger, cfg.Storage.MaxFileSize*10)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	go func() {
		logger.Info("Starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// startBot runs the Telegram bot in the background. A missing token only
// disables the bot.
func startBot(
	ctx context.Context,
	cfg *config.Config,
	renderer bot.Watermarker,
	resolver *style.Resolver,
	storageService *storage.StorageService,
	logger *zap.Logger,
) {
	if cfg.Telegram.Token == "" {
		logger.Warn("TELEGRAM_TOKEN is not set, bot disabled")
		return
	}

	var prefs preference.Store = preference.NewMemoryStore()
	if cfg.Telegram.PreferenceBackend == "redis" {
		prefs = preference.NewRedisStore(storageService.Redis(), cfg.Telegram.PreferenceTTL)
	}

	b, err := bot.NewTelegram(cfg.Telegram.Token, renderer, resolver, prefs, logger, bot.Options{
		Workers:              cfg.Telegram.Workers,
		MaxConcurrentRenders: cfg.Telegram.MaxConcurrentRenders,
		MaxFileSize:          cfg.Storage.MaxFileSize,
	})
	if err != nil {
		logger.Error("Failed to start Telegram bot", zap.Error(err))
		return
	}

	go func() {
		logger.Info("Telegram bot polling",
			zap.String("preferences", cfg.Telegram.PreferenceBackend),
			zap.Int("workers", cfg.Telegram.Workers))
		if err := b.Run(ctx); err != nil && err != context.Canceled {
			logger.Error("Telegram bot stopped", zap.Error(err))
		}
	}()
}
