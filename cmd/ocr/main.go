package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/comunavision/backend/internal/config"
	"github.com/comunavision/backend/internal/database"
	"github.com/comunavision/backend/internal/logger"
	"github.com/comunavision/backend/internal/metrics"
	"github.com/comunavision/backend/internal/ocr"
	"github.com/comunavision/backend/internal/services"
	"github.com/comunavision/backend/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logDir := filepath.Join(filepath.Dir(cfg.DatabasePath), "logs")
	_ = os.MkdirAll(logDir, 0o755)

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "comunavision-ocr.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	logger.Init(cfg.Environment == "development", io.MultiWriter(os.Stdout, rotator))

	logger.Log().Infof("starting %s OCR service %s", version.Name, version.Full())

	// The registry database is optional here; without it failures are only
	// logged instead of surfacing as in-app notifications.
	var notifier *services.NotificationService
	if db, err := database.Open(cfg.DatabasePath); err == nil {
		notifier = services.NewNotificationService(db, cfg.NotifyURLs)
	} else {
		logger.Log().WithError(err).Warn("registry database unavailable, notifications disabled")
	}

	engine := &ocr.Hybrid{
		Secondary: ocr.NewTesseractEngine(cfg.TesseractCmd),
	}
	if cfg.OCRSidecarURL != "" {
		engine.Primary = ocr.NewSidecarEngine(cfg.OCRSidecarURL)
	}

	scanner := &ocr.Scanner{
		Engine:     engine,
		Normalizer: ocr.NewNormalizer(cfg.GeminiAPIKey, cfg.GeminiModel),
		StorageDir: cfg.StorageDir,
		Opts: ocr.Options{
			UseGeminiAlways: cfg.UseGeminiAlways,
			MinConfidence:   cfg.FallbackMinConf,
			MinTextLen:      cfg.FallbackMinTextLen,
		},
		Notifier: notifier,
	}

	sweeper := ocr.NewSweeper(cfg.StorageDir, cfg.ImageRetention)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("start retention sweeper: %v", err)
	}
	defer sweeper.Stop()

	gin.SetMode(gin.ReleaseMode)
	if cfg.Environment == "development" {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	scanner.RegisterRoutes(router)

	registry := prometheus.NewRegistry()
	metrics.Register(registry)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.OCRPort),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Log().Infof("OCR service listening on :%s", cfg.OCRPort)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Fatalf("graceful shutdown: %v", err)
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}
}
