// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"outfit-advisor/internal/api"
	"outfit-advisor/internal/common/cache"
	"outfit-advisor/internal/common/config"
	"outfit-advisor/internal/common/logger"
	"outfit-advisor/internal/common/observability"
	"outfit-advisor/internal/imagesearch"
	"outfit-advisor/internal/recommend"
	"outfit-advisor/internal/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting outfit-advisor server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New("outfit-advisor")
	defer obs.Shutdown()

	// --- Cache (optional) ---
	imageCache := cache.New(cfg.Cache)
	if imageCache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := imageCache.Ping(ctx); err != nil {
			zapLog.Warn("redis unreachable, continuing without cache", zap.Error(err))
			imageCache = nil
		} else {
			zapLog.Info("Redis cache connected")
			defer imageCache.Close()
		}
		cancel()
	} else {
		zapLog.Info("Cache disabled, no redis address configured")
	}

	// --- Model provider chain ---
	// Order matters: Groq is primary, OpenRouter the fallback. A provider
	// with no credential never enters the chain.
	var providers []vision.Provider
	if cfg.Vision.Groq.APIKey != "" {
		providers = append(providers, vision.NewGroq(cfg.Vision.Groq, log))
	}
	if cfg.Vision.OpenRouter.APIKey != "" {
		providers = append(providers, vision.NewOpenRouter(cfg.Vision.OpenRouter, log))
	}
	if len(providers) == 0 {
		zapLog.Fatal("no model provider configured, set GROQ_API_KEY or OPENROUTER_API_KEY")
	}
	zapLog.Info("Model providers configured", zap.Int("count", len(providers)))

	// --- Image search chain ---
	images := imagesearch.New(cfg.ImageSearch, imageCache, log)

	// --- Pipeline + HTTP surface ---
	engine := recommend.NewEngine(providers, images, log)
	server := api.NewServer(cfg.App, cfg.Server, engine, images, log)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.NewRouter(server, obs),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
		IdleTimeout:  config.GetDuration(cfg.Server.IdleTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error during shutdown", zap.Error(err))
	}

	zapLog.Info("Server stopped gracefully")
}
