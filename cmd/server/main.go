package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ChaseRain/logomotion/internal/api"
	"github.com/ChaseRain/logomotion/internal/infra/config"
	"github.com/ChaseRain/logomotion/internal/infra/credential"
	"github.com/ChaseRain/logomotion/internal/infra/genaiclient"
	"github.com/ChaseRain/logomotion/internal/infra/httpclient"
	"github.com/ChaseRain/logomotion/internal/infra/limiter"
	"github.com/ChaseRain/logomotion/internal/infra/logger"
	"github.com/ChaseRain/logomotion/internal/service/gate"
	"github.com/ChaseRain/logomotion/internal/service/imagegen"
	"github.com/ChaseRain/logomotion/internal/service/orchestrator"
	"github.com/ChaseRain/logomotion/internal/service/videogen"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to read .env: %v", err)
	}

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Init logger
	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	// Init HTTP client
	httpClient := httpclient.New(httpclient.Options{
		Timeout:    time.Duration(cfg.HTTPClient.TimeoutSeconds) * time.Second,
		MaxRetries: cfg.HTTPClient.MaxRetries,
	})

	// Init limiter
	lim := limiter.New(cfg.Limiter.MaxConcurrent, cfg.Limiter.RatePerSecond)

	// Session gate and the credential it guards
	store := credential.NewStore(cfg.Gemini.APIKey, cfg.Gemini.DotenvPath)
	sessionGate := gate.New(store, zapLogger)

	// Init services
	connector := genaiclient.NewFactory(store, nil)
	imageGenSvc := imagegen.New(connector, cfg.Gemini.ImageModel, zapLogger)
	videoGenSvc := videogen.New(connector, videogen.Options{
		Model:        cfg.Gemini.VideoModel,
		Resolution:   cfg.Video.Resolution,
		PollInterval: cfg.Video.PollInterval,
		MaxPolls:     cfg.Video.MaxPolls,
		MaxDuration:  cfg.Video.MaxDuration,
	}, zapLogger)

	// Init orchestrator
	orch := orchestrator.New(imageGenSvc, videoGenSvc, lim, zapLogger)

	// Init router
	router := api.NewRouter(orch, sessionGate, store, httpClient, zapLogger)

	// Create server
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	// Start server
	go func() {
		zapLogger.Info("starting server", "addr", cfg.Server.Addr, "image_model", cfg.Gemini.ImageModel, "video_model", cfg.Gemini.VideoModel)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Error("server error", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server forced to shutdown", "error", err)
	}
	zapLogger.Info("server stopped")
}
