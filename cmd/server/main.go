package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"energy-advisor/internal/config"
	"energy-advisor/internal/handler"
	"energy-advisor/internal/repository"
	"energy-advisor/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging.Development)
	defer logger.Sync()
	log := logger.Sugar()

	log.Infof("Energy Advisor %s (built %s)", Version, BuildTime)

	gin.SetMode(cfg.Server.GinMode)

	store, err := newSessionStore(cfg, log)
	if err != nil {
		log.Fatalf("failed to initialize session store: %v", err)
	}
	defer store.Close()
	log.Infof("✅ Session store ready (%s)", cfg.Session.Store)

	aiClient := service.NewOpenAIClient(cfg.OpenAI, log)
	if cfg.OpenAI.Enabled() {
		log.Infof("✅ AI client initialized (model: %s, base: %s)", cfg.OpenAI.Model, cfg.OpenAI.APIBase)
	} else {
		log.Warn("⚠️  OPENAI_API_KEY is not set - extraction and narrative generation will degrade to fixed prompts")
	}

	geocoder := service.NewGeocodeClient(cfg.Geocode, log)
	dataAPI := service.NewDataAPIClient(cfg.DataAPI, log)

	var strategy service.ScoringStrategy = service.DeterministicScoring{}
	if cfg.Scoring.Mode == config.ScoringAIDelegated {
		strategy = service.NewAIDelegatedScoring(aiClient)
	}
	log.Infof("✅ Scoring strategy: %s", cfg.Scoring.Mode)

	orchestrator := service.NewOrchestrator(
		store,
		service.NewCollectorStage(aiClient, geocoder, dataAPI, log),
		service.NewAnalysisStage(strategy, log),
		service.NewCalculationStage(log),
		service.NewReportStage(aiClient, log),
		log,
	)
	agentHandler := handler.NewAgentHandler(orchestrator)

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "energy-advisor",
			"version": Version,
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/agent/start", agentHandler.Start)
		apiV1.POST("/agent/message", agentHandler.Message)
		apiV1.GET("/agent/status/:id", agentHandler.Status)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		log.Infof("🚀 Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("server shutdown: %v", err)
	}
	log.Info("✅ Server stopped")
}

func newLogger(development bool) *zap.Logger {
	if development {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}

func newSessionStore(cfg *config.Config, log *zap.SugaredLogger) (repository.SessionStore, error) {
	switch cfg.Session.Store {
	case config.StorePostgres:
		return repository.NewPostgresStore(cfg.Session.DatabaseURL)
	case config.StoreMemory:
		return repository.NewMemoryStore(cfg.Session.TTL, log), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}
