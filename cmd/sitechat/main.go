package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/liliang-cn/sitechat/internal/api"
	"github.com/liliang-cn/sitechat/internal/config"
	"github.com/liliang-cn/sitechat/internal/repository"
	"github.com/liliang-cn/sitechat/internal/service"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Requests fail at the completion call until the key is provided.
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration incomplete", zap.Error(err))
	}

	siteContext, err := repository.LoadSiteContext(cfg.Context.Path, cfg.Context.MaxBytes, logger)
	if err != nil {
		logger.Fatal("Failed to load site context", zap.Error(err))
	}

	formatter, err := service.NewAppointmentFormatter(cfg.Booking.Timezone)
	if err != nil {
		logger.Fatal("Failed to initialize appointment formatter", zap.Error(err))
	}

	completion := service.NewOpenAICompletion(service.CompletionConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	})

	opts := service.ChatServiceOptions{
		Prompt:     service.NewPromptAssembler(service.DefaultPersonaPrompt, siteContext.Text()),
		Completion: completion,
		Formatter:  formatter,
		Logger:     logger,
	}
	if cfg.BookingEnabled() {
		opts.Booking = service.NewWebhookBooking(cfg.Booking.WebhookURL, cfg.Booking.Timeout, logger)
	} else {
		logger.Info("Booking webhook not configured, booking intents are answered as text")
	}
	chatService := service.NewChatService(opts)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup router
	router := api.SetupRouter(chatService, logger, api.RouterConfig{
		AllowOrigins:    cfg.CORS.AllowOrigins,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		RateLimit:       cfg.RateLimit.Enabled,
		RequestsPerHour: cfg.RateLimit.RequestsPerHour,
		Burst:           cfg.RateLimit.Burst,
	})

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Starting SiteChat server",
			zap.String("address", cfg.Address()),
			zap.String("model", completion.Model()),
			zap.Strings("allow_origins", cfg.CORS.AllowOrigins),
			zap.Bool("booking_enabled", cfg.BookingEnabled()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zcfg.Build()
}
