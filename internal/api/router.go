package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/liliang-cn/sitechat/internal/api/middleware"
	"github.com/liliang-cn/sitechat/internal/api/widget"
	"github.com/liliang-cn/sitechat/internal/domain"
	"go.uber.org/zap"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	AllowOrigins    []string
	MaxBodyBytes    int64
	RateLimit       bool
	RequestsPerHour int
	Burst           int
}

// SetupRouter sets up the Gin router
func SetupRouter(chatService widget.ChatService, logger *zap.Logger, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recovery(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(middleware.CORS(cfg.AllowOrigins))
	if cfg.RateLimit {
		api.Use(middleware.RateLimit(cfg.RequestsPerHour, cfg.Burst, logger))
	}

	widgetHandler := widget.NewHandler(chatService, cfg.MaxBodyBytes, logger)
	widgetHandler.RegisterRoutes(api)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, domain.ErrorResponse{Error: "Not found"})
	})

	return r
}
