package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/liliang-cn/sitechat/internal/domain"
	"go.uber.org/zap"
)

// Recovery catches panics, logs them and answers with a generic 500.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger(c, logger).Error("Unhandled panic", zap.Any("error", err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, domain.ErrorResponse{
					Error: "Error interno en el servidor",
				})
			}
		}()
		c.Next()
	}
}
