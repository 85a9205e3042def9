package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/liliang-cn/sitechat/internal/api/middleware"
	"github.com/liliang-cn/sitechat/internal/domain"
	"go.uber.org/zap"
)

const internalErrorMessage = "Error interno en el servidor"

// ChatService answers a validated chat request
type ChatService interface {
	Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error)
}

// Handler handles widget API requests
type Handler struct {
	chatService  ChatService
	maxBodyBytes int64
	logger       *zap.Logger
}

// NewHandler creates a new widget handler
func NewHandler(chatService ChatService, maxBodyBytes int64, logger *zap.Logger) *Handler {
	return &Handler{
		chatService:  chatService,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// RegisterRoutes registers widget routes. Every method reaches Chat so that
// unsupported ones get a JSON 405 instead of a bare 404.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.Any("/chat", h.Chat)
}

// Chat handles a chat message
func (h *Handler) Chat(c *gin.Context) {
	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusOK)
		return
	}
	if c.Request.Method != http.MethodPost {
		_ = c.Error(domain.ErrMethodNotAllowed)
		c.JSON(http.StatusMethodNotAllowed, domain.ErrorResponse{Error: "Method not allowed", Hint: "Use POST"})
		return
	}

	logger := middleware.Logger(c, h.logger)

	body := c.Request.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(c.Writer, body, h.maxBodyBytes)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: "No se ha podido leer el cuerpo de la petición"})
		return
	}

	req, err := ParseChatRequest(data)
	if err != nil {
		logger.Debug("Rejected chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.chatService.Chat(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConfiguration):
			logger.Error("Chat failed: service misconfigured", zap.Error(err))
		case errors.Is(err, domain.ErrUpstream):
			logger.Error("Chat failed: completion provider error", zap.Error(err))
		default:
			logger.Error("Chat failed", zap.Error(err))
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, domain.ErrorResponse{Error: internalErrorMessage})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ParseChatRequest decodes and validates a chat body. The body may be the
// JSON object itself or a JSON string holding it.
func ParseChatRequest(data []byte) (*domain.ChatRequest, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, domain.NewValidationError("el cuerpo no es JSON válido")
		}
		data = bytes.TrimSpace([]byte(inner))
	}
	if len(data) == 0 {
		return nil, domain.NewValidationError(`falta el campo "messages"`)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, domain.NewValidationError("el cuerpo no es JSON válido")
	}

	raw, ok := fields["messages"]
	raw = bytes.TrimSpace(raw)
	if !ok || len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, domain.NewValidationError(`falta el campo "messages"`)
	}
	if raw[0] != '[' {
		return nil, domain.NewValidationError(`"messages" debe ser una lista`)
	}

	var req domain.ChatRequest
	if err := json.Unmarshal(raw, &req.Messages); err != nil {
		return nil, domain.NewValidationError(`"messages" contiene entradas no válidas`)
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		if len(req.Messages) == 0 {
			return nil, domain.NewValidationError(`"messages" no puede estar vacío`)
		}
		return nil, domain.NewValidationError(`cada mensaje necesita un "role" válido (system, user o assistant)`)
	}

	return &req, nil
}
