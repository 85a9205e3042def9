package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/liliang-cn/sitechat/internal/domain"
	"go.uber.org/zap"
)

// BookingOutcome is the webhook result plus the body to pass through to the widget
type BookingOutcome struct {
	Result domain.BookingResult
	Raw    json.RawMessage
}

// BookingProvider turns a booking intent into a calendar event
type BookingProvider interface {
	Book(ctx context.Context, intent *BookingIntent) *BookingOutcome
}

// WebhookBooking forwards booking intents to a workflow-automation webhook
type WebhookBooking struct {
	url    string
	client *resty.Client
	logger *zap.Logger
}

// NewWebhookBooking creates a booking client for the given webhook URL
func NewWebhookBooking(url string, timeout time.Duration, logger *zap.Logger) *WebhookBooking {
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")

	return &WebhookBooking{
		url:    url,
		client: client,
		logger: logger,
	}
}

// Book posts the intent verbatim and interprets the reply. It never fails:
// transport errors and unusable bodies become a BAD_GATEWAY result.
func (b *WebhookBooking) Book(ctx context.Context, intent *BookingIntent) *BookingOutcome {
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody([]byte(intent.Raw)).
		Post(b.url)
	if err != nil {
		b.logger.Error("Booking webhook request failed", zap.Error(domain.UpstreamError("booking", err)))
		return badGateway("")
	}

	body := bytes.TrimSpace(resp.Body())
	if resp.IsError() {
		b.logger.Warn("Booking webhook returned error status",
			zap.Int("status", resp.StatusCode()),
			zap.Int("body_bytes", len(body)),
		)
	}

	return parseBookingBody(body, b.logger)
}

func parseBookingBody(body []byte, logger *zap.Logger) *BookingOutcome {
	if len(body) == 0 || body[0] != '{' {
		logger.Warn("Booking webhook returned a non-JSON body", zap.Int("body_bytes", len(body)))
		return badGateway("")
	}
	if !json.Valid(body) {
		logger.Warn("Booking webhook returned invalid JSON", zap.Int("body_bytes", len(body)))
		return badGateway("")
	}

	// A field of an unexpected type stays zero; the rest of the result is kept.
	var result domain.BookingResult
	if err := json.Unmarshal(body, &result); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			logger.Warn("Booking webhook returned invalid JSON", zap.Error(err))
			return badGateway("")
		}
		logger.Warn("Booking webhook result has mistyped fields", zap.Error(err))
	}

	return &BookingOutcome{Result: result, Raw: json.RawMessage(body)}
}

func badGateway(message string) *BookingOutcome {
	result := domain.BookingResult{
		OK:      false,
		Code:    domain.CodeBadGateway,
		Message: message,
	}
	raw, _ := json.Marshal(result)
	return &BookingOutcome{Result: result, Raw: raw}
}
