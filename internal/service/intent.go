package service

import (
	"encoding/json"
	"strings"

	"github.com/liliang-cn/sitechat/internal/domain"
)

// BookingIntent is a completion that parsed as a booking request.
// Raw holds the exact JSON forwarded to the webhook.
type BookingIntent struct {
	Request domain.BookingRequest
	Raw     json.RawMessage
}

// DetectBookingIntent classifies completion text. It returns ok=false for
// anything that is not a JSON object whose intent is book_appointment;
// parse failures are a plain answer, not an error.
func DetectBookingIntent(text string) (*BookingIntent, bool) {
	candidate := stripCodeFence(strings.TrimSpace(text))
	if !strings.HasPrefix(candidate, "{") {
		return nil, false
	}

	var head struct {
		Intent string `json:"intent"`
	}
	if err := json.Unmarshal([]byte(candidate), &head); err != nil {
		return nil, false
	}
	if head.Intent != domain.IntentBookAppointment {
		return nil, false
	}

	// Mistyped fields are left zero; the webhook validates the payload itself.
	var req domain.BookingRequest
	_ = json.Unmarshal([]byte(candidate), &req)
	req.Intent = head.Intent

	return &BookingIntent{Request: req, Raw: json.RawMessage(candidate)}, true
}

// stripCodeFence removes a surrounding ```json ... ``` block some models emit
// despite being told not to.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		lang := strings.TrimSpace(inner[:nl])
		if lang == "" || strings.EqualFold(lang, "json") {
			inner = inner[nl+1:]
		}
	}
	return strings.TrimSpace(inner)
}
