package service

import (
	"testing"
)

func TestDetectBookingIntent(t *testing.T) {
	booking := `{"intent":"book_appointment","user":{"name":"Ana","email":"ana@example.com","phone":"600000000"},"constraints":{"durationMinutes":30,"fromDate":"2025-06-09","toDate":"2025-06-13","timeWindow":{"start":"09:00","end":"14:00"},"timezone":"Europe/Madrid"},"notes":"revisión"}`

	tests := []struct {
		name      string
		text      string
		wantOK    bool
		wantEmail string
	}{
		{name: "plain text", text: "Abrimos de lunes a viernes.", wantOK: false},
		{name: "empty", text: "", wantOK: false},
		{name: "booking json", text: booking, wantOK: true, wantEmail: "ana@example.com"},
		{name: "booking json with whitespace", text: "\n  " + booking + "\n", wantOK: true, wantEmail: "ana@example.com"},
		{name: "booking json in code fence", text: "```json\n" + booking + "\n```", wantOK: true, wantEmail: "ana@example.com"},
		{name: "booking json in bare fence", text: "```\n" + booking + "\n```", wantOK: true, wantEmail: "ana@example.com"},
		{name: "other intent", text: `{"intent":"cancel_appointment"}`, wantOK: false},
		{name: "no intent field", text: `{"answer":"hola"}`, wantOK: false},
		{name: "json array", text: `[{"intent":"book_appointment"}]`, wantOK: false},
		{name: "truncated json", text: `{"intent":"book_appointment","user":{`, wantOK: false},
		{name: "text around json", text: "Aquí tienes: " + booking, wantOK: false},
		{name: "intent wrong type", text: `{"intent":42}`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, ok := DetectBookingIntent(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("DetectBookingIntent() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				if intent != nil {
					t.Error("expected nil intent for non-booking text")
				}
				return
			}
			if intent.Request.User.Email != tt.wantEmail {
				t.Errorf("email = %q, want %q", intent.Request.User.Email, tt.wantEmail)
			}
			if string(intent.Raw) != booking {
				t.Errorf("raw = %s, want the original JSON", intent.Raw)
			}
		})
	}
}

func TestDetectBookingIntentMistypedFields(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantEmail string
	}{
		{
			name:      "numeric phone",
			text:      `{"intent":"book_appointment","user":{"name":"Ana","email":"ana@example.com","phone":600123123},"constraints":{"durationMinutes":30}}`,
			wantEmail: "ana@example.com",
		},
		{
			name:      "string duration",
			text:      `{"intent":"book_appointment","user":{"name":"Ana","email":"ana@example.com","phone":"600123123"},"constraints":{"durationMinutes":"30"}}`,
			wantEmail: "ana@example.com",
		},
		{
			name:      "user is a string",
			text:      `{"intent":"book_appointment","user":"Ana","notes":"primera visita"}`,
			wantEmail: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, ok := DetectBookingIntent(tt.text)
			if !ok {
				t.Fatal("expected a booking intent")
			}
			if intent.Request.Intent != "book_appointment" {
				t.Errorf("intent = %q", intent.Request.Intent)
			}
			if intent.Request.User.Email != tt.wantEmail {
				t.Errorf("email = %q, want %q", intent.Request.User.Email, tt.wantEmail)
			}
			if string(intent.Raw) != tt.text {
				t.Errorf("raw = %s, want the original JSON", intent.Raw)
			}
		})
	}
}
