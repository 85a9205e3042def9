package domain

import (
	"bytes"
	"encoding/json"
)

// IntentBookAppointment is the discriminant of a booking intent
const IntentBookAppointment = "book_appointment"

// BookingCode is the failure code reported by the booking webhook
type BookingCode string

const (
	CodeNoAvailability BookingCode = "NO_AVAIL"
	CodeCalendarCreate BookingCode = "CAL_CREATE_ERROR"
	CodeBadPayload     BookingCode = "BAD_PAYLOAD"
	CodeBadGateway     BookingCode = "BAD_GATEWAY"
)

// BookingUser identifies who the appointment is for
type BookingUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// TimeWindow is a daily time range, e.g. 09:00 to 14:00
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// BookingConstraints narrows down the slot search
type BookingConstraints struct {
	DurationMinutes int        `json:"durationMinutes"`
	FromDate        string     `json:"fromDate"`
	ToDate          string     `json:"toDate"`
	TimeWindow      TimeWindow `json:"timeWindow"`
	Timezone        string     `json:"timezone"`
}

// BookingRequest is the structured intent emitted by the model
type BookingRequest struct {
	Intent      string             `json:"intent"`
	User        BookingUser        `json:"user"`
	Constraints BookingConstraints `json:"constraints"`
	Notes       string             `json:"notes"`
}

// Appointment is the slot the webhook reserved
type Appointment struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// EventID is the calendar event identifier. Webhooks send it as a string or
// a number; null and false mean no event.
type EventID string

func (id *EventID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")):
		*id = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = EventID(s)
	default:
		*id = EventID(data)
	}
	return nil
}

// BookingResult is the outcome reported by the booking webhook
type BookingResult struct {
	OK          bool         `json:"ok"`
	EventID     EventID      `json:"eventId,omitempty"`
	Appointment *Appointment `json:"appointment,omitempty"`
	Code        BookingCode  `json:"code,omitempty"`
	Message     string       `json:"message,omitempty"`
}

// Confirmed reports whether the webhook actually created the event:
// ok alone is not trusted without an event id and a start time.
func (r *BookingResult) Confirmed() bool {
	return r.OK && r.EventID != "" && r.Appointment != nil && r.Appointment.Start != ""
}
