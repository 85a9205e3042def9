package service

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/goodsign/monday"
	"github.com/liliang-cn/sitechat/internal/domain"
)

const (
	answerNoAvailability = "Lo siento, no hay huecos libres en las fechas y la franja indicadas. ¿Quieres probar con otras fechas?"
	answerCalendarError  = "No he podido crear el evento en el calendario. Por favor, inténtalo de nuevo más tarde."
	answerBadPayload     = "Faltan datos o alguno no es válido para hacer la reserva. ¿Puedes revisarlos?"
	answerBookingFailed  = "Lo siento, ha habido un problema al gestionar tu reserva. Inténtalo de nuevo en unos minutos."

	appointmentLayout = "Monday, 2 de January de 2006, 15:04"
)

// AppointmentFormatter renders appointment timestamps for the user
type AppointmentFormatter struct {
	loc *time.Location
}

// NewAppointmentFormatter creates a formatter for the named IANA timezone
func NewAppointmentFormatter(timezone string) (*AppointmentFormatter, error) {
	if timezone == "" {
		timezone = "Europe/Madrid"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
	}
	return &AppointmentFormatter{loc: loc}, nil
}

// Format renders an RFC 3339 timestamp as a long Spanish date and short time.
// Unparseable input is returned unchanged.
func (f *AppointmentFormatter) Format(iso string) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return iso
	}
	return monday.Format(t.In(f.loc), appointmentLayout, monday.LocaleEsES)
}

// BookingAnswer maps a webhook result to the reply shown in the widget
func (f *AppointmentFormatter) BookingAnswer(result domain.BookingResult, user domain.BookingUser) string {
	if result.Confirmed() {
		answer := fmt.Sprintf("¡Listo! Tu cita ha quedado reservada para el %s.", f.Format(result.Appointment.Start))
		if user.Email != "" {
			answer += fmt.Sprintf(" Te hemos enviado la confirmación a %s.", user.Email)
		}
		return answer
	}

	if result.OK {
		return answerBookingFailed
	}

	switch result.Code {
	case domain.CodeNoAvailability:
		if result.Message != "" {
			return result.Message
		}
		return answerNoAvailability
	case domain.CodeCalendarCreate:
		return answerCalendarError
	case domain.CodeBadPayload:
		return answerBadPayload
	default:
		return answerBookingFailed
	}
}
