package service

import (
	"strings"

	"github.com/liliang-cn/sitechat/internal/domain"
)

// DefaultPersonaPrompt is the fixed persona and booking policy given to the model.
const DefaultPersonaPrompt = `Eres el asistente virtual de esta web. Respondes en español, de forma breve, amable y clara.
Usa únicamente la información del contexto de la web que aparece más abajo. Si algo no está en el contexto, dilo con sinceridad y sugiere contactar directamente.

Reserva de citas:
- Si el usuario quiere pedir una cita, recoge antes su nombre, email, teléfono, la duración deseada, el rango de fechas y la franja horaria preferida.
- Mientras falte algún dato, pregunta por él en lenguaje natural.
- Cuando tengas todos los datos, responde ÚNICAMENTE con un objeto JSON, sin texto adicional ni bloques de código, con esta forma exacta:
{"intent":"book_appointment","user":{"name":"","email":"","phone":""},"constraints":{"durationMinutes":30,"fromDate":"YYYY-MM-DD","toDate":"YYYY-MM-DD","timeWindow":{"start":"HH:MM","end":"HH:MM"},"timezone":"Europe/Madrid"},"notes":""}
- Nunca inventes disponibilidad ni confirmes una cita por tu cuenta.`

const siteContextHeader = "Contexto de la web:"

// PromptAssembler builds the message list sent to the completion provider
type PromptAssembler struct {
	persona string
	context string
}

// NewPromptAssembler creates a prompt assembler for a fixed persona and site context
func NewPromptAssembler(persona, siteContext string) *PromptAssembler {
	if persona == "" {
		persona = DefaultPersonaPrompt
	}
	return &PromptAssembler{persona: persona, context: siteContext}
}

// SystemPrompt returns the persona followed by the site context
func (p *PromptAssembler) SystemPrompt() string {
	if strings.TrimSpace(p.context) == "" {
		return p.persona
	}
	var b strings.Builder
	b.WriteString(p.persona)
	b.WriteString("\n\n")
	b.WriteString(siteContextHeader)
	b.WriteString("\n")
	b.WriteString(p.context)
	return b.String()
}

// Assemble prepends the system message to the caller's messages.
// The caller's slice is copied, never modified.
func (p *PromptAssembler) Assemble(messages []domain.ChatMessage) []domain.ChatMessage {
	out := make([]domain.ChatMessage, 0, len(messages)+1)
	out = append(out, domain.ChatMessage{Role: domain.RoleSystem, Content: p.SystemPrompt()})
	out = append(out, messages...)
	return out
}
