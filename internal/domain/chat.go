package domain

import "encoding/json"

// Role is the author of a chat message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry of the conversation supplied by the widget
type ChatMessage struct {
	Role    Role   `json:"role" binding:"required,oneof=system user assistant"`
	Content string `json:"content"`
}

// ChatRequest is the request to send a chat message
type ChatRequest struct {
	Messages []ChatMessage `json:"messages" binding:"required,min=1,dive"`
}

// ChatResponse is the response from a chat message.
// Raw carries the booking webhook outcome on the booking path only.
type ChatResponse struct {
	Answer string          `json:"answer"`
	Raw    json.RawMessage `json:"raw,omitempty"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}
