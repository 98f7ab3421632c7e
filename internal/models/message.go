package models

// Role tags a composed prompt message
type Role string

const (
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Message is one role-tagged entry of a composed prompt
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
