package models

import (
	"time"
)

// ChatRole represents who authored a chat message
type ChatRole string

const (
	ChatRoleUser   ChatRole = "user"
	ChatRoleModel  ChatRole = "model"
	ChatRoleDoctor ChatRole = "doctor"
)

// ChatMessage represents a message in the assistant or teleconsult chat
type ChatMessage struct {
	ID        string    `json:"id,omitempty"`
	Role      ChatRole  `json:"role" binding:"required,oneof=user model doctor"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
