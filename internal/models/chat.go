package models

import (
	"time"
)

// ChatRole identifies the author of a chat turn
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one persisted turn of a (user, model) conversation
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_chat_user_model;not null" json:"-"`
	Role      ChatRole  `gorm:"size:20;not null" json:"role"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Model     string    `gorm:"index:idx_chat_user_model;size:50;not null" json:"model"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for ChatMessage model
func (ChatMessage) TableName() string {
	return "chat_history"
}
