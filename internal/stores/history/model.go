package history

import (
	"time"

	"github.com/google/uuid"
)

// Role values stored on turns
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation represents a thread of turns owned by one user
type Conversation struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id" gorm:"size:255;not null;index"`
	Title     string    `json:"title" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for GORM
func (Conversation) TableName() string {
	return "conversations"
}

// Turn represents a single stored message in a conversation. Turns are append-only
type Turn struct {
	ID             uint          `json:"id" gorm:"primaryKey;autoIncrement"`
	ConversationID uuid.UUID     `json:"conversation_id" gorm:"type:char(36);not null;index:idx_messages_order,priority:1"`
	Conversation   *Conversation `json:"-" gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
	Role           string        `json:"role" gorm:"size:20;not null"`
	Content        string        `json:"content" gorm:"type:text"`
	CreatedAt      time.Time     `json:"created_at" gorm:"index:idx_messages_order,priority:2"`
}

// TableName sets the table name for GORM
func (Turn) TableName() string {
	return "messages"
}
