package memory

import (
	"time"
)

// KeyFact represents a stored fact in the memory system. A user holds at most one fact per key
type KeyFact struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`

	UserID string `json:"user_id" gorm:"column:user_id;not null;size:255;uniqueIndex:idx_ai_memory_user_key,priority:1"`
	Key    string `json:"key" gorm:"column:fact_key;not null;size:255;uniqueIndex:idx_ai_memory_user_key,priority:2"`
	Value  string `json:"value" gorm:"type:text"`
}

// TableName sets the table name for GORM
func (KeyFact) TableName() string {
	return "ai_memory"
}
