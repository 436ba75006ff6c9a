// Package history persists conversations and their turns with GORM.
package history

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrConversationNotFound is returned when a conversation does not exist
var ErrConversationNotFound = errors.New("conversation not found")

// Store handles conversation and turn persistence using GORM
type Store struct {
	db *gorm.DB
}

// NewStore creates a history store on an open database and migrates its tables
func NewStore(db *gorm.DB) (*Store, error) {
	store := &Store{db: db}

	if err := db.AutoMigrate(&Conversation{}, &Turn{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	return store, nil
}

// CreateConversation creates a conversation owned by userID and returns its id
func (s *Store) CreateConversation(ctx context.Context, userID, title string) (string, error) {
	conversation := &Conversation{
		ID:     uuid.New(),
		UserID: userID,
		Title:  title,
	}

	if err := s.db.WithContext(ctx).Create(conversation).Error; err != nil {
		return "", fmt.Errorf("failed to create conversation: %w", err)
	}

	return conversation.ID.String(), nil
}

// GetConversation retrieves a conversation by id
func (s *Store) GetConversation(ctx context.Context, conversationID string) (*Conversation, error) {
	guid, err := uuid.Parse(conversationID)
	if err != nil {
		return nil, fmt.Errorf("invalid conversation ID format: %w", err)
	}

	var conversation Conversation
	result := s.db.WithContext(ctx).First(&conversation, "id = ?", guid)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to get conversation: %w", result.Error)
	}

	return &conversation, nil
}

// ListConversations returns the user's conversations, newest first
func (s *Store) ListConversations(ctx context.Context, userID string) ([]*Conversation, error) {
	var conversations []*Conversation
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id ASC").Find(&conversations)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", result.Error)
	}

	return conversations, nil
}

// Append adds a turn to the end of a conversation
func (s *Store) Append(ctx context.Context, conversationID, role, content string) error {
	guid, err := uuid.Parse(conversationID)
	if err != nil {
		return fmt.Errorf("invalid conversation ID format: %w", err)
	}

	turn := &Turn{
		ConversationID: guid,
		Role:           role,
		Content:        content,
	}

	if err := s.db.WithContext(ctx).Create(turn).Error; err != nil {
		return fmt.Errorf("failed to save turn: %w", err)
	}

	return nil
}

// ListRecent returns at most limit of the newest turns of a conversation, in ascending
// creation order. Insertion order breaks timestamp ties
func (s *Store) ListRecent(ctx context.Context, conversationID string, limit int) ([]*Turn, error) {
	guid, err := uuid.Parse(conversationID)
	if err != nil {
		return nil, fmt.Errorf("invalid conversation ID format: %w", err)
	}

	var turns []*Turn
	result := s.db.WithContext(ctx).
		Where("conversation_id = ?", guid).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&turns)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query turns: %w", result.Error)
	}

	slices.Reverse(turns)
	return turns, nil
}
