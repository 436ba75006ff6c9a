// Package memory persists user-scoped memory facts with GORM.
package memory

import (
	"context"
	"fmt"

	core "github.com/ethanbaker/legal-assistant/internal/memory"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store handles memory fact persistence using GORM
type Store struct {
	db *gorm.DB
}

var _ core.Store = (*Store)(nil)

// NewStore creates a memory store on an open database and migrates its table
func NewStore(db *gorm.DB) (*Store, error) {
	store := &Store{db: db}

	if err := db.AutoMigrate(&KeyFact{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	return store, nil
}

// Get returns every fact owned by the user, ordered by key
func (s *Store) Get(ctx context.Context, userID string) ([]core.Fact, error) {
	var rows []KeyFact
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("fact_key ASC").Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list facts: %w", result.Error)
	}

	facts := make([]core.Fact, 0, len(rows))
	for _, row := range rows {
		facts = append(facts, core.Fact{Key: row.Key, Value: row.Value})
	}

	return facts, nil
}

// Upsert creates the user's fact or overwrites its value
func (s *Store) Upsert(ctx context.Context, userID, key, value string) error {
	fact := &KeyFact{
		UserID: userID,
		Key:    key,
		Value:  value,
	}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "fact_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(fact)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert fact: %w", result.Error)
	}

	return nil
}
