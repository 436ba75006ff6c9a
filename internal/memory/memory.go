// Package memory holds the user-scoped facts the assistant carries across conversations:
// how they are keyed, how they are folded into prompt material, and how they are
// extracted from user utterances.
package memory

import (
	"context"
	"encoding/json"
	"strings"
)

// Fact keys and key shapes
const (
	KeyName              = "name"
	KeyPreferencePrefix  = "preference_"
	KeyConversationCtx   = "conversationContext"
	MaxConversationItems = 5
)

// Fact is one stored key/value owned by a user
type Fact struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Store reads and writes a user's facts. Get returns facts ordered by key
type Store interface {
	Get(ctx context.Context, userID string) ([]Fact, error)
	Upsert(ctx context.Context, userID, key, value string) error
}

// Memory is the folded view of a user's facts used to compose a prompt
type Memory struct {
	Name        string   `json:"name,omitempty"`
	Preferences []string `json:"preferences,omitempty"`
	Context     []string `json:"context,omitempty"`
}

// Fold turns stored facts into a Memory. Preferences keep the order of facts;
// unknown keys are ignored and an unparsable context value folds to empty
func Fold(facts []Fact) Memory {
	var mem Memory

	for _, fact := range facts {
		switch {
		case fact.Key == KeyName:
			mem.Name = fact.Value
		case strings.HasPrefix(fact.Key, KeyPreferencePrefix):
			mem.Preferences = append(mem.Preferences, fact.Value)
		case fact.Key == KeyConversationCtx:
			mem.Context = decodeContext(fact.Value)
		}
	}

	return mem
}

// decodeContext parses a serialized context list, treating bad input as empty
func decodeContext(raw string) []string {
	var entries []string
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	return entries
}

// appendContext adds an entry and keeps only the most recent MaxConversationItems
func appendContext(entries []string, entry string) []string {
	entries = append(entries, entry)
	if len(entries) > MaxConversationItems {
		entries = entries[len(entries)-MaxConversationItems:]
	}
	return entries
}
