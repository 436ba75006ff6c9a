package conversations_module

import (
	"context"

	"github.com/ethanbaker/legal-assistant/internal/stores/history"
	"github.com/gin-gonic/gin"
)

// Store is the read side of the history store
type Store interface {
	GetConversation(ctx context.Context, conversationID string) (*history.Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]*history.Conversation, error)
	ListRecent(ctx context.Context, conversationID string, limit int) ([]*history.Turn, error)
}

// Register routes for the conversations module
func RegisterRoutes(g *gin.RouterGroup, store Store) {
	ctl := &controller{store: store}

	group := g.Group("/conversations")
	group.GET("", ctl.ListConversations)           // List the caller's conversations
	group.GET("/:uuid/messages", ctl.ListMessages) // Recent turns of one conversation
}
