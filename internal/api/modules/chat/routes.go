package chat_module

import (
	"context"

	"github.com/ethanbaker/legal-assistant/internal/chat"
	"github.com/gin-gonic/gin"
)

// Service answers a user's message within a conversation
type Service interface {
	Reply(ctx context.Context, userID, utterance, conversationID string) (*chat.Result, error)
}

// Register routes for the chat module
func RegisterRoutes(g *gin.RouterGroup, service Service) {
	ctl := &controller{service: service}

	g.POST("/chat", ctl.PostChat) // Send a message, optionally continuing a conversation
}
