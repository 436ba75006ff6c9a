package conversations_module

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ethanbaker/legal-assistant/internal/api/middleware"
	"github.com/ethanbaker/legal-assistant/internal/stores/history"
	"github.com/ethanbaker/legal-assistant/pkg/sdk"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Bounds for the messages limit query parameter
const (
	DefaultMessageLimit = 20
	MaxMessageLimit     = 100
)

type controller struct {
	store Store
}

// ListConversations handles GET requests for the caller's conversations, newest first
func (ctl *controller) ListConversations(c *gin.Context) {
	conversations, err := ctl.store.ListConversations(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to list conversations", nil).AsGinResponse())
		return
	}

	resp := make([]sdk.Conversation, 0, len(conversations))
	for _, conversation := range conversations {
		resp = append(resp, toSDKConversation(conversation))
	}

	c.JSON(sdk.NewSuccessResponse("Conversations retrieved successfully", resp).AsGinResponse())
}

// ListMessages handles GET requests for the most recent turns of a conversation the caller owns
func (ctl *controller) ListMessages(c *gin.Context) {
	id := c.Param("uuid")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Invalid conversation ID", nil).AsGinResponse())
		return
	}

	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Invalid limit", nil).AsGinResponse())
		return
	}

	// Conversations owned by someone else look the same as missing ones
	conversation, err := ctl.store.GetConversation(c.Request.Context(), id)
	if errors.Is(err, history.ErrConversationNotFound) || (err == nil && conversation.UserID != middleware.UserID(c)) {
		c.JSON(sdk.NewErrorResponse(http.StatusNotFound, "Conversation not found", nil).AsGinResponse())
		return
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to get conversation", nil).AsGinResponse())
		return
	}

	turns, err := ctl.store.ListRecent(c.Request.Context(), id, limit)
	if err != nil {
		_ = c.Error(err)
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to list messages", nil).AsGinResponse())
		return
	}

	resp := make([]sdk.Message, 0, len(turns))
	for _, turn := range turns {
		resp = append(resp, sdk.Message{
			ID:        turn.ID,
			Role:      turn.Role,
			Content:   turn.Content,
			CreatedAt: turn.CreatedAt,
		})
	}

	c.JSON(sdk.NewSuccessResponse("Messages retrieved successfully", resp).AsGinResponse())
}

// parseLimit reads the limit query parameter, clamping it to MaxMessageLimit
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return DefaultMessageLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}

	return min(limit, MaxMessageLimit), nil
}

func toSDKConversation(conversation *history.Conversation) sdk.Conversation {
	return sdk.Conversation{
		ID:        conversation.ID.String(),
		Title:     conversation.Title,
		CreatedAt: conversation.CreatedAt,
		UpdatedAt: conversation.UpdatedAt,
	}
}
