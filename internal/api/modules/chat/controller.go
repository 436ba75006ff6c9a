package chat_module

import (
	"net/http"
	"strings"

	"github.com/ethanbaker/legal-assistant/internal/api/middleware"
	"github.com/ethanbaker/legal-assistant/internal/chat"
	"github.com/ethanbaker/legal-assistant/pkg/sdk"
	"github.com/gin-gonic/gin"
)

type controller struct {
	service Service
}

// PostChat handles POST requests carrying a user message
func (ctl *controller) PostChat(c *gin.Context) {
	// Parse request body
	var req sdk.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, sdk.ChatError{Error: "Could not parse request body"})
		return
	}

	res, err := ctl.service.Reply(c.Request.Context(), middleware.UserID(c), req.Message, req.ConversationID)
	if err != nil {
		// Detail stays in the logs; the caller gets a fixed message per kind
		_ = c.Error(err)
		status, message := errorResponse(err, req)
		c.JSON(status, sdk.ChatError{Error: message})
		return
	}

	c.JSON(http.StatusOK, sdk.ChatResponse{
		Response:       res.Reply,
		ConversationID: res.ConversationID,
	})
}

// errorResponse maps an orchestrator error kind to a status and a generic message
func errorResponse(err error, req sdk.ChatRequest) (int, string) {
	switch chat.KindName(err) {
	case "InvalidInput":
		if strings.TrimSpace(req.Message) == "" {
			return http.StatusBadRequest, "Message is required"
		}
		return http.StatusBadRequest, "Invalid conversation ID"
	case "Unauthenticated":
		return http.StatusUnauthorized, "Authentication required"
	case "ConversationCreateFailed":
		return http.StatusInternalServerError, "Failed to create conversation"
	case "HistoryFetchFailed":
		return http.StatusInternalServerError, "Failed to fetch conversation history"
	case "GenerationFailed":
		return http.StatusBadGateway, "Failed to generate response"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
