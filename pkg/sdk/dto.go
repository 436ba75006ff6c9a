package sdk

import (
	"encoding/json"
	"time"

	"github.com/ethanbaker/api/pkg/api_types"
)

// Headers every protected request carries
const (
	APIKeyHeader = "X-API-KEY"
	UserIDHeader = "X-User-ID"
)

// ApiResponse represents a standard API response structure
type ApiResponse[T any] struct {
	Status  api_types.StatusType `json:"status"`          // Status message
	Code    int                  `json:"code"`            // Status code
	Message string               `json:"message"`         // Human-readable message
	Data    T                    `json:"data,omitempty"`  // Optional data field for successful responses
	Error   any                  `json:"error,omitempty"` // Optional errors field for error responses
}

// AsGinResponse converts the ApiResponse to a format suitable for Gin framework
func (r ApiResponse[T]) AsGinResponse() (int, any) {
	return r.Code, r
}

// AsJSON converts the ApiResponse to a format suitable for JSON responses
func (r ApiResponse[T]) AsJSON() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func NewSuccessResponse[T any](message string, data T) ApiResponse[T] {
	return ApiResponse[T]{
		Status:  api_types.StatusSuccess,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

func NewErrorResponse(code int, message string, err any) ApiResponse[any] {
	return ApiResponse[any]{
		Status:  api_types.StatusError,
		Code:    code,
		Message: message,
		Error:   err,
	}
}

/** Chat */

// ChatRequest is the body of POST /api/chat. An empty ConversationID starts a new conversation
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
}

// ChatResponse is the successful reply to a ChatRequest
type ChatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversationId"`
}

// ChatError is the body of a failed chat request
type ChatError struct {
	Error string `json:"error"`
}

/** Conversations */

// Conversation is a thread of turns owned by one user
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one stored turn of a conversation
type Message struct {
	ID        uint      `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

/** Memory */

// Memory is what the assistant remembers about the caller across conversations
type Memory struct {
	Name        string   `json:"name,omitempty"`
	Preferences []string `json:"preferences"`
	Context     []string `json:"context"`
}
