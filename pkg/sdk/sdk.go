package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ethanbaker/api/pkg/api_types"
)

// ErrBackend is returned for any non-2xx response
var ErrBackend = errors.New("backend request failed")

// Client wraps calls to the legal assistant backend on behalf of one user
type Client struct {
	baseURL    string
	apiKey     string
	userID     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, userID string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		userID:     userID,
		httpClient: &http.Client{Timeout: 150 * time.Second},
	}
}

// Chat sends a message. Pass an empty conversationID to start a new conversation
func (c *Client) Chat(ctx context.Context, message, conversationID string) (*ChatResponse, error) {
	req := &ChatRequest{Message: message, ConversationID: conversationID}

	var out ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat", req, &out); err != nil {
		return nil, err
	}

	if out.ConversationID == "" {
		return nil, fmt.Errorf("no conversation id returned")
	}

	return &out, nil
}

// ListConversations returns the user's conversations, newest first
func (c *Client) ListConversations(ctx context.Context) ([]Conversation, error) {
	var out ApiResponse[[]Conversation]
	if err := c.doJSON(ctx, http.MethodGet, "/api/conversations", nil, &out); err != nil {
		return nil, err
	}

	if err := checkStatus(out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListMessages returns up to limit of the most recent turns of a conversation, oldest first.
// A limit of zero uses the server default
func (c *Client) ListMessages(ctx context.Context, conversationID string, limit int) ([]Message, error) {
	path := fmt.Sprintf("/api/conversations/%s/messages", url.PathEscape(conversationID))
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var out ApiResponse[[]Message]
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	if err := checkStatus(out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetMemory returns what the assistant remembers about the user
func (c *Client) GetMemory(ctx context.Context) (*Memory, error) {
	var out ApiResponse[Memory]
	if err := c.doJSON(ctx, http.MethodGet, "/api/memory", nil, &out); err != nil {
		return nil, err
	}

	if err := checkStatus(out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// checkStatus turns a non-success envelope into an error
func checkStatus[T any](out ApiResponse[T]) error {
	switch out.Status {
	case api_types.StatusFail:
		return fmt.Errorf("request failed: %s", out.Message)
	case api_types.StatusError:
		return fmt.Errorf("request error (%s): %v", out.Message, out.Error)
	}
	return nil
}

// doJSON is a helper to perform JSON requests to the backend
func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any) error {
	// Create request body if input is provided
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(b)
	}

	// Create the request
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set(UserIDHeader, c.userID)

	// Perform the request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Prefer the server's error message when the body carries one
		b, _ := io.ReadAll(resp.Body)
		var chatErr ChatError
		if json.Unmarshal(b, &chatErr) == nil && chatErr.Error != "" {
			return fmt.Errorf("%w: '%s %s' returned %d: %s", ErrBackend, method, path, resp.StatusCode, chatErr.Error)
		}
		return fmt.Errorf("%w: '%s %s' returned %d: %s", ErrBackend, method, path, resp.StatusCode, string(b))
	}

	// If no output expected, return early
	if out == nil {
		return nil
	}

	// Decode the response body into the output struct
	dec := json.NewDecoder(resp.Body)
	return dec.Decode(out)
}
