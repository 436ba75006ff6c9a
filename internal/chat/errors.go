package chat

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is
var (
	ErrInvalidInput             = errors.New("invalid input")
	ErrUnauthenticated          = errors.New("authentication required")
	ErrConversationCreateFailed = errors.New("failed to create conversation")
	ErrHistoryFetchFailed       = errors.New("failed to fetch conversation history")
	ErrGenerationFailed         = errors.New("failed to generate response")
	ErrPersistenceWriteFailed   = errors.New("failed to persist record")
)

// Stage names a step of a turn, used in logs, metrics and errors
type Stage string

const (
	StageValidate             Stage = "validate"
	StageResolveConversation  Stage = "resolve_conversation"
	StageFetchHistory         Stage = "fetch_history"
	StageFetchMemory          Stage = "fetch_memory"
	StagePersistUserTurn      Stage = "persist_user_turn"
	StageGenerate             Stage = "generate"
	StagePersistAssistantTurn Stage = "persist_assistant_turn"
	StageExtractMemory        Stage = "extract_memory"
)

// Error is returned by the orchestrator. Kind is one of the Err* sentinels and Err the cause
type Error struct {
	Kind           error
	Stage          Stage
	ConversationID string
	Err            error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s (%s)", e.Kind, e.Stage)
	}
	return fmt.Sprintf("%s (%s): %v", e.Kind, e.Stage, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, stage Stage, conversationID string, err error) *Error {
	return &Error{Kind: kind, Stage: stage, ConversationID: conversationID, Err: err}
}

// KindName returns the taxonomy name for err, or "Internal" for errors outside it
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "InvalidInput"
	case errors.Is(err, ErrUnauthenticated):
		return "Unauthenticated"
	case errors.Is(err, ErrConversationCreateFailed):
		return "ConversationCreateFailed"
	case errors.Is(err, ErrHistoryFetchFailed):
		return "HistoryFetchFailed"
	case errors.Is(err, ErrGenerationFailed):
		return "GenerationFailed"
	case errors.Is(err, ErrPersistenceWriteFailed):
		return "PersistenceWriteFailed"
	default:
		return "Internal"
	}
}
