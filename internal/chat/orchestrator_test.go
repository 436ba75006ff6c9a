package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ethanbaker/legal-assistant/internal/llm"
	"github.com/ethanbaker/legal-assistant/internal/memory"
	"github.com/ethanbaker/legal-assistant/internal/prompt"
	"github.com/ethanbaker/legal-assistant/internal/stores/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	history   *fakeHistory
	memory    *fakeMemory
	generator *fakeGenerator
	orch      *Orchestrator
}

func newHarness(opts ...Option) *harness {
	h := &harness{
		history:   newFakeHistory(),
		memory:    newFakeMemory(),
		generator: &fakeGenerator{reply: "Here is the answer."},
	}
	composer := prompt.NewComposer(prompt.Policy{Role: "ROLE", Guidelines: "GUIDELINES"})
	h.orch = NewOrchestrator(h.history, h.memory, composer, h.generator, opts...)
	return h
}

func TestReply_NewConversation(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := range 5 {
		res, err := h.orch.Reply(ctx, "user-1", fmt.Sprintf("question %d", i), "")
		require.NoError(t, err)
		assert.Equal(t, "Here is the answer.", res.Reply)
		assert.NotEmpty(t, res.ConversationID)
		assert.False(t, seen[res.ConversationID], "conversation id reused")
		seen[res.ConversationID] = true
	}
	h.orch.Wait()

	assert.Len(t, h.history.conversations, 5)
}

func TestReply_PersistsBothTurnsAndTitle(t *testing.T) {
	h := newHarness()
	utterance := strings.Repeat("a", 60)

	res, err := h.orch.Reply(context.Background(), "user-1", utterance, "")
	require.NoError(t, err)
	h.orch.Wait()

	conversation := h.history.conversations[res.ConversationID]
	require.NotNil(t, conversation)
	assert.Equal(t, "user-1", conversation.UserID)
	assert.Equal(t, strings.Repeat("a", 50)+"...", conversation.Title)

	turns := h.history.stored(res.ConversationID)
	require.Len(t, turns, 2)
	assert.Equal(t, history.RoleUser, turns[0].Role)
	assert.Equal(t, utterance, turns[0].Content)
	assert.Equal(t, history.RoleAssistant, turns[1].Role)
	assert.Equal(t, "Here is the answer.", turns[1].Content)
}

func TestReply_ExistingConversationUsedAsIs(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	first, err := h.orch.Reply(ctx, "user-1", "first", "")
	require.NoError(t, err)

	second, err := h.orch.Reply(ctx, "user-1", "second", first.ConversationID)
	require.NoError(t, err)
	h.orch.Wait()

	assert.Equal(t, first.ConversationID, second.ConversationID)
	assert.Len(t, h.history.conversations, 1)

	// The second prompt carries the first exchange
	messages := h.generator.lastCall()
	require.Len(t, messages, 4)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "first"}, messages[1])
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: "Here is the answer."}, messages[2])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "second"}, messages[3])
}

func TestReply_HistoryIsBounded(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	id, err := h.history.CreateConversation(ctx, "user-1", "long")
	require.NoError(t, err)
	for i := 1; i <= 30; i++ {
		role := history.RoleUser
		if i%2 == 0 {
			role = history.RoleAssistant
		}
		require.NoError(t, h.history.Append(ctx, id, role, fmt.Sprintf("turn %d", i)))
	}

	_, err = h.orch.Reply(ctx, "user-1", "next", id)
	require.NoError(t, err)
	h.orch.Wait()

	assert.Equal(t, []int{HistoryLimit}, h.history.limits)

	messages := h.generator.lastCall()
	require.Len(t, messages, HistoryLimit+2)
	assert.Equal(t, llm.RoleSystem, messages[0].Role)
	assert.Equal(t, "turn 11", messages[1].Content)
	assert.Equal(t, "turn 30", messages[HistoryLimit].Content)
	assert.Equal(t, "next", messages[HistoryLimit+1].Content)
}

func TestReply_GenerationParams(t *testing.T) {
	h := newHarness()

	_, err := h.orch.Reply(context.Background(), "user-1", "hello", "")
	require.NoError(t, err)
	h.orch.Wait()

	require.Len(t, h.generator.params, 1)
	assert.Equal(t, llm.Params{Temperature: 0.7, MaxOutputTokens: 2048}, h.generator.params[0])
}

func TestReply_GenerationFailure(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	id, err := h.history.CreateConversation(ctx, "user-1", "t")
	require.NoError(t, err)
	h.generator.err = errBoom

	res, err := h.orch.Reply(ctx, "user-1", "please remember this", id)
	h.orch.Wait()

	assert.Nil(t, res)
	require.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, errBoom)

	var chatErr *Error
	require.True(t, errors.As(err, &chatErr))
	assert.Equal(t, StageGenerate, chatErr.Stage)
	assert.Equal(t, id, chatErr.ConversationID)
	assert.Equal(t, "GenerationFailed", KindName(err))

	// The user turn persisted before generation remains; no assistant turn was added
	turns := h.history.stored(id)
	require.Len(t, turns, 1)
	assert.Equal(t, history.RoleUser, turns[0].Role)
	assert.Equal(t, "please remember this", turns[0].Content)

	// No extraction happens without a reply
	assert.Empty(t, h.memory.facts)
}

func TestReply_ValidationHasNoSideEffects(t *testing.T) {
	tests := []struct {
		name      string
		userID    string
		utterance string
		kind      error
	}{
		{"empty utterance", "user-1", "", ErrInvalidInput},
		{"blank utterance", "user-1", "   \n", ErrInvalidInput},
		{"no user", "", "hello", ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()

			_, err := h.orch.Reply(context.Background(), tt.userID, tt.utterance, "")
			assert.ErrorIs(t, err, tt.kind)

			assert.Empty(t, h.history.conversations)
			assert.Empty(t, h.history.limits)
			assert.Empty(t, h.generator.calls)
		})
	}
}

func TestReply_MalformedConversationID(t *testing.T) {
	h := newHarness()

	_, err := h.orch.Reply(context.Background(), "user-1", "hello", "not-a-uuid")

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "InvalidInput", KindName(err))
	assert.Empty(t, h.history.limits)
	assert.Empty(t, h.generator.calls)
}

func TestReply_ConversationCreateFailure(t *testing.T) {
	h := newHarness()
	h.history.createErr = errBoom

	_, err := h.orch.Reply(context.Background(), "user-1", "hello", "")

	assert.ErrorIs(t, err, ErrConversationCreateFailed)
	assert.Empty(t, h.generator.calls)
}

func TestReply_HistoryFetchFailure(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	id, err := h.history.CreateConversation(ctx, "user-1", "t")
	require.NoError(t, err)
	h.history.listErr = errBoom

	_, err = h.orch.Reply(ctx, "user-1", "hello", id)

	assert.ErrorIs(t, err, ErrHistoryFetchFailed)
	assert.Empty(t, h.generator.calls)
	assert.Empty(t, h.history.stored(id))
}

func TestReply_PersistenceFailureIsSwallowed(t *testing.T) {
	h := newHarness()
	h.history.appendErr = errBoom

	res, err := h.orch.Reply(context.Background(), "user-1", "hello", "")
	h.orch.Wait()

	require.NoError(t, err)
	assert.Equal(t, "Here is the answer.", res.Reply)
}

func TestReply_MemoryFetchFailureContinuesWithoutMemory(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.memory.Upsert(context.Background(), "user-1", memory.KeyName, "Max"))
	h.memory.getErr = errBoom

	res, err := h.orch.Reply(context.Background(), "user-1", "hello", "")
	h.orch.Wait()

	require.NoError(t, err)
	assert.NotEmpty(t, res.Reply)
	assert.Equal(t, "ROLE\n\nGUIDELINES", h.generator.lastCall()[0].Content)
}

func TestReply_ExtractionFailureIsNotSurfaced(t *testing.T) {
	var calls atomic.Int32
	h := newHarness(WithExtractor(extractorFunc(func(ctx context.Context, userID, utterance, reply string) error {
		calls.Add(1)
		assert.Equal(t, "Here is the answer.", reply)
		return errBoom
	})))

	res, err := h.orch.Reply(context.Background(), "user-1", "hello", "")
	h.orch.Wait()

	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.EqualValues(t, 1, calls.Load())
}

func TestReply_ExtractionOutlivesRequestContext(t *testing.T) {
	release := make(chan struct{})
	var ctxErr atomic.Value

	h := newHarness(WithExtractor(extractorFunc(func(ctx context.Context, userID, utterance, reply string) error {
		<-release
		ctxErr.Store(fmt.Sprint(ctx.Err()))
		return nil
	})))

	ctx, cancel := context.WithCancel(context.Background())
	_, err := h.orch.Reply(ctx, "user-1", "hello", "")
	require.NoError(t, err)

	cancel()
	close(release)
	h.orch.Wait()

	assert.Equal(t, "<nil>", ctxErr.Load())
}

func TestReply_MemoryIsSharedAcrossConversations(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	a, err := h.orch.Reply(ctx, "user-1", "From now on I will call you Max", "")
	require.NoError(t, err)
	h.orch.Wait()

	b, err := h.orch.Reply(ctx, "user-1", "Start a new matter", "")
	require.NoError(t, err)
	h.orch.Wait()

	assert.NotEqual(t, a.ConversationID, b.ConversationID)
	assert.Contains(t, h.generator.lastCall()[0].Content, "Your name is Max.")

	// Another user does not see it
	_, err = h.orch.Reply(ctx, "user-2", "hello", "")
	require.NoError(t, err)
	h.orch.Wait()
	assert.NotContains(t, h.generator.lastCall()[0].Content, "Max")
}

func TestReply_PromptShape(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	require.NoError(t, h.memory.Upsert(ctx, "user-1", "preference_1", "I prefer bullet points"))
	require.NoError(t, h.memory.Upsert(ctx, "user-1", memory.KeyConversationCtx, `["remember case 7"]`))

	_, err := h.orch.Reply(ctx, "user-1", "Summarize case 7", "")
	require.NoError(t, err)
	h.orch.Wait()

	messages := h.generator.lastCall()
	require.Len(t, messages, 2)
	assert.Equal(t,
		"ROLE\n\nUser Preferences: I prefer bullet points\n\nImportant Context: remember case 7\n\nGUIDELINES",
		messages[0].Content)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "Summarize case 7"}, messages[1])
}
