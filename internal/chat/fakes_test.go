package chat

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/ethanbaker/legal-assistant/internal/llm"
	"github.com/ethanbaker/legal-assistant/internal/memory"
	"github.com/ethanbaker/legal-assistant/internal/stores/history"
	"github.com/google/uuid"
)

// fakeHistory keeps conversations and turns in memory, in insertion order
type fakeHistory struct {
	mu            sync.Mutex
	conversations map[string]*history.Conversation
	turns         map[string][]*history.Turn
	limits        []int

	createErr error
	listErr   error
	appendErr error
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{
		conversations: make(map[string]*history.Conversation),
		turns:         make(map[string][]*history.Turn),
	}
}

func (h *fakeHistory) CreateConversation(ctx context.Context, userID, title string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.createErr != nil {
		return "", h.createErr
	}
	id := uuid.New()
	h.conversations[id.String()] = &history.Conversation{ID: id, UserID: userID, Title: title}
	return id.String(), nil
}

func (h *fakeHistory) Append(ctx context.Context, conversationID, role, content string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.appendErr != nil {
		return h.appendErr
	}
	turns := h.turns[conversationID]
	h.turns[conversationID] = append(turns, &history.Turn{ID: uint(len(turns) + 1), Role: role, Content: content})
	return nil
}

func (h *fakeHistory) ListRecent(ctx context.Context, conversationID string, limit int) ([]*history.Turn, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.limits = append(h.limits, limit)
	if h.listErr != nil {
		return nil, h.listErr
	}
	turns := h.turns[conversationID]
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return append([]*history.Turn(nil), turns...), nil
}

func (h *fakeHistory) stored(conversationID string) []*history.Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*history.Turn(nil), h.turns[conversationID]...)
}

// fakeMemory is a user-scoped key/value store returning facts sorted by key
type fakeMemory struct {
	mu     sync.Mutex
	facts  map[string]map[string]string
	getErr error
}

func newFakeMemory() *fakeMemory {
	return &fakeMemory{facts: make(map[string]map[string]string)}
}

func (m *fakeMemory) Get(ctx context.Context, userID string) ([]memory.Fact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	var out []memory.Fact
	for k, v := range m.facts[userID] {
		out = append(out, memory.Fact{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *fakeMemory) Upsert(ctx context.Context, userID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.facts[userID] == nil {
		m.facts[userID] = make(map[string]string)
	}
	m.facts[userID][key] = value
	return nil
}

// fakeGenerator records each call and replies with a fixed text or error
type fakeGenerator struct {
	mu     sync.Mutex
	calls  [][]llm.Message
	params []llm.Params
	reply  string
	err    error
}

func (g *fakeGenerator) Generate(ctx context.Context, messages []llm.Message, params llm.Params) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, messages)
	g.params = append(g.params, params)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func (g *fakeGenerator) lastCall() []llm.Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.calls) == 0 {
		return nil
	}
	return g.calls[len(g.calls)-1]
}

// extractorFunc adapts a function to FactExtractor
type extractorFunc func(ctx context.Context, userID, utterance, reply string) error

func (f extractorFunc) Extract(ctx context.Context, userID, utterance, reply string) error {
	return f(ctx, userID, utterance, reply)
}

var errBoom = errors.New("boom")
