// Package chat runs one request-response cycle of the assistant: it resolves the
// conversation, assembles context from history and memory, calls the generator and
// records the exchange.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethanbaker/legal-assistant/internal/llm"
	"github.com/ethanbaker/legal-assistant/internal/memory"
	"github.com/ethanbaker/legal-assistant/internal/metrics"
	"github.com/ethanbaker/legal-assistant/internal/prompt"
	"github.com/ethanbaker/legal-assistant/internal/stores/history"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Fixed generation settings and history bound
const (
	HistoryLimit    = 20
	Temperature     = 0.7
	MaxOutputTokens = 2048
)

// DefaultTaskTimeout bounds best-effort memory extraction unless overridden
const DefaultTaskTimeout = 30 * time.Second

// HistoryStore reads and appends conversation turns
type HistoryStore interface {
	CreateConversation(ctx context.Context, userID, title string) (string, error)
	Append(ctx context.Context, conversationID, role, content string) error
	ListRecent(ctx context.Context, conversationID string, limit int) ([]*history.Turn, error)
}

// FactExtractor derives memory facts from an exchange
type FactExtractor interface {
	Extract(ctx context.Context, userID, utterance, reply string) error
}

// Result is the outcome of a successful turn
type Result struct {
	Reply          string `json:"response"`
	ConversationID string `json:"conversationId"`
}

// Orchestrator coordinates the stores, composer and generator for each turn.
// It holds no per-request state; all state lives in the stores
type Orchestrator struct {
	history   HistoryStore
	memory    memory.Store
	extractor FactExtractor
	composer  *prompt.Composer
	generator llm.Generator

	log    zerolog.Logger
	tracer trace.Tracer
	tasks  *TaskRunner
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithLogger sets the orchestrator's logger
func WithLogger(log zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = log.With().Str("component", "chat").Logger()
	}
}

// WithExtractor replaces the default fact extractor built on the memory store
func WithExtractor(extractor FactExtractor) Option {
	return func(o *Orchestrator) {
		o.extractor = extractor
	}
}

// WithTaskTimeout bounds how long best-effort memory extraction may run
func WithTaskTimeout(timeout time.Duration) Option {
	return func(o *Orchestrator) {
		o.tasks = NewTaskRunner(timeout)
	}
}

// NewOrchestrator creates an orchestrator
func NewOrchestrator(historyStore HistoryStore, memoryStore memory.Store, composer *prompt.Composer, generator llm.Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		history:   historyStore,
		memory:    memoryStore,
		extractor: memory.NewExtractor(memoryStore),
		composer:  composer,
		generator: generator,
		log:       zerolog.Nop(),
		tracer:    otel.Tracer("github.com/ethanbaker/legal-assistant/internal/chat"),
		tasks:     NewTaskRunner(DefaultTaskTimeout),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Wait blocks until background memory extraction has finished
func (o *Orchestrator) Wait() {
	o.tasks.Wait()
}

// Reply answers utterance for userID. An empty conversationID starts a new conversation.
// Only validation, conversation creation, history fetch and generation can fail the turn;
// persistence and memory failures are logged and swallowed
func (o *Orchestrator) Reply(ctx context.Context, userID, utterance, conversationID string) (*Result, error) {
	ctx, span := o.tracer.Start(ctx, "chat.Reply")
	defer span.End()

	result, err := o.reply(ctx, userID, utterance, conversationID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, KindName(err))
		metrics.TurnsTotal.WithLabelValues(KindName(err)).Inc()
		return nil, err
	}

	span.SetAttributes(attribute.String("conversation.id", result.ConversationID))
	metrics.TurnsTotal.WithLabelValues("ok").Inc()
	return result, nil
}

func (o *Orchestrator) reply(ctx context.Context, userID, utterance, conversationID string) (*Result, error) {
	log := o.log.With().Str("user_id", userID).Str("conversation_id", conversationID).Logger()

	if userID == "" {
		return nil, newError(ErrUnauthenticated, StageValidate, conversationID, nil)
	}
	if strings.TrimSpace(utterance) == "" {
		return nil, newError(ErrInvalidInput, StageValidate, conversationID, errors.New("message is required"))
	}
	if conversationID != "" {
		if _, err := uuid.Parse(conversationID); err != nil {
			return nil, newError(ErrInvalidInput, StageValidate, conversationID, fmt.Errorf("invalid conversation ID format: %w", err))
		}
	}

	// Resolve the conversation; a given id is used as-is
	if conversationID == "" {
		id, err := o.createConversation(ctx, userID, utterance)
		if err != nil {
			o.report(log, StageResolveConversation, err)
			return nil, newError(ErrConversationCreateFailed, StageResolveConversation, "", err)
		}
		conversationID = id
		log = log.With().Str("conversation_id", conversationID).Logger()
	}

	turns, facts, err := o.loadContext(ctx, log, userID, conversationID)
	if err != nil {
		o.report(log, StageFetchHistory, err)
		return nil, newError(ErrHistoryFetchFailed, StageFetchHistory, conversationID, err)
	}

	messages := o.composer.Compose(memory.Fold(facts), toMessages(turns), utterance)

	// Append failures never fail the turn
	if err := o.append(ctx, conversationID, history.RoleUser, utterance); err != nil {
		o.report(log, StagePersistUserTurn, err)
	}

	reply, err := o.generate(ctx, messages)
	if err != nil {
		o.report(log, StageGenerate, err)
		return nil, newError(ErrGenerationFailed, StageGenerate, conversationID, err)
	}

	if err := o.append(ctx, conversationID, history.RoleAssistant, reply); err != nil {
		o.report(log, StagePersistAssistantTurn, err)
	}

	o.tasks.Go(ctx, StageExtractMemory, func(stage Stage, err error) { o.report(log, stage, err) }, func(ctx context.Context) error {
		return o.extractor.Extract(ctx, userID, utterance, reply)
	})

	log.Debug().Int("history_turns", len(turns)).Int("memory_facts", len(facts)).Msg("turn completed")

	return &Result{Reply: reply, ConversationID: conversationID}, nil
}

func (o *Orchestrator) createConversation(ctx context.Context, userID, utterance string) (string, error) {
	ctx, span := o.tracer.Start(ctx, "chat.CreateConversation")
	defer span.End()

	return o.history.CreateConversation(ctx, userID, DeriveTitle(utterance))
}

// loadContext fetches the bounded history and the user's facts concurrently. A history
// failure is returned; a memory failure is reported and the turn continues without memory
func (o *Orchestrator) loadContext(ctx context.Context, log zerolog.Logger, userID, conversationID string) ([]*history.Turn, []memory.Fact, error) {
	ctx, span := o.tracer.Start(ctx, "chat.LoadContext")
	defer span.End()

	var turns []*history.Turn
	var facts []memory.Fact

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		turns, err = o.history.ListRecent(gctx, conversationID, HistoryLimit)
		return err
	})
	g.Go(func() error {
		var err error
		facts, err = o.memory.Get(gctx, userID)
		if err != nil {
			if gctx.Err() == nil {
				o.report(log, StageFetchMemory, err)
			}
			facts = nil
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, nil, err
	}

	span.SetAttributes(attribute.Int("history.turns", len(turns)), attribute.Int("memory.facts", len(facts)))
	return turns, facts, nil
}

func (o *Orchestrator) append(ctx context.Context, conversationID, role, content string) error {
	ctx, span := o.tracer.Start(ctx, "chat.Append", trace.WithAttributes(attribute.String("turn.role", role)))
	defer span.End()

	if err := o.history.Append(ctx, conversationID, role, content); err != nil {
		span.RecordError(err)
		return errors.Join(ErrPersistenceWriteFailed, err)
	}
	return nil
}

func (o *Orchestrator) generate(ctx context.Context, messages []llm.Message) (string, error) {
	ctx, span := o.tracer.Start(ctx, "chat.Generate", trace.WithAttributes(attribute.Int("messages", len(messages))))
	defer span.End()

	start := time.Now()
	reply, err := o.generator.Generate(ctx, messages, llm.Params{
		Temperature:     Temperature,
		MaxOutputTokens: MaxOutputTokens,
	})
	if err != nil {
		metrics.GenerationDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		span.RecordError(err)
		return "", err
	}

	metrics.GenerationDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	return reply, nil
}

// report is the error sink for every stage, fatal or best-effort
func (o *Orchestrator) report(log zerolog.Logger, stage Stage, err error) {
	metrics.StageFailuresTotal.WithLabelValues(string(stage)).Inc()
	log.Error().Err(err).Str("stage", string(stage)).Msg("stage failed")
}

func toMessages(turns []*history.Turn) []llm.Message {
	messages := make([]llm.Message, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, llm.Message{Role: llm.Role(turn.Role), Content: turn.Content})
	}
	return messages
}
