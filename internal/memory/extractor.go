package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// NameRule captures the assistant's name from an utterance. Pattern must have one capture group
type NameRule struct {
	Name    string
	Pattern *regexp.Regexp
}

// DefaultNameRules are evaluated in order; the first match wins
var DefaultNameRules = []NameRule{
	{Name: "direct", Pattern: regexp.MustCompile(`(?i)(?:your name is|call you|name you) ([a-zA-Z]+)`)},
	{Name: "future", Pattern: regexp.MustCompile(`(?i)(?:i'll call you|i will call you) ([a-zA-Z]+)`)},
	{Name: "identity", Pattern: regexp.MustCompile(`(?i)(?:you are|you're) ([a-zA-Z]+)`)},
}

var (
	preferenceTriggers = []string{"i prefer", "i like"}
	contextTriggers    = []string{"remember", "important"}
)

// Extractor derives facts from user utterances and writes them to a Store
type Extractor struct {
	store Store
	rules []NameRule
	now   func() time.Time

	lastPreference atomic.Int64
}

// ExtractorOption configures an Extractor
type ExtractorOption func(*Extractor)

// WithNameRules replaces the default name rule table
func WithNameRules(rules []NameRule) ExtractorOption {
	return func(e *Extractor) {
		e.rules = rules
	}
}

// WithClock sets the time source used to mint preference keys
func WithClock(now func() time.Time) ExtractorOption {
	return func(e *Extractor) {
		e.now = now
	}
}

// NewExtractor creates an extractor writing to store
func NewExtractor(store Store, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		store: store,
		rules: DefaultNameRules,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs the name, preference and context passes over the utterance. The passes are
// independent: every pass runs and their errors are joined. The reply is not inspected
func (e *Extractor) Extract(ctx context.Context, userID, utterance, reply string) error {
	lowered := strings.ToLower(utterance)

	return errors.Join(
		e.extractName(ctx, userID, utterance),
		e.extractPreference(ctx, userID, utterance, lowered),
		e.extractContext(ctx, userID, utterance, lowered),
	)
}

// MatchName returns the name captured by the first matching rule
func (e *Extractor) MatchName(utterance string) (string, bool) {
	for _, rule := range e.rules {
		if match := rule.Pattern.FindStringSubmatch(utterance); len(match) > 1 && match[1] != "" {
			return match[1], true
		}
	}
	return "", false
}

func (e *Extractor) extractName(ctx context.Context, userID, utterance string) error {
	name, ok := e.MatchName(utterance)
	if !ok {
		return nil
	}

	if err := e.store.Upsert(ctx, userID, KeyName, name); err != nil {
		return fmt.Errorf("failed to save name: %w", err)
	}
	return nil
}

func (e *Extractor) extractPreference(ctx context.Context, userID, utterance, lowered string) error {
	if !containsAny(lowered, preferenceTriggers) {
		return nil
	}

	key := KeyPreferencePrefix + strconv.FormatInt(e.nextPreferenceStamp(), 10)
	if err := e.store.Upsert(ctx, userID, key, utterance); err != nil {
		return fmt.Errorf("failed to save preference: %w", err)
	}
	return nil
}

func (e *Extractor) extractContext(ctx context.Context, userID, utterance, lowered string) error {
	if !containsAny(lowered, contextTriggers) {
		return nil
	}

	facts, err := e.store.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to read conversation context: %w", err)
	}

	var entries []string
	for _, fact := range facts {
		if fact.Key == KeyConversationCtx {
			entries = decodeContext(fact.Value)
			break
		}
	}

	encoded, err := json.Marshal(appendContext(entries, utterance))
	if err != nil {
		return fmt.Errorf("failed to encode conversation context: %w", err)
	}

	if err := e.store.Upsert(ctx, userID, KeyConversationCtx, string(encoded)); err != nil {
		return fmt.Errorf("failed to save conversation context: %w", err)
	}
	return nil
}

// nextPreferenceStamp returns the current time in milliseconds, bumped past the last
// stamp this extractor issued so two preferences in the same millisecond get distinct keys
func (e *Extractor) nextPreferenceStamp() int64 {
	for {
		last := e.lastPreference.Load()
		stamp := e.now().UnixMilli()
		if stamp <= last {
			stamp = last + 1
		}
		if e.lastPreference.CompareAndSwap(last, stamp) {
			return stamp
		}
	}
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
