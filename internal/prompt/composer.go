// Package prompt assembles the message sequence sent to the generator for a turn.
package prompt

import (
	"fmt"
	"strings"

	"github.com/ethanbaker/legal-assistant/internal/llm"
	"github.com/ethanbaker/legal-assistant/internal/memory"
)

// Composer builds generator input from a policy, folded memory, history and a new utterance
type Composer struct {
	policy Policy
}

// NewComposer creates a composer for the given policy
func NewComposer(policy Policy) *Composer {
	return &Composer{policy: policy}
}

// Policy returns the composer's policy
func (c *Composer) Policy() Policy {
	return c.policy
}

// Compose returns one system entry, the history in its stored order and roles, and a final
// user entry carrying the utterance
func (c *Composer) Compose(mem memory.Memory, history []llm.Message, utterance string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)

	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: c.SystemPrompt(mem)})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: utterance})

	return messages
}

// SystemPrompt concatenates the role text, the memory sections that are present,
// and the guidelines, in that order
func (c *Composer) SystemPrompt(mem memory.Memory) string {
	var b strings.Builder

	b.WriteString(c.policy.Role)

	if mem.Name != "" {
		fmt.Fprintf(&b, "\n\nIMPORTANT: Your name is %s. Always remember and acknowledge this when relevant.", mem.Name)
	}

	if len(mem.Preferences) > 0 {
		b.WriteString("\n\nUser Preferences: ")
		b.WriteString(strings.Join(mem.Preferences, "; "))
	}

	if len(mem.Context) > 0 {
		b.WriteString("\n\nImportant Context: ")
		b.WriteString(strings.Join(mem.Context, "; "))
	}

	b.WriteString("\n\n")
	b.WriteString(c.policy.Guidelines)

	return b.String()
}
