// Package memory provides bounded-window conversation history keyed by
// session, backed by an expiring external store.
package memory

import (
	"context"
	"strings"
)

// Turn is one completed question/answer exchange. Immutable once saved.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Store persists per-session conversation windows.
//
// Load renders the retained turns as a single history string; a missing or
// expired session yields the empty string, never an error. Save appends a
// turn, evicts beyond the configured window and refreshes the TTL. Clear
// removes the session's history and is idempotent. Transport faults surface
// as infrastructure errors; callers decide how to present them.
type Store interface {
	Load(ctx context.Context, sessionID string) (string, error)
	Save(ctx context.Context, sessionID, question, answer string) error
	Clear(ctx context.Context, sessionID string) error
	Close() error
}

// FormatHistory renders turns for prompt injection, oldest first.
func FormatHistory(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}
	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("Human: ")
		b.WriteString(turn.Question)
		b.WriteString("\nAI: ")
		b.WriteString(turn.Answer)
	}
	return b.String()
}
