// Package ledger provides the conversation ledger: an ordered, append-only
// log of user and assistant turns that accumulates client context for
// proposal generation.
//
// The ledger is the source of truth for "has the operator supplied enough
// context": generation is gated on UserTurnCount() > 0. Turns are immutable
// once appended; there is no deletion or reordering.
package ledger

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// Role constants define valid turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrEmptyContent indicates a user turn with no content was rejected.
var ErrEmptyContent = errors.New("empty turn content")

// Turn represents one message in the conversation ledger.
// Immutable once appended.
type Turn struct {
	Role      string
	Content   string
	Timestamp time.Time
}

// NewUserTurn creates a user turn stamped with the current time.
func NewUserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content, Timestamp: time.Now()}
}

// NewAssistantTurn creates an assistant turn stamped with the current time.
func NewAssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content, Timestamp: time.Now()}
}

// acknowledgement is appended by the driving surface after each user turn.
const acknowledgement = "Context received and noted. Continue adding details or upload supporting documents. When ready, generate the proposal."

// Acknowledgement returns the canned assistant turn confirming captured context.
func Acknowledgement() Turn {
	return NewAssistantTurn(acknowledgement)
}

// Ledger encapsulates the ordered turn log with thread-safe access.
//
// Note: The zero value is NOT useful - use New() to create instances.
type Ledger struct {
	mu    sync.RWMutex
	turns []Turn
}

// New creates an empty Ledger.
func New() *Ledger {
	return &Ledger{turns: make([]Turn, 0)}
}

// Append adds a turn to the end of the ledger.
// User turns with empty (or whitespace-only) content are rejected with
// ErrEmptyContent; assistant turns have no content constraint.
func (l *Ledger) Append(t Turn) error {
	if t.Role == RoleUser && strings.TrimSpace(t.Content) == "" {
		return ErrEmptyContent
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = append(l.turns, t)
	return nil
}

// Turns returns a copy of all turns in append order.
func (l *Ledger) Turns() []Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make([]Turn, len(l.turns))
	copy(result, l.turns)
	return result
}

// UserTurnCount returns the number of user-authored turns.
func (l *Ledger) UserTurnCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, t := range l.turns {
		if t.Role == RoleUser {
			n++
		}
	}
	return n
}

// Len returns the total number of turns.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}
