// Package session keeps the in-memory conversation log for one interactive
// session. The log is append-only; the only destructive operation is an
// explicit bulk clear. A single request path mutates it, so no locking.
package session

import (
	"iter"

	"cordchat/internal/domain"
)

// Session is an ordered log of conversation turns, oldest first.
type Session struct {
	turns []domain.Turn
}

// New creates an empty session.
func New() *Session { return &Session{} }

// Append adds a turn to the end of the log.
func (s *Session) Append(t domain.Turn) {
	s.turns = append(s.turns, t)
}

// Clear discards all history irrecoverably.
func (s *Session) Clear() {
	s.turns = nil
}

// Len returns the number of recorded turns.
func (s *Session) Len() int { return len(s.turns) }

// Turns yields the recorded turns in insertion order. The sequence is
// restartable and does not mutate the session.
func (s *Session) Turns() iter.Seq[domain.Turn] {
	return func(yield func(domain.Turn) bool) {
		for _, t := range s.turns {
			if !yield(t) {
				return
			}
		}
	}
}
