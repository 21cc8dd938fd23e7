package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cordchat/internal/domain"
)

func collect(s *Session) []domain.Turn {
	var out []domain.Turn
	for t := range s.Turns() {
		out = append(out, t)
	}
	return out
}

func TestAppend_PreservesInsertionOrder(t *testing.T) {
	s := New()
	s.Append(domain.Turn{Role: domain.RoleUser, Content: "first"})
	s.Append(domain.Turn{Role: domain.RoleAssistant, Content: "second"})
	s.Append(domain.Turn{Role: domain.RoleUser, Content: "third"})

	turns := collect(s)
	require.Len(t, turns, 3)
	assert.Equal(t, "first", turns[0].Content)
	assert.Equal(t, "second", turns[1].Content)
	assert.Equal(t, "third", turns[2].Content)
}

func TestClear_EmptiesRegardlessOfHistory(t *testing.T) {
	s := New()
	for i := 0; i < 50; i++ {
		s.Append(domain.Turn{Role: domain.RoleUser, Content: "q"})
	}
	require.Equal(t, 50, s.Len())

	s.Clear()
	assert.Zero(t, s.Len())
	assert.Empty(t, collect(s))
}

func TestTurns_Restartable(t *testing.T) {
	s := New()
	s.Append(domain.Turn{Role: domain.RoleUser, Content: "q"})
	s.Append(domain.Turn{Role: domain.RoleAssistant, Content: "a"})

	seq := s.Turns()
	first := 0
	for range seq {
		first++
		break // abandon mid-iteration
	}
	second := 0
	for range seq {
		second++
	}
	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}
