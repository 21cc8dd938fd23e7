// Package chat is the per-turn call boundary between the UI and the pipeline.
// It records both sides of every exchange and converts pipeline failures into
// the user-facing error turn instead of letting them escape the session.
package chat

import (
	"context"
	"fmt"

	"github.com/phuslu/log"

	"cordchat/internal/domain"
	"cordchat/internal/pipeline"
	"cordchat/internal/session"
)

// Answerer is the pipeline surface the handler needs.
type Answerer interface {
	Answer(ctx context.Context, question string) (pipeline.Reply, error)
}

// Handler runs one exchange at a time against a single session.
type Handler struct {
	pipeline Answerer
	session  *session.Session
}

// NewHandler binds a pipeline to a session.
func NewHandler(p Answerer, s *session.Session) *Handler {
	return &Handler{pipeline: p, session: s}
}

// Session exposes the conversation log for rendering and clearing.
func (h *Handler) Session() *session.Session { return h.session }

// Ask records the question, runs the pipeline, and records the assistant
// turn. A pipeline error is terminal for this turn only: it becomes the
// assistant's content with no sources, and the next question proceeds
// independently.
func (h *Handler) Ask(ctx context.Context, question string) domain.Turn {
	h.session.Append(domain.Turn{Role: domain.RoleUser, Content: question})

	reply, err := h.pipeline.Answer(ctx, question)
	var turn domain.Turn
	if err != nil {
		log.Warn().Err(err).Msg("turn failed")
		turn = domain.Turn{
			Role:    domain.RoleAssistant,
			Content: fmt.Sprintf("Sorry, I encountered an error: %v", err),
		}
	} else {
		turn = domain.Turn{
			Role:    domain.RoleAssistant,
			Content: reply.Text,
			Sources: reply.Sources,
		}
	}
	h.session.Append(turn)
	return turn
}
