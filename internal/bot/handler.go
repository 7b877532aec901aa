package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/lojasmm/smoky/internal/chatui"
	"github.com/lojasmm/smoky/internal/dialogflow"
	"github.com/lojasmm/smoky/internal/session"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrRateLimited  = errors.New("too many messages, slow down")
)

// Agent answers one user utterance.
type Agent interface {
	DetectIntentByText(ctx context.Context, message string) (*dialogflow.DetectIntentResponse, error)
}

type Handler struct {
	agent    Agent
	sessions *session.Manager
}

func NewHandler(agent Agent, sessions *session.Manager) *Handler {
	return &Handler{agent: agent, sessions: sessions}
}

// HandleText runs one round trip for a session: record the user's message,
// ask the agent, and append the normalized reply. It returns every message
// appended during the turn.
//
// When the agent call or normalization fails the user's message stays in
// the transcript but nothing else is appended.
func (h *Handler) HandleText(ctx context.Context, sessionID, text string) ([]chatui.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	var added []chatui.Message
	err := h.sessions.WithLock(sessionID, func(s *session.Session) error {
		if !s.Limiter.Allow() {
			return ErrRateLimited
		}

		userMsg := chatui.TextMessage(uuid.NewString(), text, chatui.PositionRight)
		s.Append(userMsg)
		added = append(added, userMsg)

		resp, err := h.agent.DetectIntentByText(ctx, text)
		if err != nil {
			return dialogflow.ClassifyError(err)
		}

		msgs, err := chatui.Normalize(resp)
		if err != nil {
			return fmt.Errorf("normalizing response: %w", err)
		}

		s.Append(msgs...)
		added = append(added, msgs...)
		log.Printf("bot: session %s: %d agent messages for %q", sessionID, len(msgs), truncate(text, 40))
		return nil
	})
	return added, err
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
