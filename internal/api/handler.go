package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lojasmm/smoky/internal/bot"
	"github.com/lojasmm/smoky/internal/chatui"
	"github.com/lojasmm/smoky/internal/config"
	"github.com/lojasmm/smoky/internal/dialogflow"
	"github.com/lojasmm/smoky/internal/mathinput"
	"github.com/lojasmm/smoky/internal/session"
)

const genericFailure = "Something went wrong. Please try again."

// Handler serves the chat widget.
type Handler struct {
	bot      *bot.Handler
	sessions *session.Manager
	profile  *config.Profile
}

func NewHandler(b *bot.Handler, sessions *session.Manager, profile *config.Profile) *Handler {
	return &Handler{bot: b, sessions: sessions, profile: profile}
}

type errorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

type sessionResponse struct {
	ID       string           `json:"id"`
	Messages []chatui.Message `json:"messages"`
}

type sendRequest struct {
	Text string `json:"text"`
}

type messagesResponse struct {
	Messages []chatui.Message `json:"messages"`
}

type locateRequest struct {
	Text   string `json:"text"`
	Cursor int    `json:"cursor"`
}

type locateResponse struct {
	Found      bool   `json:"found"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Expression string `json:"expression,omitempty"`
}

type replaceRequest struct {
	Text       string `json:"text"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Expression string `json:"expression"`
}

type replaceResponse struct {
	Text string `json:"text"`
}

func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.profile)
}

func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	msgs, err := h.sessions.Snapshot(s.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, genericFailure, "")
		return
	}
	log.Printf("api: session %s created", s.ID)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: s.ID, Messages: nonNil(msgs)})
}

func (h *Handler) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.sessions.Snapshot(chi.URLParam(r, "sessionID"))
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error(), "")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, genericFailure, "")
		return
	}
	writeJSON(w, http.StatusOK, messagesResponse{Messages: nonNil(msgs)})
}

// HandleSendMessage runs one turn. Quick replies post their name here too.
func (h *Handler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	added, err := h.bot.HandleText(r.Context(), sessionID, req.Text)

	var agentErr *dialogflow.AgentError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, messagesResponse{Messages: nonNil(added)})
	case errors.Is(err, bot.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, bot.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error(), "")
	case errors.As(err, &agentErr):
		log.Printf("api: session %s: agent error (%s): %v", sessionID, agentErr.Type, agentErr.Err)
		writeError(w, http.StatusBadGateway, genericFailure, agentErr.Message)
	default:
		log.Printf("api: session %s: %v", sessionID, err)
		writeError(w, http.StatusBadGateway, genericFailure, "")
	}
}

// HandleLocateMath reports the $...$ span under the cursor, if any.
// No match is a normal answer, not an error.
func (h *Handler) HandleLocateMath(w http.ResponseWriter, r *http.Request) {
	var req locateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "")
		return
	}

	rng, ok := mathinput.FindDelimiterRange(req.Text, req.Cursor)
	if !ok {
		writeJSON(w, http.StatusOK, locateResponse{Found: false})
		return
	}
	writeJSON(w, http.StatusOK, locateResponse{
		Found:      true,
		Start:      rng.Start,
		End:        rng.End,
		Expression: mathinput.Expression(req.Text, rng),
	})
}

// HandleReplaceMath writes an edited expression back over its span.
func (h *Handler) HandleReplaceMath(w http.ResponseWriter, r *http.Request) {
	var req replaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "")
		return
	}

	text := mathinput.Substitute(req.Text, mathinput.Range{Start: req.Start, End: req.End}, req.Expression)
	writeJSON(w, http.StatusOK, replaceResponse{Text: text})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg, hint string) {
	writeJSON(w, status, errorResponse{Error: msg, Hint: hint})
}

func nonNil(msgs []chatui.Message) []chatui.Message {
	if msgs == nil {
		return []chatui.Message{}
	}
	return msgs
}
