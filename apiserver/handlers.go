package apiserver

import (
	"encoding/json"
	"net/http"

	"github.com/effective-security/chatops/agent"
	"github.com/effective-security/chatops/pkg/llms"
	"github.com/effective-security/chatops/toolservice"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// failureMessage is returned to the chat surface when a run fails; the real
// error is logged, not exposed.
const failureMessage = "the assistant could not complete the request"

// ChatRequest is the body of POST /v1/chat.
type ChatRequest struct {
	// ChatID names the conversation to continue. Empty starts a new chat.
	ChatID string `json:"chat_id,omitempty"`
	// UserID is the chat-platform identity of the requester.
	UserID string `json:"user_id,omitempty"`
	// Scope is the session access scope: read or write.
	Scope string `json:"scope"`
	// Prompt is the user's question.
	Prompt string `json:"prompt"`
}

// ChatResponse is the body of a successful POST /v1/chat.
type ChatResponse struct {
	ChatID string `json:"chat_id"`
	Reply  string `json:"reply"`
}

// writeJSON serialises data as JSON and writes it to the response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.KV(xlog.ERROR, "reason", "encode_response", "err", err.Error())
	}
}

// writeError writes a JSON error envelope to the response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Prompt == "" {
		s.writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	scope, err := toolservice.ParseSessionScope(req.Scope)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	chatID := req.ChatID
	if chatID == "" {
		chatID = uuid.New().String()
	}

	reply, err := s.runner.Run(ctx, &agent.Request{
		Prompt:  req.Prompt,
		Scope:   scope,
		UserID:  req.UserID,
		History: s.store.Messages(ctx, chatID),
	})
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR,
			"reason", "run_failed",
			"chat_id", chatID,
			"scope", scope,
			"err", err.Error(),
		)
		s.writeError(w, http.StatusBadGateway, failureMessage)
		return
	}

	if err := s.store.Add(ctx, chatID, llms.UserMessage(req.Prompt)); err == nil {
		_ = s.store.Add(ctx, chatID, llms.AssistantMessage(reply))
	}

	s.writeJSON(w, http.StatusOK, &ChatResponse{
		ChatID: chatID,
		Reply:  reply,
	})
}

func (s *Server) handleResetChat(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["chat_id"]
	if err := s.store.Reset(r.Context(), chatID); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
