package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/advision/internal/db"
	"github.com/jonathan/advision/internal/llm"
	"github.com/jonathan/advision/internal/types"
	"go.uber.org/zap"
)

// ConversationResponse is a conversation with its messages, oldest first.
type ConversationResponse struct {
	ConversationID uuid.UUID        `json:"conversation_id"`
	ProductName    string           `json:"product_name,omitempty"`
	Messages       []db.ChatMessage `json:"messages"`
}

// ConversationListResponse wraps the caller's conversations.
type ConversationListResponse struct {
	Conversations []db.ConversationSummary `json:"conversations"`
	Count         int                      `json:"count"`
}

// handleDesignSuggestion generates an ad design suggestion and starts a new
// conversation holding the request and the reply.
func (s *Server) handleDesignSuggestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req types.DesignSuggestionRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	suggestion, err := s.generator.DesignSuggestion(r.Context(), req.Input, req.Platform, req.Goal)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	conversationID := uuid.New()
	productName := strings.TrimSpace(req.ProductName)
	messages, err := s.appendTurn(r, conversationID, userID, productName, req.Input, suggestion)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.logger.Info("design conversation started",
		zap.String("conversation_id", conversationID.String()),
		zap.String("platform", req.Platform))
	s.jsonResponse(w, http.StatusCreated, ConversationResponse{
		ConversationID: conversationID,
		ProductName:    productName,
		Messages:       messages,
	})
}

// handleListConversations lists the caller's conversations, most recently
// active first.
func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	conversations, err := s.store.ListConversations(r.Context(), userID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if conversations == nil {
		conversations = []db.ConversationSummary{}
	}
	s.jsonResponse(w, http.StatusOK, ConversationListResponse{Conversations: conversations, Count: len(conversations)})
}

// handleGetConversation returns every message of a conversation.
func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	conversationID, history, ok := s.ownedConversation(w, r, userID)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, ConversationResponse{
		ConversationID: conversationID,
		ProductName:    history[0].ProductName,
		Messages:       history,
	})
}

// handleContinueConversation answers one chat turn using the stored history
// and appends both sides of the turn.
func (s *Server) handleContinueConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	conversationID, history, ok := s.ownedConversation(w, r, userID)
	if !ok {
		return
	}
	var req types.ChatRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	turns := make([]llm.Message, 0, len(history))
	for _, m := range history {
		turns = append(turns, llm.Message{Role: llm.Role(m.Role), Content: m.Content})
	}
	reply, err := s.generator.Converse(r.Context(), req.Message, turns)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	productName := history[0].ProductName
	messages, err := s.appendTurn(r, conversationID, userID, productName, req.Message, reply)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ConversationResponse{
		ConversationID: conversationID,
		ProductName:    productName,
		Messages:       messages,
	})
}

// handleDeleteConversation deletes a conversation and all of its messages.
func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	s.deleteOwned(w, r, "conversation", s.store.DeleteConversation)
}

// ownedConversation loads the {id} conversation, writing a 404 when it has
// no messages visible to the caller.
func (s *Server) ownedConversation(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (uuid.UUID, []db.ChatMessage, bool) {
	conversationID, ok := s.pathID(w, r)
	if !ok {
		return uuid.Nil, nil, false
	}
	history, err := s.store.ListChatMessages(r.Context(), conversationID, userID)
	if err != nil {
		s.handleError(w, r, err)
		return uuid.Nil, nil, false
	}
	if len(history) == 0 {
		s.handleError(w, r, notFound("conversation", conversationID))
		return uuid.Nil, nil, false
	}
	return conversationID, history, true
}

// appendTurn stores a user message and the assistant reply, in that order.
func (s *Server) appendTurn(r *http.Request, conversationID, userID uuid.UUID, productName, userText, reply string) ([]db.ChatMessage, error) {
	out := make([]db.ChatMessage, 0, 2)
	for _, m := range []struct{ role, content string }{
		{db.RoleUser, userText},
		{db.RoleAssistant, reply},
	} {
		msg, err := s.store.AppendChatMessage(r.Context(), conversationID, userID, m.role, m.content, productName)
		if err != nil {
			return nil, err
		}
		out = append(out, *msg)
	}
	return out, nil
}
