package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/umccanna/regulation-summarization/internal/services"
)

type ConversationHandler struct {
	service *services.RegulationService
}

func NewConversationHandler(service *services.RegulationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

type listConversationsRequest struct {
	UserID string `json:"userId"`
}

// ListConversations returns the user's recent threads, newest first.
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	var req listConversationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	conversations, err := h.service.Conversations(r.Context(), req.UserID)
	if err != nil {
		log.Printf("list conversations failed: %v", err)
		http.Error(w, "error listing conversations", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(conversations)
}

type loadConversationRequest struct {
	UserID         string `json:"userId"`
	ConversationID string `json:"conversationId"`
}

// LoadConversation returns one thread with its full log.
func (h *ConversationHandler) LoadConversation(w http.ResponseWriter, r *http.Request) {
	var req loadConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}
	if req.ConversationID == "" {
		http.Error(w, "conversationId is required", http.StatusBadRequest)
		return
	}

	conversation, err := h.service.Conversation(r.Context(), req.UserID, req.ConversationID)
	if err != nil {
		log.Printf("load conversation failed: %v", err)
		http.Error(w, "error loading conversation", http.StatusInternalServerError)
		return
	}
	if conversation == nil {
		http.Error(w, "conversation not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(conversation)
}

type migrateConversationsRequest struct {
	OldUserID string `json:"oldUserId"`
	NewUserID string `json:"newUserId"`
}

// MigrateConversations moves all threads from one user id to another, used
// when an anonymous session signs in.
func (h *ConversationHandler) MigrateConversations(w http.ResponseWriter, r *http.Request) {
	var req migrateConversationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.OldUserID == "" || req.NewUserID == "" {
		http.Error(w, "oldUserId and newUserId are required", http.StatusBadRequest)
		return
	}

	if err := h.service.MigrateConversations(r.Context(), req.OldUserID, req.NewUserID); err != nil {
		log.Printf("migrate conversations failed: %v", err)
		http.Error(w, "error migrating conversations", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}
