package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/umccanna/regulation-summarization/internal/services"
)

type SummarizeHandler struct {
	service *services.RegulationService
}

func NewSummarizeHandler(service *services.RegulationService) *SummarizeHandler {
	return &SummarizeHandler{service: service}
}

// Summarize answers one query against a regulation.
func (h *SummarizeHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req services.SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Regulation == "" {
		http.Error(w, "regulation is required", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	result, err := h.service.Summarize(r.Context(), &req)
	if err != nil {
		log.Printf("summarize failed: %v", err)
		http.Error(w, "error processing the query", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
