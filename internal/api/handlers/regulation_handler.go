package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/umccanna/regulation-summarization/internal/services"
)

type RegulationHandler struct {
	service *services.RegulationService
}

func NewRegulationHandler(service *services.RegulationService) *RegulationHandler {
	return &RegulationHandler{service: service}
}

// GetRegulations lists every regulation available for querying.
func (h *RegulationHandler) GetRegulations(w http.ResponseWriter, r *http.Request) {
	regulations, err := h.service.Regulations(r.Context())
	if err != nil {
		log.Printf("list regulations failed: %v", err)
		http.Error(w, "error listing regulations", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(regulations)
}
