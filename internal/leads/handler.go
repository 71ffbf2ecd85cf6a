package leads

import (
	"encoding/json"
	"net/http"

	"github.com/ciia-mx/leadflow/pkg/logging"
)

// Handler handles HTTP requests for lead submissions
type Handler struct {
	orchestrator *Orchestrator
	logger       *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(orchestrator *Orchestrator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Create handles POST /api/lead requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var sub Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		// An unreadable body is treated as an empty submission so validation
		// reports every required field.
		sub = Submission{}
	}

	leadID, err := h.orchestrator.HandleSubmission(r.Context(), sub)
	if err != nil {
		status := http.StatusInternalServerError
		if IsValidationError(err) {
			status = http.StatusBadRequest
		} else {
			h.logger.Error("lead submission failed", "error", err)
		}
		writeJSON(w, status, map[string]any{"ok": false, "error": err.Error()})
		return
	}

	h.logger.Info("lead submission accepted", "lead_id", leadID)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "lead_id": leadID})
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
