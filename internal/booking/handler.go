// Package booking consumes booking-confirmation webhooks and advances the
// matching opportunity to its scheduled status.
package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ciia-mx/leadflow/internal/actionlog"
	"github.com/ciia-mx/leadflow/internal/observability/metrics"
	"github.com/ciia-mx/leadflow/pkg/logging"
)

const eventBookingCreated = "BOOKING_CREATED"

// StatusUpdater is the slice of the directory client this handler needs.
type StatusUpdater interface {
	UpdateOpportunityStatus(ctx context.Context, opportunityID, statusID string) error
}

// ActionRecorder appends audit entries for processed bookings.
type ActionRecorder interface {
	Append(channel actionlog.Channel, data map[string]any) error
}

// Handler handles the booking provider's webhook callbacks.
type Handler struct {
	directory StatusUpdater
	actions   ActionRecorder
	secret    string
	metrics   *metrics.LeadMetrics
	logger    *logging.Logger
}

// NewHandler creates a booking callback handler. secret may be empty, in
// which case the shared-secret check is skipped.
func NewHandler(directory StatusUpdater, actions ActionRecorder, secret string, m *metrics.LeadMetrics, logger *logging.Logger) *Handler {
	if directory == nil || actions == nil {
		panic("booking: directory and actions cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		directory: directory,
		actions:   actions,
		secret:    secret,
		metrics:   m,
		logger:    logger,
	}
}

type callbackEvent struct {
	Event   string          `json:"event"`
	Type    string          `json:"type"`
	LeadID  json.RawMessage `json:"lead_id"`
	Payload struct {
		Metadata struct {
			LeadID json.RawMessage `json:"lead_id"`
		} `json:"metadata"`
	} `json:"payload"`
}

// HandleCallback handles POST /api/calcom requests.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	var event callbackEvent
	// An unreadable body decodes to the zero event, which is simply ignored
	// below like any unrecognized event type.
	_ = json.NewDecoder(r.Body).Decode(&event)

	eventType := event.Event
	if eventType == "" {
		eventType = event.Type
	}
	if eventType != eventBookingCreated {
		h.metrics.ObserveBookingEvent("ignored")
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "ignored"})
		return
	}

	if h.secret != "" {
		if r.Header.Get("x-webhook-secret") != h.secret {
			// Security rejection, not an application fault: no log entry.
			h.metrics.ObserveBookingEvent("unauthorized")
			h.logger.Warn("booking webhook rejected: secret mismatch")
			writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "unauthorized webhook"})
			return
		}
	}

	leadID := tokenString(event.Payload.Metadata.LeadID)
	if leadID == "" {
		leadID = tokenString(event.LeadID)
	}
	if leadID == "" {
		h.metrics.ObserveBookingEvent("invalid")
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "lead_id missing"})
		return
	}

	if err := h.directory.UpdateOpportunityStatus(r.Context(), leadID, ""); err != nil {
		h.metrics.ObserveBookingEvent("error")
		h.logger.Error("booking status update failed", "lead_id", leadID, "error", err)
		if logErr := h.actions.Append(actionlog.ChannelError, map[string]any{
			"context": "booking_callback",
			"message": err.Error(),
		}); logErr != nil {
			h.logger.Error("failed to record booking error", "error", logErr)
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		return
	}

	if err := h.actions.Append(actionlog.ChannelDirectory, map[string]any{
		"action":  "lead_agendado",
		"lead_id": leadID,
	}); err != nil {
		h.logger.Error("failed to record booking", "error", err)
	}
	h.metrics.ObserveBookingEvent("scheduled")
	h.logger.Info("booking confirmed", "lead_id", leadID)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// tokenString extracts an identifier that providers send either as a JSON
// string or a number.
func tokenString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
