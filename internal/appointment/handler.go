package appointment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carepulse/intake-platform/pkg/logging"
)

// Handler exposes the appointment lifecycle over HTTP. It is the wire end of
// the form-to-action boundary: forms post CreateRequest / TransitionRequest
// shapes and receive the stored record back.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates an appointment handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// TransitionRequest is the update payload: the caller's intent plus the
// fields that intent requires.
type TransitionRequest struct {
	Type        string `json:"type"`
	Appointment Patch  `json:"appointment"`
}

// Create handles POST /api/appointments.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode create request", "error", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.service.RequestCreate(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// Get handles GET /api/appointments/{appointmentID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "appointmentID")

	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, a)
}

// Transition handles PATCH /api/appointments/{appointmentID}.
func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "appointmentID")

	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode transition request", "error", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.service.Transition(r.Context(), id, ParseIntent(req.Type), req.Appointment)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// writeError maps lifecycle errors onto the wire. Anything that is neither a
// validation failure nor a missing record surfaces as a generic "did not
// complete" so the form stays in its pre-submit state.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var validation *ValidationError
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": validation.Error(),
			"field": validation.Field,
		})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "appointment not found"})
	default:
		h.logger.Error("appointment operation did not complete", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "operation did not complete"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
