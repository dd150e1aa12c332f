package patient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carepulse/intake-platform/pkg/logging"
)

// maxDocumentSize bounds identification uploads at 10 MiB, matching the
// intake form's client-side limit.
const maxDocumentSize = 10 << 20

// Repository is the registry contract the handler depends on.
type Repository interface {
	Create(ctx context.Context, p *Patient) (*Patient, error)
	Get(ctx context.Context, id string) (*Patient, error)
	GetByUserID(ctx context.Context, userID string) (*Patient, error)
	SetIdentificationDocument(ctx context.Context, id, documentKey string) (*Patient, error)
}

// Welcomer sends a best-effort registration confirmation.
type Welcomer interface {
	SendRegistrationConfirmation(ctx context.Context, name, email string) error
}

// Handler exposes patient registration and lookup over HTTP.
type Handler struct {
	repo      Repository
	documents *DocumentStore
	welcomer  Welcomer
	logger    *logging.Logger
}

// NewHandler creates a patient handler. documents and welcomer may be nil.
func NewHandler(repo Repository, documents *DocumentStore, welcomer Welcomer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:      repo,
		documents: documents,
		welcomer:  welcomer,
		logger:    logger,
	}
}

// Register handles POST /api/patients.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode registration request", "error", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, err)
		return
	}

	created, err := h.repo.Create(r.Context(), &Patient{
		UserID:                 req.UserID,
		Name:                   req.Name,
		Email:                  req.Email,
		Phone:                  req.Phone,
		BirthDate:              req.BirthDate,
		Gender:                 req.Gender,
		Address:                req.Address,
		Occupation:             req.Occupation,
		EmergencyContactName:   req.EmergencyContactName,
		EmergencyContactNumber: req.EmergencyContactNumber,
		PrimaryPhysician:       req.PrimaryPhysician,
		InsuranceProvider:      req.InsuranceProvider,
		InsurancePolicyNumber:  req.InsurancePolicyNumber,
		Allergies:              req.Allergies,
		CurrentMedication:      req.CurrentMedication,
		FamilyMedicalHistory:   req.FamilyMedicalHistory,
		PastMedicalHistory:     req.PastMedicalHistory,
		IdentificationType:     req.IdentificationType,
		IdentificationNumber:   req.IdentificationNumber,
		TreatmentConsent:       req.TreatmentConsent,
		DisclosureConsent:      req.DisclosureConsent,
		PrivacyConsent:         req.PrivacyConsent,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.Info("patient registered", "id", created.ID, "user_id", created.UserID)

	if h.welcomer != nil {
		if err := h.welcomer.SendRegistrationConfirmation(r.Context(), created.Name, created.Email); err != nil {
			h.logger.Error("registration confirmation failed", "error", err, "id", created.ID)
		}
	}

	writeJSON(w, http.StatusCreated, created)
}

// Get handles GET /api/patients/{patientID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "patientID")

	p, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// GetByUser handles GET /api/users/{userID}/patient.
func (h *Handler) GetByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	p, err := h.repo.GetByUserID(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// UploadIdentification handles POST /api/patients/{patientID}/documents. It
// accepts a multipart form with an "identificationDocument" file.
func (h *Handler) UploadIdentification(w http.ResponseWriter, r *http.Request) {
	if h.documents == nil {
		http.Error(w, "document storage not configured", http.StatusNotImplemented)
		return
	}
	id := chi.URLParam(r, "patientID")

	if err := r.ParseMultipartForm(maxDocumentSize); err != nil {
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("identificationDocument")
	if err != nil {
		http.Error(w, "identificationDocument file required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	key, err := h.documents.Upload(r.Context(), id, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.writeError(w, err)
		return
	}

	updated, err := h.repo.SetIdentificationDocument(r.Context(), id, key)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var validation *ValidationError
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": validation.Error(),
			"field": validation.Field,
		})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "patient not found"})
	default:
		h.logger.Error("patient operation did not complete", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "operation did not complete"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
