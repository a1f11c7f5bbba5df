package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rosterup/platform/internal/auth"
	"github.com/rosterup/platform/internal/domain"
	"github.com/rosterup/platform/internal/service"
)

// RegistrationHandler serves the admin-facing registration endpoints.
type RegistrationHandler struct {
	registrations *service.RegistrationService
}

// NewRegistrationHandler creates a RegistrationHandler.
func NewRegistrationHandler(registrations *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations}
}

// ListByEvent handles GET /registrations/{eventID}?status=.
func (h *RegistrationHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid event id"))
		return
	}

	regs, err := h.registrations.ListByEvent(r.Context(), eventID, r.URL.Query().Get("status"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, regs)
}

type createRegistrationRequest struct {
	TeamData    map[string]any        `json:"team_data"`
	PlayersData []domain.PlayerRecord `json:"players_data"`
}

// Create handles POST /registrations/{eventID}: an admin manual add,
// inserted directly as approved.
func (h *RegistrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	admin := auth.AdminFromContext(r.Context())
	if admin == nil {
		RespondError(w, domain.ErrUnauthorized("admin session required"))
		return
	}

	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid event id"))
		return
	}

	var req createRegistrationRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	reg, err := h.registrations.AdminCreate(r.Context(), eventID, admin.ID, req.TeamData, req.PlayersData)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, reg)
}

type reviewRequest struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason"`
}

// Review handles POST /registrations/{id}/review.
func (h *RegistrationHandler) Review(w http.ResponseWriter, r *http.Request) {
	admin := auth.AdminFromContext(r.Context())
	if admin == nil {
		RespondError(w, domain.ErrUnauthorized("admin session required"))
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid registration id"))
		return
	}

	var req reviewRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	status, err := domain.NormalizeStatus(req.Status)
	if err != nil {
		RespondError(w, domain.ErrValidation("review status must be approved or rejected"))
		return
	}

	reg, err := h.registrations.Review(r.Context(), id, domain.ReviewDecision{
		Status:          status,
		RejectionReason: req.RejectionReason,
		ReviewerID:      admin.ID,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, reg)
}
