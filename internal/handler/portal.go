package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rosterup/platform/internal/auth"
	"github.com/rosterup/platform/internal/domain"
	"github.com/rosterup/platform/internal/service"
)

// PortalHandler serves the coach-facing portal API.
type PortalHandler struct {
	registrations *service.RegistrationService
	shareLinkTTL  time.Duration
}

// NewPortalHandler creates a PortalHandler.
func NewPortalHandler(registrations *service.RegistrationService, shareLinkTTL time.Duration) *PortalHandler {
	return &PortalHandler{registrations: registrations, shareLinkTTL: shareLinkTTL}
}

func coachFrom(r *http.Request) (*domain.Coach, error) {
	coach := auth.CoachFromContext(r.Context())
	if coach == nil {
		return nil, domain.ErrUnauthorized("coach session required")
	}
	return coach, nil
}

// List handles GET /api/portal/registrations.
func (h *PortalHandler) List(w http.ResponseWriter, r *http.Request) {
	coach, err := coachFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	regs, err := h.registrations.ListByCoach(r.Context(), coach.ID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, regs)
}

type createDraftRequest struct {
	EventID     uuid.UUID             `json:"event_id"`
	TeamData    map[string]any        `json:"team_data"`
	PlayersData []domain.PlayerRecord `json:"players_data"`
}

// Create handles POST /api/portal/registrations.
func (h *PortalHandler) Create(w http.ResponseWriter, r *http.Request) {
	coach, err := coachFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req createDraftRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if req.EventID == uuid.Nil {
		RespondError(w, domain.ErrValidation("event_id is required"))
		return
	}

	reg, err := h.registrations.CreateDraft(r.Context(), req.EventID, coach.ID, req.TeamData, req.PlayersData)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, reg)
}

type updateRegistrationRequest struct {
	TeamData    map[string]any        `json:"team_data"`
	PlayersData []domain.PlayerRecord `json:"players_data"`
}

// Update handles PUT /api/portal/registrations/{id}.
func (h *PortalHandler) Update(w http.ResponseWriter, r *http.Request) {
	coach, err := coachFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid registration id"))
		return
	}

	var req updateRegistrationRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	reg, err := h.registrations.Update(r.Context(), id, coach.ID, req.TeamData, req.PlayersData)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, reg)
}

// Submit handles POST /api/portal/registrations/{id}/submit.
func (h *PortalHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.registrations.Submit)
}

// Cancel handles POST /api/portal/registrations/{id}/cancel.
func (h *PortalHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.registrations.Cancel)
}

func (h *PortalHandler) transition(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id, coachID uuid.UUID) (*domain.Registration, error)) {
	coach, err := coachFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid registration id"))
		return
	}

	reg, err := apply(r.Context(), id, coach.ID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, reg)
}

type mintShareLinkRequest struct {
	PlayerID    *string `json:"player_id"`
	PlayerIndex *int    `json:"player_index"`
}

// MintShareLink handles POST /api/portal/registrations/{id}/share-links.
func (h *PortalHandler) MintShareLink(w http.ResponseWriter, r *http.Request) {
	coach, err := coachFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid registration id"))
		return
	}

	var req mintShareLinkRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	token, err := h.registrations.MintShareLink(r.Context(), id, coach.ID, req.PlayerID, req.PlayerIndex, h.shareLinkTTL)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, token)
}

// Notifications handles GET /api/portal/notifications.
func (h *PortalHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	coach, err := coachFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	list, err := h.registrations.ListUnreadNotifications(r.Context(), coach.ID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, list)
}

type markReadRequest struct {
	NotificationID uuid.UUID `json:"notification_id"`
}

// MarkNotificationRead handles POST /api/portal/notifications/read.
func (h *PortalHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	coach, err := coachFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req markReadRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if req.NotificationID == uuid.Nil {
		RespondError(w, domain.ErrValidation("notification_id is required"))
		return
	}

	if err := h.registrations.MarkNotificationRead(r.Context(), coach.ID, req.NotificationID); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, nil)
}
