package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rosterup/platform/internal/auth"
	"github.com/rosterup/platform/internal/domain"
	"github.com/rosterup/platform/internal/repository"
)

// EventHandler serves admin event management and registration settings.
type EventHandler struct {
	db     repository.DBTX
	events repository.EventRepository
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(db repository.DBTX, events repository.EventRepository) *EventHandler {
	return &EventHandler{db: db, events: events}
}

type createEventRequest struct {
	Name        string     `json:"name"`
	Sport       string     `json:"sport"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

// Create handles POST /admin/events.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	admin := auth.AdminFromContext(r.Context())
	if admin == nil {
		RespondError(w, domain.ErrUnauthorized("admin session required"))
		return
	}

	var req createEventRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if req.Name == "" {
		RespondError(w, domain.ErrValidation("event name is required"))
		return
	}

	event := &domain.Event{
		ID:          uuid.New(),
		Name:        req.Name,
		Sport:       req.Sport,
		Location:    req.Location,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		CreatedBy:   admin.ID,
	}
	if err := h.events.Create(r.Context(), h.db, event); err != nil {
		RespondError(w, domain.ErrInternal("create event", err))
		return
	}
	RespondJSON(w, http.StatusCreated, event)
}

// List handles GET /admin/events.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List(r.Context(), h.db)
	if err != nil {
		RespondError(w, domain.ErrInternal("list events", err))
		return
	}
	RespondJSON(w, http.StatusOK, events)
}

// Get handles GET /admin/events/{id}.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid event id"))
		return
	}

	event, err := h.events.FindByID(r.Context(), h.db, id)
	if err != nil {
		RespondError(w, domain.ErrInternal("find event", err))
		return
	}
	if event == nil {
		RespondError(w, domain.ErrNotFound("event", id.String()))
		return
	}
	RespondJSON(w, http.StatusOK, event)
}

type upsertSettingsRequest struct {
	TeamRequirements   json.RawMessage `json:"team_requirements"`
	PlayerRequirements json.RawMessage `json:"player_requirements"`
}

// UpsertSettings handles PUT /admin/events/{id}/settings.
func (h *EventHandler) UpsertSettings(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid event id"))
		return
	}

	event, err := h.events.FindByID(r.Context(), h.db, id)
	if err != nil {
		RespondError(w, domain.ErrInternal("find event", err))
		return
	}
	if event == nil {
		RespondError(w, domain.ErrNotFound("event", id.String()))
		return
	}

	var req upsertSettingsRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	settings := &domain.RegistrationSettings{
		EventID:            id,
		TeamRequirements:   req.TeamRequirements,
		PlayerRequirements: req.PlayerRequirements,
	}
	if err := h.events.UpsertSettings(r.Context(), h.db, settings); err != nil {
		RespondError(w, domain.ErrInternal("upsert settings", err))
		return
	}
	RespondJSON(w, http.StatusOK, settings)
}

// GetSettings handles GET /admin/events/{id}/settings.
func (h *EventHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid event id"))
		return
	}

	settings, err := h.events.FindSettings(r.Context(), h.db, id)
	if err != nil {
		RespondError(w, domain.ErrInternal("find settings", err))
		return
	}
	if settings == nil {
		RespondError(w, domain.ErrNotFound("registration settings", id.String()))
		return
	}
	RespondJSON(w, http.StatusOK, settings)
}
