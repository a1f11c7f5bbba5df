package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rosterup/platform/internal/domain"
	"github.com/rosterup/platform/internal/service"
)

// ShareLinkHandler serves the public player-share endpoints. These sit on
// the guard's allow-list: the token itself is the credential.
type ShareLinkHandler struct {
	shares *service.ShareLinkService
}

// NewShareLinkHandler creates a ShareLinkHandler.
func NewShareLinkHandler(shares *service.ShareLinkService) *ShareLinkHandler {
	return &ShareLinkHandler{shares: shares}
}

// Get handles GET /player-share/{token}.
func (h *ShareLinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	shareCtx, err := h.shares.GetContext(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, shareCtx)
}

type mergeRequest struct {
	PlayerData map[string]any `json:"player_data"`
}

// Put handles PUT /player-share/{token}.
func (h *ShareLinkHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if len(req.PlayerData) == 0 {
		RespondError(w, domain.ErrValidation("player_data is required"))
		return
	}

	players, err := h.shares.MergePlayerEdit(r.Context(), chi.URLParam(r, "token"), req.PlayerData)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"players_data": players})
}
