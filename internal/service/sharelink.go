package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/rosterup/platform/internal/domain"
	"github.com/rosterup/platform/internal/repository"
	"github.com/rosterup/platform/internal/roster"
)

// ShareLinkService runs the player-share flow: reading the context a share
// link exposes and merging a player's edit into their slot.
type ShareLinkService struct {
	db            repository.DBTX
	tokens        repository.ShareTokenRepository
	registrations repository.RegistrationRepository
	events        repository.EventRepository
	logger        *slog.Logger
	now           func() time.Time
}

// NewShareLinkService creates a ShareLinkService.
func NewShareLinkService(
	db repository.DBTX,
	tokens repository.ShareTokenRepository,
	registrations repository.RegistrationRepository,
	events repository.EventRepository,
	logger *slog.Logger,
) *ShareLinkService {
	return &ShareLinkService{
		db:            db,
		tokens:        tokens,
		registrations: registrations,
		events:        events,
		logger:        logger,
		now:           time.Now,
	}
}

// ShareContext is everything a share-link page needs: the token, the
// registration, the event with its settings nested, and which slot the
// token targets (-1 when the edit would append a new entry).
type ShareContext struct {
	Token        *domain.PlayerShareToken     `json:"token"`
	Registration *domain.Registration         `json:"registration"`
	Event        *domain.Event                `json:"event"`
	Settings     *domain.RegistrationSettings `json:"settings,omitempty"`
	TargetIndex  int                          `json:"target_index"`
	WindowState  domain.WindowState           `json:"window_state"`
}

// GetContext resolves a share token for display. Missing and inactive
// tokens are both not-found; expired ones are reported distinctly so the
// caller can say "expired" instead of "bad link".
func (s *ShareLinkService) GetContext(ctx context.Context, tokenStr string) (*ShareContext, error) {
	token, reg, settings, err := s.resolve(ctx, tokenStr)
	if err != nil {
		return nil, err
	}

	event, err := s.events.FindByID(ctx, s.db, token.EventID)
	if err != nil {
		return nil, domain.ErrInternal("find event", err)
	}
	if event == nil {
		return nil, domain.ErrNotFound("event", token.EventID.String())
	}

	var window domain.RegistrationWindow
	if settings != nil {
		window = domain.ParseTeamRequirements(settings.TeamRequirements).Window()
	}

	return &ShareContext{
		Token:        token,
		Registration: reg,
		Event:        event,
		Settings:     settings,
		TargetIndex:  roster.Resolve(reg.PlayersData, roster.SlotFromToken(token)),
		WindowState:  window.StateAt(s.now()),
	}, nil
}

// MergePlayerEdit applies one player's submitted fields to their slot.
// Preconditions run in order, first failure wins: token validity, the
// event's editing window, then the registration's status. The write back is
// conditioned on the version the players list was read at, so two share
// links racing on the same registration cannot silently drop each other's
// rows. used_at is stamped best-effort after a successful write.
func (s *ShareLinkService) MergePlayerEdit(ctx context.Context, tokenStr string, playerData map[string]any) ([]domain.PlayerRecord, error) {
	token, reg, settings, err := s.resolve(ctx, tokenStr)
	if err != nil {
		return nil, err
	}

	if settings != nil {
		window := domain.ParseTeamRequirements(settings.TeamRequirements).Window()
		if window.ClosedAt(s.now()) {
			return nil, domain.ErrRegistrationClosed()
		}
	}

	if !reg.Status.Editable() {
		return nil, domain.ErrNotEditable(reg.Status)
	}

	updated, err := roster.Merge(reg.PlayersData, roster.SlotFromToken(token), playerData)
	if err != nil {
		return nil, err
	}

	ok, err := s.registrations.UpdatePlayersCAS(ctx, s.db, reg.ID, updated, reg.Version)
	if err != nil {
		return nil, domain.ErrInternal("write players_data", err)
	}
	if !ok {
		return nil, domain.ErrConflict("registration was modified concurrently, retry the edit")
	}

	if err := s.tokens.MarkUsed(ctx, s.db, token.Token, s.now()); err != nil {
		s.logger.Warn("mark share token used failed", "token", token.Token, "error", err)
	}

	return updated, nil
}

// resolve loads the token with its registration and settings, enforcing the
// shared validity checks (active, unexpired, registration present).
func (s *ShareLinkService) resolve(ctx context.Context, tokenStr string) (*domain.PlayerShareToken, *domain.Registration, *domain.RegistrationSettings, error) {
	token, err := s.tokens.FindByToken(ctx, s.db, tokenStr)
	if err != nil {
		return nil, nil, nil, domain.ErrInternal("find share token", err)
	}
	if token == nil {
		return nil, nil, nil, domain.ErrNotFound("share link", tokenStr)
	}
	if err := token.CheckUsable(s.now()); err != nil {
		return nil, nil, nil, err
	}

	reg, err := s.registrations.FindByID(ctx, s.db, token.RegistrationID)
	if err != nil {
		return nil, nil, nil, domain.ErrInternal("find registration", err)
	}
	if reg == nil {
		return nil, nil, nil, domain.ErrNotFound("registration", token.RegistrationID.String())
	}

	settings, err := s.events.FindSettings(ctx, s.db, token.EventID)
	if err != nil {
		return nil, nil, nil, domain.ErrInternal("find registration settings", err)
	}

	return token, reg, settings, nil
}
