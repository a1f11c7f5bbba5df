package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rosterup/platform/internal/domain"
)

type shareTokenRepo struct{}

// NewShareTokenRepository returns a pgx-backed ShareTokenRepository.
func NewShareTokenRepository() ShareTokenRepository {
	return &shareTokenRepo{}
}

// FindByToken filters on is_active in the query: a deactivated token is
// indistinguishable from a missing one, which is what the 404 contract wants.
func (r *shareTokenRepo) FindByToken(ctx context.Context, db DBTX, token string) (*domain.PlayerShareToken, error) {
	row := db.QueryRow(ctx, `
		SELECT token, registration_id, event_id, player_index, player_id,
		       expires_at, is_active, used_at, created_at
		FROM player_share_tokens
		WHERE token = $1 AND is_active`, token)

	t := &domain.PlayerShareToken{}
	err := row.Scan(&t.Token, &t.RegistrationID, &t.EventID, &t.PlayerIndex,
		&t.PlayerID, &t.ExpiresAt, &t.IsActive, &t.UsedAt, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan share token: %w", err)
	}
	return t, nil
}

func (r *shareTokenRepo) Create(ctx context.Context, db DBTX, token *domain.PlayerShareToken) error {
	_, err := db.Exec(ctx, `
		INSERT INTO player_share_tokens
		  (token, registration_id, event_id, player_index, player_id, expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		token.Token, token.RegistrationID, token.EventID, token.PlayerIndex,
		token.PlayerID, token.ExpiresAt, token.IsActive)
	if err != nil {
		return fmt.Errorf("insert share token: %w", err)
	}
	return nil
}

func (r *shareTokenRepo) MarkUsed(ctx context.Context, db DBTX, token string, at time.Time) error {
	_, err := db.Exec(ctx,
		`UPDATE player_share_tokens SET used_at = $1 WHERE token = $2`, at, token)
	if err != nil {
		return fmt.Errorf("mark token used: %w", err)
	}
	return nil
}
