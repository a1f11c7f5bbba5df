package domain

import (
	"time"

	"github.com/google/uuid"
)

// PlayerShareToken grants one player write access to one slot of a team's
// player list without an account.
type PlayerShareToken struct {
	Token          string     `json:"token"`
	RegistrationID uuid.UUID  `json:"registration_id"`
	EventID        uuid.UUID  `json:"event_id"`
	PlayerIndex    *int       `json:"player_index,omitempty"`
	PlayerID       *string    `json:"player_id,omitempty"`
	ExpiresAt      time.Time  `json:"expires_at"`
	IsActive       bool       `json:"is_active"`
	UsedAt         *time.Time `json:"used_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ExpiredAt reports whether the token has expired at the given instant.
// Expiry dominates is_active: an expired token is expired even while active.
func (t *PlayerShareToken) ExpiredAt(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// CheckUsable validates the token for use at the given instant. A missing or
// inactive token is nil before this is ever called; here only expiry remains.
func (t *PlayerShareToken) CheckUsable(now time.Time) error {
	if t.ExpiredAt(now) {
		return ErrTokenExpired()
	}
	return nil
}
