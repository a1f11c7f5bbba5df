package domain

import (
	"time"

	"github.com/google/uuid"
)

// AdminUser represents an admin_users row. A validly signed admin token is
// only honored while this row exists; deleting the row revokes the session.
type AdminUser struct {
	ID        uuid.UUID `json:"id"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Coach represents a coaches row, keyed by the auth provider's subject id.
// Profiles are auto-provisioned the first time a valid session is seen.
type Coach struct {
	ID        uuid.UUID `json:"id"`
	Subject   string    `json:"subject"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CoachSession is an opaque cookie-backed session issued by the identity
// provider integration.
type CoachSession struct {
	Token     string    `json:"token"`
	Subject   string    `json:"subject"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the session is live at the given instant.
func (s *CoachSession) Valid(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}
