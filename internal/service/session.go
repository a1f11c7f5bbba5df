package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rosterup/platform/internal/domain"
	"github.com/rosterup/platform/internal/repository"
)

// SessionService backs the session guard: admin record cross-checks, coach
// session resolution and coach session issuance.
type SessionService struct {
	db       repository.DBTX
	users    repository.UserRepository
	coachTTL time.Duration
	now      func() time.Time
}

// NewSessionService creates a SessionService. coachTTL bounds the lifetime of
// issued coach sessions.
func NewSessionService(db repository.DBTX, users repository.UserRepository, coachTTL time.Duration) *SessionService {
	return &SessionService{db: db, users: users, coachTTL: coachTTL, now: time.Now}
}

// FindAdminByID implements auth.AdminDirectory.
func (s *SessionService) FindAdminByID(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error) {
	return s.users.FindAdminByID(ctx, s.db, id)
}

// IssueCoachSession mints an opaque session for a verified identity subject.
// The caller is the identity-provider callback, which has already verified
// who the subject is; nothing here re-checks that.
func (s *SessionService) IssueCoachSession(ctx context.Context, subject string) (*domain.CoachSession, error) {
	if subject == "" {
		return nil, domain.ErrValidation("session subject is required")
	}

	now := s.now()
	session := &domain.CoachSession{
		Token:     uuid.New().String(),
		Subject:   subject,
		CreatedAt: now,
		ExpiresAt: now.Add(s.coachTTL),
	}
	if err := s.users.CreateCoachSession(ctx, s.db, session); err != nil {
		return nil, domain.ErrInternal("create coach session", err)
	}
	return session, nil
}

// ResolveCoachSession implements auth.CoachResolver. A valid session whose
// subject has no coach profile yet provisions one on the spot.
func (s *SessionService) ResolveCoachSession(ctx context.Context, token string) (*domain.Coach, error) {
	session, err := s.users.FindCoachSession(ctx, s.db, token)
	if err != nil {
		return nil, err
	}
	if session == nil || !session.Valid(s.now()) {
		return nil, nil
	}

	coach, err := s.users.FindCoachBySubject(ctx, s.db, session.Subject)
	if err != nil {
		return nil, err
	}
	if coach != nil {
		return coach, nil
	}

	coach = &domain.Coach{
		ID:      uuid.New(),
		Subject: session.Subject,
	}
	if err := s.users.CreateCoach(ctx, s.db, coach); err != nil {
		return nil, err
	}
	return coach, nil
}
