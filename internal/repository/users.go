package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rosterup/platform/internal/domain"
)

type userRepo struct{}

// NewUserRepository returns a pgx-backed UserRepository.
func NewUserRepository() UserRepository {
	return &userRepo{}
}

func (r *userRepo) FindAdminByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.AdminUser, error) {
	row := db.QueryRow(ctx,
		`SELECT id, phone, name, created_at FROM admin_users WHERE id = $1`, id)

	a := &domain.AdminUser{}
	err := row.Scan(&a.ID, &a.Phone, &a.Name, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan admin user: %w", err)
	}
	return a, nil
}

func (r *userRepo) FindCoachBySubject(ctx context.Context, db DBTX, subject string) (*domain.Coach, error) {
	row := db.QueryRow(ctx,
		`SELECT id, subject, name, email, created_at FROM coaches WHERE subject = $1`, subject)
	return scanCoach(row)
}

func (r *userRepo) CreateCoach(ctx context.Context, db DBTX, coach *domain.Coach) error {
	_, err := db.Exec(ctx,
		`INSERT INTO coaches (id, subject, name, email) VALUES ($1, $2, $3, $4)`,
		coach.ID, coach.Subject, coach.Name, coach.Email)
	if err != nil {
		return fmt.Errorf("insert coach: %w", err)
	}
	return nil
}

func (r *userRepo) FindCoachSession(ctx context.Context, db DBTX, token string) (*domain.CoachSession, error) {
	row := db.QueryRow(ctx,
		`SELECT token, subject, created_at, expires_at FROM coach_sessions WHERE token = $1`, token)

	s := &domain.CoachSession{}
	err := row.Scan(&s.Token, &s.Subject, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan coach session: %w", err)
	}
	return s, nil
}

func (r *userRepo) CreateCoachSession(ctx context.Context, db DBTX, session *domain.CoachSession) error {
	_, err := db.Exec(ctx,
		`INSERT INTO coach_sessions (token, subject, expires_at) VALUES ($1, $2, $3)`,
		session.Token, session.Subject, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert coach session: %w", err)
	}
	return nil
}

func scanCoach(row pgx.Row) (*domain.Coach, error) {
	c := &domain.Coach{}
	err := row.Scan(&c.ID, &c.Subject, &c.Name, &c.Email, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan coach: %w", err)
	}
	return c, nil
}
