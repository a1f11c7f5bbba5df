package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rosterup/platform/internal/domain"
)

type eventRepo struct{}

// NewEventRepository returns a pgx-backed EventRepository.
func NewEventRepository() EventRepository {
	return &eventRepo{}
}

const eventColumns = `
	id, name, sport, location, description, starts_at, ends_at,
	created_by, created_at, updated_at`

func (r *eventRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Event, error) {
	row := db.QueryRow(ctx, `SELECT`+eventColumns+` FROM events WHERE id = $1`, id)
	e, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

func (r *eventRepo) List(ctx context.Context, db DBTX) ([]domain.Event, error) {
	rows, err := db.Query(ctx, `SELECT`+eventColumns+` FROM events ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *eventRepo) Create(ctx context.Context, db DBTX, event *domain.Event) error {
	_, err := db.Exec(ctx, `
		INSERT INTO events (id, name, sport, location, description, starts_at, ends_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, event.Name, event.Sport, event.Location, event.Description,
		event.StartsAt, event.EndsAt, event.CreatedBy)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *eventRepo) FindSettings(ctx context.Context, db DBTX, eventID uuid.UUID) (*domain.RegistrationSettings, error) {
	row := db.QueryRow(ctx, `
		SELECT event_id, team_requirements, player_requirements, updated_at
		FROM registration_settings WHERE event_id = $1`, eventID)

	s := &domain.RegistrationSettings{}
	err := row.Scan(&s.EventID, &s.TeamRequirements, &s.PlayerRequirements, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan registration settings: %w", err)
	}
	return s, nil
}

func (r *eventRepo) UpsertSettings(ctx context.Context, db DBTX, settings *domain.RegistrationSettings) error {
	_, err := db.Exec(ctx, `
		INSERT INTO registration_settings (event_id, team_requirements, player_requirements)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id) DO UPDATE
		SET team_requirements = EXCLUDED.team_requirements,
		    player_requirements = EXCLUDED.player_requirements,
		    updated_at = now()`,
		settings.EventID, settings.TeamRequirements, settings.PlayerRequirements)
	if err != nil {
		return fmt.Errorf("upsert registration settings: %w", err)
	}
	return nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(&e.ID, &e.Name, &e.Sport, &e.Location, &e.Description,
		&e.StartsAt, &e.EndsAt, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return &e, nil
}
