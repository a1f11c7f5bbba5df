package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rosterup/platform/internal/domain"
)

type registrationRepo struct{}

// NewRegistrationRepository returns a pgx-backed RegistrationRepository.
func NewRegistrationRepository() RegistrationRepository {
	return &registrationRepo{}
}

const registrationColumns = `
	id, event_id, coach_id, team_data, players_data, status, rejection_reason,
	submitted_at, reviewed_at, reviewer_id, last_status_change,
	last_status_read_at, version, created_at, updated_at`

func (r *registrationRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Registration, error) {
	row := db.QueryRow(ctx,
		`SELECT`+registrationColumns+` FROM registrations WHERE id = $1`, id)
	return scanRegistration(row)
}

func (r *registrationRepo) ListByEvent(ctx context.Context, db DBTX, eventID uuid.UUID, status *domain.Status) ([]domain.Registration, error) {
	query := `SELECT` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1 AND status <> 'draft'`
	args := []interface{}{eventID}
	if status != nil {
		query += ` AND status = ANY($2)`
		args = append(args, statusFilterValues(*status))
	}
	query += ` ORDER BY submitted_at DESC NULLS LAST`

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()
	return collectRegistrations(rows)
}

func (r *registrationRepo) ListByCoach(ctx context.Context, db DBTX, coachID uuid.UUID) ([]domain.Registration, error) {
	rows, err := db.Query(ctx, `SELECT`+registrationColumns+`
		FROM registrations
		WHERE coach_id = $1
		ORDER BY created_at DESC`, coachID)
	if err != nil {
		return nil, fmt.Errorf("list coach registrations: %w", err)
	}
	defer rows.Close()
	return collectRegistrations(rows)
}

func (r *registrationRepo) Create(ctx context.Context, db DBTX, reg *domain.Registration) error {
	teamJSON, playersJSON, err := marshalContent(reg.TeamData, reg.PlayersData)
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx, `
		INSERT INTO registrations
		  (id, event_id, coach_id, team_data, players_data, status, rejection_reason,
		   submitted_at, reviewed_at, reviewer_id, last_status_change, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		reg.ID, reg.EventID, reg.CoachID, teamJSON, playersJSON, string(reg.Status),
		reg.RejectionReason, reg.SubmittedAt, reg.ReviewedAt, reg.ReviewerID,
		reg.LastStatusChange, reg.Version)
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (r *registrationRepo) UpdateContentCAS(ctx context.Context, db DBTX, id uuid.UUID, teamData map[string]any, players []domain.PlayerRecord, version int64) (bool, error) {
	teamJSON, playersJSON, err := marshalContent(teamData, players)
	if err != nil {
		return false, err
	}

	tag, err := db.Exec(ctx, `
		UPDATE registrations
		SET team_data = $1, players_data = $2, version = version + 1, updated_at = now()
		WHERE id = $3 AND version = $4`,
		teamJSON, playersJSON, id, version)
	if err != nil {
		return false, fmt.Errorf("update registration content: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *registrationRepo) UpdatePlayersCAS(ctx context.Context, db DBTX, id uuid.UUID, players []domain.PlayerRecord, version int64) (bool, error) {
	playersJSON, err := json.Marshal(players)
	if err != nil {
		return false, fmt.Errorf("marshal players_data: %w", err)
	}

	tag, err := db.Exec(ctx, `
		UPDATE registrations
		SET players_data = $1, version = version + 1, updated_at = now()
		WHERE id = $2 AND version = $3`,
		playersJSON, id, version)
	if err != nil {
		return false, fmt.Errorf("update players_data: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *registrationRepo) UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, update domain.StatusUpdate) error {
	setClauses := []string{"status = $1", "rejection_reason = $2", "updated_at = now()"}
	args := []interface{}{string(update.Status), update.RejectionReason}
	argIdx := 3

	if update.SubmittedAt != nil {
		setClauses = append(setClauses, fmt.Sprintf("submitted_at = $%d", argIdx))
		args = append(args, *update.SubmittedAt)
		argIdx++
	}
	if update.ReviewedAt != nil {
		setClauses = append(setClauses, fmt.Sprintf("reviewed_at = $%d", argIdx))
		args = append(args, *update.ReviewedAt)
		argIdx++
	}
	if update.ReviewerID != nil {
		setClauses = append(setClauses, fmt.Sprintf("reviewer_id = $%d", argIdx))
		args = append(args, *update.ReviewerID)
		argIdx++
	}
	if update.LastStatusChange != nil {
		setClauses = append(setClauses, fmt.Sprintf("last_status_change = $%d", argIdx))
		args = append(args, *update.LastStatusChange)
		argIdx++
	}
	if update.ClearStatusReadAt {
		setClauses = append(setClauses, "last_status_read_at = NULL")
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE registrations SET %s WHERE id = $%d`,
		strings.Join(setClauses, ", "), argIdx)

	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update registration status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("registration", id.String())
	}
	return nil
}

func (r *registrationRepo) MarkStatusRead(ctx context.Context, db DBTX, id uuid.UUID, at time.Time) error {
	_, err := db.Exec(ctx,
		`UPDATE registrations SET last_status_read_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("mark status read: %w", err)
	}
	return nil
}

// statusFilterValues maps a canonical status to the physical column values it
// matches. Legacy rows store "pending" for the awaiting-review state, so a
// submitted filter must catch both spellings.
func statusFilterValues(status domain.Status) []string {
	if status == domain.StatusSubmitted {
		return []string{string(domain.StatusSubmitted), "pending"}
	}
	return []string{string(status)}
}

func marshalContent(teamData map[string]any, players []domain.PlayerRecord) ([]byte, []byte, error) {
	teamJSON, err := json.Marshal(teamData)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal team_data: %w", err)
	}
	playersJSON, err := json.Marshal(players)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal players_data: %w", err)
	}
	return teamJSON, playersJSON, nil
}

func collectRegistrations(rows pgx.Rows) ([]domain.Registration, error) {
	var regs []domain.Registration
	for rows.Next() {
		reg, err := scanRegistrationRow(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

func scanRegistration(row pgx.Row) (*domain.Registration, error) {
	reg, err := scanRegistrationRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return reg, err
}

func scanRegistrationRow(row pgx.Row) (*domain.Registration, error) {
	var reg domain.Registration
	var rawStatus string
	var teamJSON, playersJSON []byte

	err := row.Scan(&reg.ID, &reg.EventID, &reg.CoachID, &teamJSON, &playersJSON,
		&rawStatus, &reg.RejectionReason, &reg.SubmittedAt, &reg.ReviewedAt,
		&reg.ReviewerID, &reg.LastStatusChange, &reg.LastStatusReadAt,
		&reg.Version, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan registration: %w", err)
	}

	// Legacy rows say "pending" for the awaiting-review state.
	reg.Status, err = domain.NormalizeStatus(rawStatus)
	if err != nil {
		return nil, fmt.Errorf("scan registration: %w", err)
	}

	if len(teamJSON) > 0 {
		if err := json.Unmarshal(teamJSON, &reg.TeamData); err != nil {
			return nil, fmt.Errorf("decode team_data: %w", err)
		}
	}
	if len(playersJSON) > 0 {
		if err := json.Unmarshal(playersJSON, &reg.PlayersData); err != nil {
			return nil, fmt.Errorf("decode players_data: %w", err)
		}
	}
	return &reg, nil
}
