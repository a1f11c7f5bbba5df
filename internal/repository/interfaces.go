package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rosterup/platform/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// RegistrationRepository provides access to registrations.
type RegistrationRepository interface {
	// FindByID returns a registration by ID, or nil when absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Registration, error)

	// ListByEvent returns non-draft registrations for an event ordered by
	// submitted_at descending, optionally filtered by exact status.
	ListByEvent(ctx context.Context, db DBTX, eventID uuid.UUID, status *domain.Status) ([]domain.Registration, error)

	// ListByCoach returns a coach's registrations, newest first, all statuses.
	ListByCoach(ctx context.Context, db DBTX, coachID uuid.UUID) ([]domain.Registration, error)

	// Create inserts a new registration.
	Create(ctx context.Context, db DBTX, reg *domain.Registration) error

	// UpdateContentCAS writes team_data and players_data conditioned on the
	// version the caller read. Returns false when the version moved on.
	UpdateContentCAS(ctx context.Context, db DBTX, id uuid.UUID, teamData map[string]any, players []domain.PlayerRecord, version int64) (bool, error)

	// UpdatePlayersCAS writes players_data alone conditioned on version.
	UpdatePlayersCAS(ctx context.Context, db DBTX, id uuid.UUID, players []domain.PlayerRecord, version int64) (bool, error)

	// UpdateStatus applies a lifecycle transition's field stamps.
	UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, update domain.StatusUpdate) error

	// MarkStatusRead stamps last_status_read_at for the unread banner.
	MarkStatusRead(ctx context.Context, db DBTX, id uuid.UUID, at time.Time) error
}

// ShareTokenRepository provides access to player_share_tokens.
type ShareTokenRepository interface {
	// FindByToken returns a token row, or nil when missing or inactive.
	FindByToken(ctx context.Context, db DBTX, token string) (*domain.PlayerShareToken, error)

	// Create inserts a new share token.
	Create(ctx context.Context, db DBTX, token *domain.PlayerShareToken) error

	// MarkUsed stamps used_at. Advisory only; never gates reuse.
	MarkUsed(ctx context.Context, db DBTX, token string, at time.Time) error
}

// EventRepository provides access to events and registration_settings.
type EventRepository interface {
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Event, error)
	List(ctx context.Context, db DBTX) ([]domain.Event, error)
	Create(ctx context.Context, db DBTX, event *domain.Event) error

	// FindSettings returns an event's settings, or nil when none configured.
	FindSettings(ctx context.Context, db DBTX, eventID uuid.UUID) (*domain.RegistrationSettings, error)

	// UpsertSettings inserts or replaces an event's settings.
	UpsertSettings(ctx context.Context, db DBTX, settings *domain.RegistrationSettings) error
}

// NotificationRepository provides access to notifications and their outbox.
type NotificationRepository interface {
	Insert(ctx context.Context, db DBTX, n *domain.Notification) error
	ListUnreadByCoach(ctx context.Context, db DBTX, coachID uuid.UUID) ([]domain.Notification, error)

	// MarkRead marks one of coachID's unread notifications read and returns
	// the registration it belongs to. Someone else's notification reads as
	// not found.
	MarkRead(ctx context.Context, db DBTX, id, coachID uuid.UUID, at time.Time) (uuid.UUID, error)

	// InsertOutbox queues a delivery event for the notifier.
	InsertOutbox(ctx context.Context, db DBTX, row *domain.NotificationOutboxRow) error

	// FetchUnpublished returns queued outbox rows oldest-first.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.NotificationOutboxRow, error)

	// MarkPublished removes delivered outbox rows.
	MarkPublished(ctx context.Context, db DBTX, seqIDs []int64) error
}

// UserRepository provides access to admin_users, coaches and coach_sessions.
type UserRepository interface {
	FindAdminByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.AdminUser, error)
	FindCoachBySubject(ctx context.Context, db DBTX, subject string) (*domain.Coach, error)
	CreateCoach(ctx context.Context, db DBTX, coach *domain.Coach) error
	FindCoachSession(ctx context.Context, db DBTX, token string) (*domain.CoachSession, error)
	CreateCoachSession(ctx context.Context, db DBTX, session *domain.CoachSession) error
}
