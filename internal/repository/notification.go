package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rosterup/platform/internal/domain"
)

type notificationRepo struct{}

// NewNotificationRepository returns a pgx-backed NotificationRepository.
func NewNotificationRepository() NotificationRepository {
	return &notificationRepo{}
}

func (r *notificationRepo) Insert(ctx context.Context, db DBTX, n *domain.Notification) error {
	_, err := db.Exec(ctx, `
		INSERT INTO notifications (id, coach_id, registration_id, event_id, kind, message)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.CoachID, n.RegistrationID, n.EventID, string(n.Kind), n.Message)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *notificationRepo) ListUnreadByCoach(ctx context.Context, db DBTX, coachID uuid.UUID) ([]domain.Notification, error) {
	rows, err := db.Query(ctx, `
		SELECT id, coach_id, registration_id, event_id, kind, message, read_at, created_at
		FROM notifications
		WHERE coach_id = $1 AND read_at IS NULL
		ORDER BY created_at DESC`, coachID)
	if err != nil {
		return nil, fmt.Errorf("list unread notifications: %w", err)
	}
	defer rows.Close()

	var list []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var kind string
		if err := rows.Scan(&n.ID, &n.CoachID, &n.RegistrationID, &n.EventID,
			&kind, &n.Message, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Kind = domain.NotificationKind(kind)
		list = append(list, n)
	}
	return list, rows.Err()
}

// MarkRead conditions the write on coach_id so a coach can only touch their
// own notifications, and returns registration_id from the row itself rather
// than trusting the caller to name it.
func (r *notificationRepo) MarkRead(ctx context.Context, db DBTX, id, coachID uuid.UUID, at time.Time) (uuid.UUID, error) {
	var registrationID uuid.UUID
	err := db.QueryRow(ctx, `
		UPDATE notifications SET read_at = $1
		WHERE id = $2 AND coach_id = $3 AND read_at IS NULL
		RETURNING registration_id`, at, id, coachID).Scan(&registrationID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, domain.ErrNotFound("notification", id.String())
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("mark notification read: %w", err)
	}
	return registrationID, nil
}

func (r *notificationRepo) InsertOutbox(ctx context.Context, db DBTX, row *domain.NotificationOutboxRow) error {
	_, err := db.Exec(ctx, `
		INSERT INTO notification_outbox (notification_id, topic, payload, occurred_at)
		VALUES ($1, $2, $3, $4)`,
		row.NotificationID, row.Topic, row.Payload, row.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert outbox row: %w", err)
	}
	return nil
}

func (r *notificationRepo) FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.NotificationOutboxRow, error) {
	rows, err := db.Query(ctx, `
		SELECT seq_id, notification_id, topic, payload, occurred_at
		FROM notification_outbox
		ORDER BY seq_id ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch outbox rows: %w", err)
	}
	defer rows.Close()

	var out []domain.NotificationOutboxRow
	for rows.Next() {
		var row domain.NotificationOutboxRow
		if err := rows.Scan(&row.SeqID, &row.NotificationID, &row.Topic,
			&row.Payload, &row.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *notificationRepo) MarkPublished(ctx context.Context, db DBTX, seqIDs []int64) error {
	if len(seqIDs) == 0 {
		return nil
	}
	_, err := db.Exec(ctx, `DELETE FROM notification_outbox WHERE seq_id = ANY($1)`, seqIDs)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}
