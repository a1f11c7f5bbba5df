package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationKind distinguishes review outcomes.
type NotificationKind string

const (
	NotificationApproved NotificationKind = "registration_approved"
	NotificationRejected NotificationKind = "registration_rejected"
)

// Notification is a review-decision message addressed to a coach.
type Notification struct {
	ID             uuid.UUID        `json:"id"`
	CoachID        uuid.UUID        `json:"coach_id"`
	RegistrationID uuid.UUID        `json:"registration_id"`
	EventID        uuid.UUID        `json:"event_id"`
	Kind           NotificationKind `json:"kind"`
	Message        string           `json:"message"`
	ReadAt         *time.Time       `json:"read_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// NotificationOutboxRow is a pending delivery event for the notifier to
// publish. SeqID is assigned by the database.
type NotificationOutboxRow struct {
	SeqID          int64           `json:"seq_id"`
	NotificationID uuid.UUID       `json:"notification_id"`
	Topic          string          `json:"topic"`
	Payload        json.RawMessage `json:"payload"`
	OccurredAt     time.Time       `json:"occurred_at"`
}
