package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status tracks the registration lifecycle.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// NormalizeStatus maps a raw status string to its canonical value. Legacy
// records use "pending" for the awaiting-review state; it is an alias of
// "submitted", not a sixth state.
func NormalizeStatus(raw string) (Status, error) {
	switch raw {
	case "pending":
		return StatusSubmitted, nil
	case string(StatusDraft), string(StatusSubmitted), string(StatusApproved),
		string(StatusRejected), string(StatusCancelled):
		return Status(raw), nil
	}
	return "", fmt.Errorf("unknown registration status %q", raw)
}

// Editable reports whether a registration in this status accepts edits,
// through the coach portal or a player share link.
func (s Status) Editable() bool {
	return s == StatusDraft || s == StatusRejected
}

// CanTransition reports whether from -> to is a legal lifecycle edge.
// Cancellation is coach withdrawal and is allowed from any live state.
func CanTransition(from, to Status) bool {
	switch to {
	case StatusSubmitted:
		return from == StatusDraft || from == StatusRejected
	case StatusApproved, StatusRejected:
		return from == StatusSubmitted
	case StatusCancelled:
		return from == StatusDraft || from == StatusSubmitted || from == StatusRejected
	}
	return false
}

// PlayerRecord is one entry of a registration's player list. Shape is
// event-defined; only the "id" key is structural.
type PlayerRecord map[string]any

// ID returns the record's stable identity, or "" if absent.
func (p PlayerRecord) ID() string {
	id, _ := p["id"].(string)
	return id
}

// Registration represents a registrations row.
type Registration struct {
	ID               uuid.UUID      `json:"id"`
	EventID          uuid.UUID      `json:"event_id"`
	CoachID          *uuid.UUID     `json:"coach_id,omitempty"`
	TeamData         map[string]any `json:"team_data"`
	PlayersData      []PlayerRecord `json:"players_data"`
	Status           Status         `json:"status"`
	RejectionReason  *string        `json:"rejection_reason,omitempty"`
	SubmittedAt      *time.Time     `json:"submitted_at,omitempty"`
	ReviewedAt       *time.Time     `json:"reviewed_at,omitempty"`
	ReviewerID       *uuid.UUID     `json:"reviewer_id,omitempty"`
	LastStatusChange *time.Time     `json:"last_status_change,omitempty"`
	LastStatusReadAt *time.Time     `json:"last_status_read_at,omitempty"`
	Version          int64          `json:"version"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// StatusUpdate carries the field stamps a lifecycle transition writes.
// Status and RejectionReason are always written (a nil reason clears the
// column, so approvals wipe any stale reason); the remaining stamps are
// written only when set.
type StatusUpdate struct {
	Status            Status
	RejectionReason   *string
	SubmittedAt       *time.Time
	ReviewedAt        *time.Time
	ReviewerID        *uuid.UUID
	LastStatusChange  *time.Time
	ClearStatusReadAt bool
}

// ReviewDecision is an admin's verdict on a submitted registration.
type ReviewDecision struct {
	Status          Status
	RejectionReason string
	ReviewerID      uuid.UUID
}

// Validate rejects anything but the two review verdicts, and requires a
// reason for rejections, before any write happens.
func (d ReviewDecision) Validate() error {
	if d.Status != StatusApproved && d.Status != StatusRejected {
		return ErrValidation("review status must be approved or rejected")
	}
	if d.Status == StatusRejected && d.RejectionReason == "" {
		return ErrValidation("rejection requires a rejection_reason")
	}
	return nil
}
