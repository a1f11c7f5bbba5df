package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rosterup/platform/internal/domain"
	"github.com/rosterup/platform/internal/repository"
)

// NotificationTopic is where the notifier publishes review decisions.
const NotificationTopic = "registration.notifications"

// RegistrationService owns the registration lifecycle: creation, coach
// edits, submission, admin review and withdrawal.
type RegistrationService struct {
	db            repository.DBTX
	registrations repository.RegistrationRepository
	events        repository.EventRepository
	notifications repository.NotificationRepository
	tokens        repository.ShareTokenRepository
	allowReversal bool
	logger        *slog.Logger
	now           func() time.Time
}

// NewRegistrationService creates a RegistrationService. allowReversal
// permits re-reviewing an approved registration as rejected; it is a
// deliberate policy switch, not the default.
func NewRegistrationService(
	db repository.DBTX,
	registrations repository.RegistrationRepository,
	events repository.EventRepository,
	notifications repository.NotificationRepository,
	tokens repository.ShareTokenRepository,
	allowReversal bool,
	logger *slog.Logger,
) *RegistrationService {
	return &RegistrationService{
		db:            db,
		registrations: registrations,
		events:        events,
		notifications: notifications,
		tokens:        tokens,
		allowReversal: allowReversal,
		logger:        logger,
		now:           time.Now,
	}
}

// ListByEvent returns non-draft registrations for an event, submitted_at
// descending, optionally filtered by status. The legacy "pending" filter
// value is accepted as an alias of submitted.
func (s *RegistrationService) ListByEvent(ctx context.Context, eventID uuid.UUID, statusFilter string) ([]domain.Registration, error) {
	var status *domain.Status
	if statusFilter != "" {
		st, err := domain.NormalizeStatus(statusFilter)
		if err != nil {
			return nil, domain.ErrValidation(fmt.Sprintf("unknown status filter %q", statusFilter))
		}
		status = &st
	}

	regs, err := s.registrations.ListByEvent(ctx, s.db, eventID, status)
	if err != nil {
		return nil, domain.ErrInternal("list registrations", err)
	}
	return regs, nil
}

// ListByCoach returns a coach's own registrations, all statuses.
func (s *RegistrationService) ListByCoach(ctx context.Context, coachID uuid.UUID) ([]domain.Registration, error) {
	regs, err := s.registrations.ListByCoach(ctx, s.db, coachID)
	if err != nil {
		return nil, domain.ErrInternal("list coach registrations", err)
	}
	return regs, nil
}

// AdminCreate inserts a registration on behalf of an admin. Manual adds skip
// review entirely: they land approved with the reviewer stamped.
func (s *RegistrationService) AdminCreate(ctx context.Context, eventID, adminID uuid.UUID, teamData map[string]any, players []domain.PlayerRecord) (*domain.Registration, error) {
	event, err := s.events.FindByID(ctx, s.db, eventID)
	if err != nil {
		return nil, domain.ErrInternal("find event", err)
	}
	if event == nil {
		return nil, domain.ErrNotFound("event", eventID.String())
	}

	now := s.now()
	reg := &domain.Registration{
		ID:               uuid.New(),
		EventID:          eventID,
		TeamData:         teamData,
		PlayersData:      players,
		Status:           domain.StatusApproved,
		SubmittedAt:      &now,
		ReviewedAt:       &now,
		ReviewerID:       &adminID,
		LastStatusChange: &now,
	}
	if err := s.registrations.Create(ctx, s.db, reg); err != nil {
		return nil, domain.ErrInternal("create registration", err)
	}
	return reg, nil
}

// CreateDraft opens a new draft registration for a coach.
func (s *RegistrationService) CreateDraft(ctx context.Context, eventID, coachID uuid.UUID, teamData map[string]any, players []domain.PlayerRecord) (*domain.Registration, error) {
	event, err := s.events.FindByID(ctx, s.db, eventID)
	if err != nil {
		return nil, domain.ErrInternal("find event", err)
	}
	if event == nil {
		return nil, domain.ErrNotFound("event", eventID.String())
	}

	reg := &domain.Registration{
		ID:          uuid.New(),
		EventID:     eventID,
		CoachID:     &coachID,
		TeamData:    teamData,
		PlayersData: players,
		Status:      domain.StatusDraft,
	}
	if err := s.registrations.Create(ctx, s.db, reg); err != nil {
		return nil, domain.ErrInternal("create registration", err)
	}
	return reg, nil
}

// Update rewrites a registration's team and player data for its coach. Only
// draft and rejected registrations accept edits, and only while the event's
// window is open for editing. The write is conditioned on the version the
// caller read; a concurrent edit surfaces as a conflict, never a lost update.
func (s *RegistrationService) Update(ctx context.Context, id, coachID uuid.UUID, teamData map[string]any, players []domain.PlayerRecord) (*domain.Registration, error) {
	reg, err := s.ownedRegistration(ctx, id, coachID)
	if err != nil {
		return nil, err
	}

	if !reg.Status.Editable() {
		return nil, domain.ErrNotEditable(reg.Status)
	}
	if err := s.checkWindowOpen(ctx, reg.EventID); err != nil {
		return nil, err
	}

	ok, err := s.registrations.UpdateContentCAS(ctx, s.db, id, teamData, players, reg.Version)
	if err != nil {
		return nil, domain.ErrInternal("update registration", err)
	}
	if !ok {
		return nil, domain.ErrConflict("registration was modified concurrently, reload and retry")
	}

	reg.TeamData = teamData
	reg.PlayersData = players
	reg.Version++
	return reg, nil
}

// Submit moves a draft or rejected registration into review.
func (s *RegistrationService) Submit(ctx context.Context, id, coachID uuid.UUID) (*domain.Registration, error) {
	reg, err := s.ownedRegistration(ctx, id, coachID)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(reg.Status, domain.StatusSubmitted) {
		return nil, domain.ErrValidation(fmt.Sprintf("cannot submit a registration with status %q", reg.Status))
	}
	if err := s.checkWindowOpen(ctx, reg.EventID); err != nil {
		return nil, err
	}

	now := s.now()
	update := domain.StatusUpdate{
		Status:           domain.StatusSubmitted,
		SubmittedAt:      &now,
		LastStatusChange: &now,
	}
	if err := s.registrations.UpdateStatus(ctx, s.db, id, update); err != nil {
		return nil, wrapStoreErr("submit registration", err)
	}

	reg.Status = domain.StatusSubmitted
	reg.SubmittedAt = &now
	reg.RejectionReason = nil
	reg.LastStatusChange = &now
	return reg, nil
}

// Cancel withdraws a registration. Approved registrations stay approved;
// everything else live can be withdrawn.
func (s *RegistrationService) Cancel(ctx context.Context, id, coachID uuid.UUID) (*domain.Registration, error) {
	reg, err := s.ownedRegistration(ctx, id, coachID)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(reg.Status, domain.StatusCancelled) {
		return nil, domain.ErrValidation(fmt.Sprintf("cannot cancel a registration with status %q", reg.Status))
	}

	now := s.now()
	update := domain.StatusUpdate{
		Status:           domain.StatusCancelled,
		LastStatusChange: &now,
	}
	if err := s.registrations.UpdateStatus(ctx, s.db, id, update); err != nil {
		return nil, wrapStoreErr("cancel registration", err)
	}

	reg.Status = domain.StatusCancelled
	reg.LastStatusChange = &now
	return reg, nil
}

// Review applies an admin verdict to a submitted registration and emits a
// notification to its coach. The notification is best-effort: a failed
// insert is logged and swallowed, the review stands.
func (s *RegistrationService) Review(ctx context.Context, id uuid.UUID, decision domain.ReviewDecision) (*domain.Registration, error) {
	if err := decision.Validate(); err != nil {
		return nil, err
	}

	reg, err := s.registrations.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, domain.ErrInternal("find registration", err)
	}
	if reg == nil {
		return nil, domain.ErrNotFound("registration", id.String())
	}

	if !s.reviewAllowed(reg.Status, decision.Status) {
		return nil, domain.ErrValidation(
			fmt.Sprintf("cannot review a registration with status %q", reg.Status))
	}

	now := s.now()
	update := domain.StatusUpdate{
		Status:            decision.Status,
		ReviewedAt:        &now,
		ReviewerID:        &decision.ReviewerID,
		LastStatusChange:  &now,
		ClearStatusReadAt: true,
	}
	if decision.Status == domain.StatusRejected {
		update.RejectionReason = &decision.RejectionReason
	}
	if err := s.registrations.UpdateStatus(ctx, s.db, id, update); err != nil {
		return nil, wrapStoreErr("review registration", err)
	}

	reg.Status = decision.Status
	reg.ReviewedAt = &now
	reg.ReviewerID = &decision.ReviewerID
	reg.LastStatusChange = &now
	reg.LastStatusReadAt = nil
	reg.RejectionReason = update.RejectionReason

	s.emitReviewNotification(ctx, reg, decision)
	return reg, nil
}

// reviewAllowed guards the lifecycle edge. Reviews target submitted
// registrations; the one configurable exception is reversing an approval
// into a rejection.
func (s *RegistrationService) reviewAllowed(from, to domain.Status) bool {
	if domain.CanTransition(from, to) {
		return true
	}
	return s.allowReversal && from == domain.StatusApproved && to == domain.StatusRejected
}

func (s *RegistrationService) emitReviewNotification(ctx context.Context, reg *domain.Registration, decision domain.ReviewDecision) {
	if reg.CoachID == nil {
		s.logger.Warn("skipping review notification, registration has no coach",
			"registration_id", reg.ID)
		return
	}

	kind := domain.NotificationApproved
	message := "Your team registration has been approved."
	if decision.Status == domain.StatusRejected {
		kind = domain.NotificationRejected
		message = fmt.Sprintf("Your team registration was rejected: %s", decision.RejectionReason)
	}

	n := &domain.Notification{
		ID:             uuid.New(),
		CoachID:        *reg.CoachID,
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		Kind:           kind,
		Message:        message,
	}
	if err := s.notifications.Insert(ctx, s.db, n); err != nil {
		s.logger.Warn("review notification insert failed",
			"registration_id", reg.ID, "coach_id", *reg.CoachID, "error", err)
		return
	}

	payload, err := json.Marshal(n)
	if err != nil {
		s.logger.Warn("marshal notification payload failed", "notification_id", n.ID, "error", err)
		return
	}
	outbox := &domain.NotificationOutboxRow{
		NotificationID: n.ID,
		Topic:          NotificationTopic,
		Payload:        payload,
		OccurredAt:     s.now(),
	}
	if err := s.notifications.InsertOutbox(ctx, s.db, outbox); err != nil {
		s.logger.Warn("notification outbox insert failed", "notification_id", n.ID, "error", err)
	}
}

// MintShareLink creates a share token for one slot of a coach's registration.
func (s *RegistrationService) MintShareLink(ctx context.Context, id, coachID uuid.UUID, playerID *string, playerIndex *int, ttl time.Duration) (*domain.PlayerShareToken, error) {
	reg, err := s.ownedRegistration(ctx, id, coachID)
	if err != nil {
		return nil, err
	}
	if playerID == nil && playerIndex == nil {
		return nil, domain.ErrValidation("share link needs a player_id or player_index")
	}

	token := &domain.PlayerShareToken{
		Token:          uuid.New().String(),
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		PlayerIndex:    playerIndex,
		PlayerID:       playerID,
		ExpiresAt:      s.now().Add(ttl),
		IsActive:       true,
	}
	if err := s.tokens.Create(ctx, s.db, token); err != nil {
		return nil, domain.ErrInternal("create share token", err)
	}
	return token, nil
}

// ListUnreadNotifications returns a coach's unread notifications.
func (s *RegistrationService) ListUnreadNotifications(ctx context.Context, coachID uuid.UUID) ([]domain.Notification, error) {
	list, err := s.notifications.ListUnreadByCoach(ctx, s.db, coachID)
	if err != nil {
		return nil, domain.ErrInternal("list notifications", err)
	}
	return list, nil
}

// MarkNotificationRead marks one of the coach's notifications read and stamps
// the owning registration's last_status_read_at, clearing the unread banner.
// The registration comes from the notification row, never from the caller, so
// a coach cannot clear anyone else's banner.
func (s *RegistrationService) MarkNotificationRead(ctx context.Context, coachID, notificationID uuid.UUID) error {
	now := s.now()
	registrationID, err := s.notifications.MarkRead(ctx, s.db, notificationID, coachID, now)
	if err != nil {
		return wrapStoreErr("mark notification read", err)
	}
	if err := s.registrations.MarkStatusRead(ctx, s.db, registrationID, now); err != nil {
		return domain.ErrInternal("mark status read", err)
	}
	return nil
}

// ownedRegistration loads a registration and checks the coach owns it. An
// existing registration owned by someone else reads as not found; ownership
// is not probeable.
func (s *RegistrationService) ownedRegistration(ctx context.Context, id, coachID uuid.UUID) (*domain.Registration, error) {
	reg, err := s.registrations.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, domain.ErrInternal("find registration", err)
	}
	if reg == nil || reg.CoachID == nil || *reg.CoachID != coachID {
		return nil, domain.ErrNotFound("registration", id.String())
	}
	return reg, nil
}

// checkWindowOpen refuses edits past the event's effective closing instant
// (reviewEndDate when configured, else registrationEndDate). Events with no
// window configured are never closed.
func (s *RegistrationService) checkWindowOpen(ctx context.Context, eventID uuid.UUID) error {
	settings, err := s.events.FindSettings(ctx, s.db, eventID)
	if err != nil {
		return domain.ErrInternal("find registration settings", err)
	}
	if settings == nil {
		return nil
	}

	window := domain.ParseTeamRequirements(settings.TeamRequirements).Window()
	if window.ClosedAt(s.now()) {
		return domain.ErrRegistrationClosed()
	}
	return nil
}

// wrapStoreErr keeps domain errors (not found etc.) intact and wraps the rest
// as internal store failures.
func wrapStoreErr(msg string, err error) error {
	if _, ok := err.(*domain.AppError); ok {
		return err
	}
	return domain.ErrInternal(msg, err)
}
