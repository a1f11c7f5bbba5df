package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rosterup/platform/internal/domain"
	"github.com/rosterup/platform/internal/repository"
)

// In-memory repository fakes. The db argument is ignored; services under test
// are constructed with a nil pool.

type fakeRegistrationRepo struct {
	regs map[uuid.UUID]*domain.Registration

	findErr   error
	updateErr error
	// casDenied forces the conditional writes to report a lost race.
	casDenied bool
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{regs: map[uuid.UUID]*domain.Registration{}}
}

func (f *fakeRegistrationRepo) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Registration, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	reg, ok := f.regs[id]
	if !ok {
		return nil, nil
	}
	cp := *reg
	return &cp, nil
}

func (f *fakeRegistrationRepo) ListByEvent(_ context.Context, _ repository.DBTX, eventID uuid.UUID, status *domain.Status) ([]domain.Registration, error) {
	var out []domain.Registration
	for _, reg := range f.regs {
		if reg.EventID != eventID || reg.Status == domain.StatusDraft {
			continue
		}
		if status != nil && reg.Status != *status {
			continue
		}
		out = append(out, *reg)
	}
	return out, nil
}

func (f *fakeRegistrationRepo) ListByCoach(_ context.Context, _ repository.DBTX, coachID uuid.UUID) ([]domain.Registration, error) {
	var out []domain.Registration
	for _, reg := range f.regs {
		if reg.CoachID != nil && *reg.CoachID == coachID {
			out = append(out, *reg)
		}
	}
	return out, nil
}

func (f *fakeRegistrationRepo) Create(_ context.Context, _ repository.DBTX, reg *domain.Registration) error {
	cp := *reg
	f.regs[reg.ID] = &cp
	return nil
}

func (f *fakeRegistrationRepo) UpdateContentCAS(_ context.Context, _ repository.DBTX, id uuid.UUID, teamData map[string]any, players []domain.PlayerRecord, version int64) (bool, error) {
	if f.updateErr != nil {
		return false, f.updateErr
	}
	reg, ok := f.regs[id]
	if !ok || f.casDenied || reg.Version != version {
		return false, nil
	}
	reg.TeamData = teamData
	reg.PlayersData = players
	reg.Version++
	return true, nil
}

func (f *fakeRegistrationRepo) UpdatePlayersCAS(_ context.Context, _ repository.DBTX, id uuid.UUID, players []domain.PlayerRecord, version int64) (bool, error) {
	if f.updateErr != nil {
		return false, f.updateErr
	}
	reg, ok := f.regs[id]
	if !ok || f.casDenied || reg.Version != version {
		return false, nil
	}
	reg.PlayersData = players
	reg.Version++
	return true, nil
}

func (f *fakeRegistrationRepo) UpdateStatus(_ context.Context, _ repository.DBTX, id uuid.UUID, update domain.StatusUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	reg, ok := f.regs[id]
	if !ok {
		return domain.ErrNotFound("registration", id.String())
	}
	reg.Status = update.Status
	reg.RejectionReason = update.RejectionReason
	if update.SubmittedAt != nil {
		reg.SubmittedAt = update.SubmittedAt
	}
	if update.ReviewedAt != nil {
		reg.ReviewedAt = update.ReviewedAt
	}
	if update.ReviewerID != nil {
		reg.ReviewerID = update.ReviewerID
	}
	if update.LastStatusChange != nil {
		reg.LastStatusChange = update.LastStatusChange
	}
	if update.ClearStatusReadAt {
		reg.LastStatusReadAt = nil
	}
	return nil
}

func (f *fakeRegistrationRepo) MarkStatusRead(_ context.Context, _ repository.DBTX, id uuid.UUID, at time.Time) error {
	reg, ok := f.regs[id]
	if !ok {
		return domain.ErrNotFound("registration", id.String())
	}
	reg.LastStatusReadAt = &at
	return nil
}

type fakeShareTokenRepo struct {
	tokens map[string]*domain.PlayerShareToken

	markUsedErr error
}

func newFakeShareTokenRepo() *fakeShareTokenRepo {
	return &fakeShareTokenRepo{tokens: map[string]*domain.PlayerShareToken{}}
}

func (f *fakeShareTokenRepo) FindByToken(_ context.Context, _ repository.DBTX, token string) (*domain.PlayerShareToken, error) {
	t, ok := f.tokens[token]
	if !ok || !t.IsActive {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeShareTokenRepo) Create(_ context.Context, _ repository.DBTX, token *domain.PlayerShareToken) error {
	cp := *token
	f.tokens[token.Token] = &cp
	return nil
}

func (f *fakeShareTokenRepo) MarkUsed(_ context.Context, _ repository.DBTX, token string, at time.Time) error {
	if f.markUsedErr != nil {
		return f.markUsedErr
	}
	if t, ok := f.tokens[token]; ok {
		t.UsedAt = &at
	}
	return nil
}

type fakeUserRepo struct {
	admins   map[uuid.UUID]*domain.AdminUser
	coaches  map[uuid.UUID]*domain.Coach
	sessions map[string]*domain.CoachSession
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		admins:   map[uuid.UUID]*domain.AdminUser{},
		coaches:  map[uuid.UUID]*domain.Coach{},
		sessions: map[string]*domain.CoachSession{},
	}
}

func (f *fakeUserRepo) FindAdminByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.AdminUser, error) {
	admin, ok := f.admins[id]
	if !ok {
		return nil, nil
	}
	cp := *admin
	return &cp, nil
}

func (f *fakeUserRepo) FindCoachBySubject(_ context.Context, _ repository.DBTX, subject string) (*domain.Coach, error) {
	for _, coach := range f.coaches {
		if coach.Subject == subject {
			cp := *coach
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) CreateCoach(_ context.Context, _ repository.DBTX, coach *domain.Coach) error {
	cp := *coach
	f.coaches[coach.ID] = &cp
	return nil
}

func (f *fakeUserRepo) FindCoachSession(_ context.Context, _ repository.DBTX, token string) (*domain.CoachSession, error) {
	session, ok := f.sessions[token]
	if !ok {
		return nil, nil
	}
	cp := *session
	return &cp, nil
}

func (f *fakeUserRepo) CreateCoachSession(_ context.Context, _ repository.DBTX, session *domain.CoachSession) error {
	cp := *session
	f.sessions[session.Token] = &cp
	return nil
}

type fakeEventRepo struct {
	events   map[uuid.UUID]*domain.Event
	settings map[uuid.UUID]*domain.RegistrationSettings
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		events:   map[uuid.UUID]*domain.Event{},
		settings: map[uuid.UUID]*domain.RegistrationSettings{},
	}
}

func (f *fakeEventRepo) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Event, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, nil
	}
	cp := *event
	return &cp, nil
}

func (f *fakeEventRepo) List(_ context.Context, _ repository.DBTX) ([]domain.Event, error) {
	var out []domain.Event
	for _, e := range f.events {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeEventRepo) Create(_ context.Context, _ repository.DBTX, event *domain.Event) error {
	cp := *event
	f.events[event.ID] = &cp
	return nil
}

func (f *fakeEventRepo) FindSettings(_ context.Context, _ repository.DBTX, eventID uuid.UUID) (*domain.RegistrationSettings, error) {
	s, ok := f.settings[eventID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeEventRepo) UpsertSettings(_ context.Context, _ repository.DBTX, settings *domain.RegistrationSettings) error {
	cp := *settings
	f.settings[settings.EventID] = &cp
	return nil
}

type fakeNotificationRepo struct {
	notifications []domain.Notification
	outbox        []domain.NotificationOutboxRow

	insertErr       error
	insertOutboxErr error
}

func (f *fakeNotificationRepo) Insert(_ context.Context, _ repository.DBTX, n *domain.Notification) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeNotificationRepo) ListUnreadByCoach(_ context.Context, _ repository.DBTX, coachID uuid.UUID) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range f.notifications {
		if n.CoachID == coachID && n.ReadAt == nil {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, _ repository.DBTX, id, coachID uuid.UUID, at time.Time) (uuid.UUID, error) {
	for i := range f.notifications {
		n := &f.notifications[i]
		if n.ID == id && n.CoachID == coachID && n.ReadAt == nil {
			n.ReadAt = &at
			return n.RegistrationID, nil
		}
	}
	return uuid.Nil, domain.ErrNotFound("notification", id.String())
}

func (f *fakeNotificationRepo) InsertOutbox(_ context.Context, _ repository.DBTX, row *domain.NotificationOutboxRow) error {
	if f.insertOutboxErr != nil {
		return f.insertOutboxErr
	}
	row.SeqID = int64(len(f.outbox) + 1)
	f.outbox = append(f.outbox, *row)
	return nil
}

func (f *fakeNotificationRepo) FetchUnpublished(_ context.Context, _ repository.DBTX, limit int) ([]domain.NotificationOutboxRow, error) {
	if limit > len(f.outbox) {
		limit = len(f.outbox)
	}
	return append([]domain.NotificationOutboxRow(nil), f.outbox[:limit]...), nil
}

func (f *fakeNotificationRepo) MarkPublished(_ context.Context, _ repository.DBTX, seqIDs []int64) error {
	published := map[int64]bool{}
	for _, id := range seqIDs {
		published[id] = true
	}
	var kept []domain.NotificationOutboxRow
	for _, row := range f.outbox {
		if !published[row.SeqID] {
			kept = append(kept, row)
		}
	}
	f.outbox = kept
	return nil
}
