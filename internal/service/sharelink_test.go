package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterup/platform/internal/domain"
)

type shareLinkFixture struct {
	svc    *ShareLinkService
	tokens *fakeShareTokenRepo
	regs   *fakeRegistrationRepo
	events *fakeEventRepo
}

func newShareLinkFixture(t *testing.T) *shareLinkFixture {
	t.Helper()
	tokens := newFakeShareTokenRepo()
	regs := newFakeRegistrationRepo()
	events := newFakeEventRepo()
	svc := NewShareLinkService(nil, tokens, regs, events, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return testNow }
	return &shareLinkFixture{svc: svc, tokens: tokens, regs: regs, events: events}
}

// seed creates an event, a draft registration with two players, and an active
// unexpired token targeting playerID (or playerIndex when playerID is nil).
func (f *shareLinkFixture) seed(playerID *string, playerIndex *int) (*domain.Registration, *domain.PlayerShareToken) {
	eventID := uuid.New()
	f.events.events[eventID] = &domain.Event{ID: eventID, Name: "Spring Cup", Sport: "soccer"}

	coachID := uuid.New()
	reg := &domain.Registration{
		ID:      uuid.New(),
		EventID: eventID,
		CoachID: &coachID,
		Status:  domain.StatusDraft,
		PlayersData: []domain.PlayerRecord{
			{"id": "p1", "name": "Sam"},
			{"id": "p2", "name": "Alex"},
		},
	}
	f.regs.regs[reg.ID] = reg

	token := &domain.PlayerShareToken{
		Token:          uuid.New().String(),
		RegistrationID: reg.ID,
		EventID:        eventID,
		PlayerID:       playerID,
		PlayerIndex:    playerIndex,
		ExpiresAt:      testNow.Add(72 * time.Hour),
		IsActive:       true,
	}
	f.tokens.tokens[token.Token] = token
	return reg, token
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestGetContext(t *testing.T) {
	t.Run("resolves the targeted slot", func(t *testing.T) {
		f := newShareLinkFixture(t)
		reg, token := f.seed(strPtr("p2"), nil)

		sc, err := f.svc.GetContext(context.Background(), token.Token)
		require.NoError(t, err)
		assert.Equal(t, reg.ID, sc.Registration.ID)
		assert.Equal(t, 1, sc.TargetIndex)
		assert.Equal(t, "Spring Cup", sc.Event.Name)
	})

	t.Run("unmatched id with no index means append", func(t *testing.T) {
		f := newShareLinkFixture(t)
		_, token := f.seed(strPtr("p9"), nil)

		sc, err := f.svc.GetContext(context.Background(), token.Token)
		require.NoError(t, err)
		assert.Equal(t, -1, sc.TargetIndex)
	})

	t.Run("unknown token is not found", func(t *testing.T) {
		f := newShareLinkFixture(t)
		_, err := f.svc.GetContext(context.Background(), "nope")
		requireCode(t, err, "NOT_FOUND")
	})

	t.Run("deactivated token is indistinguishable from missing", func(t *testing.T) {
		f := newShareLinkFixture(t)
		_, token := f.seed(strPtr("p1"), nil)
		f.tokens.tokens[token.Token].IsActive = false

		_, err := f.svc.GetContext(context.Background(), token.Token)
		requireCode(t, err, "NOT_FOUND")
	})

	t.Run("expiry dominates is_active", func(t *testing.T) {
		f := newShareLinkFixture(t)
		_, token := f.seed(strPtr("p1"), nil)
		f.tokens.tokens[token.Token].ExpiresAt = testNow.Add(-time.Minute)

		_, err := f.svc.GetContext(context.Background(), token.Token)
		requireCode(t, err, "TOKEN_EXPIRED")
	})

	t.Run("window state rides along when settings exist", func(t *testing.T) {
		f := newShareLinkFixture(t)
		reg, token := f.seed(strPtr("p1"), nil)
		end := testNow.Add(24 * time.Hour)
		f.events.settings[reg.EventID] = &domain.RegistrationSettings{
			EventID:          reg.EventID,
			TeamRequirements: []byte(fmt.Sprintf(`{"registrationEndDate":%q}`, end.Format(time.RFC3339))),
		}

		sc, err := f.svc.GetContext(context.Background(), token.Token)
		require.NoError(t, err)
		assert.Equal(t, domain.WindowOpen, sc.WindowState)
	})
}

func TestMergePlayerEdit(t *testing.T) {
	t.Run("edits the targeted slot in place", func(t *testing.T) {
		f := newShareLinkFixture(t)
		reg, token := f.seed(strPtr("p2"), nil)

		players, err := f.svc.MergePlayerEdit(context.Background(), token.Token,
			map[string]any{"shirt_size": "M", "name": "Alexis"})
		require.NoError(t, err)

		require.Len(t, players, 2)
		assert.Equal(t, "p2", players[1]["id"])
		assert.Equal(t, "Alexis", players[1]["name"])
		assert.Equal(t, "M", players[1]["shirt_size"])

		stored := f.regs.regs[reg.ID]
		assert.Equal(t, players, stored.PlayersData)
		assert.Equal(t, int64(1), stored.Version)
	})

	t.Run("unmatched id appends a new entry", func(t *testing.T) {
		f := newShareLinkFixture(t)
		_, token := f.seed(strPtr("p9"), nil)

		players, err := f.svc.MergePlayerEdit(context.Background(), token.Token,
			map[string]any{"name": "Robin"})
		require.NoError(t, err)

		require.Len(t, players, 3)
		assert.Equal(t, "p9", players[2]["id"])
		assert.Equal(t, "Robin", players[2]["name"])
	})

	t.Run("index token past the end pads placeholders", func(t *testing.T) {
		f := newShareLinkFixture(t)
		_, token := f.seed(nil, intPtr(4))

		players, err := f.svc.MergePlayerEdit(context.Background(), token.Token,
			map[string]any{"name": "Riley"})
		require.NoError(t, err)
		require.Len(t, players, 5)
		assert.Equal(t, "Riley", players[4]["name"])
	})

	t.Run("stamps used_at after a successful write", func(t *testing.T) {
		f := newShareLinkFixture(t)
		_, token := f.seed(strPtr("p1"), nil)

		_, err := f.svc.MergePlayerEdit(context.Background(), token.Token, map[string]any{"name": "Sam R"})
		require.NoError(t, err)
		require.NotNil(t, f.tokens.tokens[token.Token].UsedAt)
		assert.Equal(t, testNow, *f.tokens.tokens[token.Token].UsedAt)
	})

	t.Run("used_at failure does not fail the edit", func(t *testing.T) {
		f := newShareLinkFixture(t)
		reg, token := f.seed(strPtr("p1"), nil)
		f.tokens.markUsedErr = fmt.Errorf("connection refused")

		_, err := f.svc.MergePlayerEdit(context.Background(), token.Token, map[string]any{"name": "Sam R"})
		require.NoError(t, err)
		assert.Equal(t, "Sam R", f.regs.regs[reg.ID].PlayersData[0]["name"])
	})

	t.Run("submitted registration refuses the edit", func(t *testing.T) {
		f := newShareLinkFixture(t)
		reg, token := f.seed(strPtr("p1"), nil)
		f.regs.regs[reg.ID].Status = domain.StatusSubmitted

		_, err := f.svc.MergePlayerEdit(context.Background(), token.Token, map[string]any{"name": "x"})
		requireCode(t, err, "NOT_EDITABLE")
	})

	t.Run("approved registration refuses the edit", func(t *testing.T) {
		f := newShareLinkFixture(t)
		reg, token := f.seed(strPtr("p1"), nil)
		f.regs.regs[reg.ID].Status = domain.StatusApproved

		_, err := f.svc.MergePlayerEdit(context.Background(), token.Token, map[string]any{"name": "x"})
		requireCode(t, err, "NOT_EDITABLE")
	})

	t.Run("closed window wins over status", func(t *testing.T) {
		f := newShareLinkFixture(t)
		reg, token := f.seed(strPtr("p1"), nil)
		f.regs.regs[reg.ID].Status = domain.StatusSubmitted
		end := testNow.Add(-24 * time.Hour)
		f.events.settings[reg.EventID] = &domain.RegistrationSettings{
			EventID:          reg.EventID,
			TeamRequirements: []byte(fmt.Sprintf(`{"registrationEndDate":%q}`, end.Format(time.RFC3339))),
		}

		_, err := f.svc.MergePlayerEdit(context.Background(), token.Token, map[string]any{"name": "x"})
		requireCode(t, err, "REGISTRATION_CLOSED")
	})

	t.Run("review window keeps share edits open", func(t *testing.T) {
		f := newShareLinkFixture(t)
		reg, token := f.seed(strPtr("p1"), nil)
		end := testNow.Add(-24 * time.Hour)
		reviewEnd := testNow.Add(24 * time.Hour)
		f.events.settings[reg.EventID] = &domain.RegistrationSettings{
			EventID: reg.EventID,
			TeamRequirements: []byte(fmt.Sprintf(`{"registrationEndDate":%q,"reviewEndDate":%q}`,
				end.Format(time.RFC3339), reviewEnd.Format(time.RFC3339))),
		}

		_, err := f.svc.MergePlayerEdit(context.Background(), token.Token, map[string]any{"name": "Sam R"})
		require.NoError(t, err)
	})

	t.Run("token without a target is unresolvable", func(t *testing.T) {
		f := newShareLinkFixture(t)
		_, token := f.seed(nil, nil)

		_, err := f.svc.MergePlayerEdit(context.Background(), token.Token, map[string]any{"name": "x"})
		requireCode(t, err, "CANNOT_RESOLVE_SLOT")
	})

	t.Run("negative index is invalid", func(t *testing.T) {
		f := newShareLinkFixture(t)
		_, token := f.seed(nil, intPtr(-1))

		_, err := f.svc.MergePlayerEdit(context.Background(), token.Token, map[string]any{"name": "x"})
		requireCode(t, err, "INVALID_SLOT")
	})

	t.Run("lost race surfaces as a conflict", func(t *testing.T) {
		f := newShareLinkFixture(t)
		_, token := f.seed(strPtr("p1"), nil)
		f.regs.casDenied = true

		_, err := f.svc.MergePlayerEdit(context.Background(), token.Token, map[string]any{"name": "x"})
		requireCode(t, err, "CONFLICT")
	})

	t.Run("expired token blocks the write", func(t *testing.T) {
		f := newShareLinkFixture(t)
		_, token := f.seed(strPtr("p1"), nil)
		f.tokens.tokens[token.Token].ExpiresAt = testNow.Add(-time.Minute)

		_, err := f.svc.MergePlayerEdit(context.Background(), token.Token, map[string]any{"name": "x"})
		requireCode(t, err, "TOKEN_EXPIRED")
	})
}
