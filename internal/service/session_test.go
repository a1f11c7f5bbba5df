package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterup/platform/internal/domain"
)

func newSessionFixture(t *testing.T) (*SessionService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	svc := NewSessionService(nil, users, 720*time.Hour)
	svc.now = func() time.Time { return testNow }
	return svc, users
}

func TestIssueCoachSession(t *testing.T) {
	svc, users := newSessionFixture(t)

	session, err := svc.IssueCoachSession(context.Background(), "user_abc")
	require.NoError(t, err)

	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "user_abc", session.Subject)
	assert.Equal(t, testNow.Add(720*time.Hour), session.ExpiresAt)
	require.NotNil(t, users.sessions[session.Token])

	t.Run("empty subject is refused", func(t *testing.T) {
		_, err := svc.IssueCoachSession(context.Background(), "")
		requireCode(t, err, "VALIDATION_ERROR")
	})
}

func TestResolveCoachSession(t *testing.T) {
	t.Run("valid session returns the existing coach", func(t *testing.T) {
		svc, users := newSessionFixture(t)
		coach := &domain.Coach{ID: uuid.New(), Subject: "user_abc", Name: "Pat"}
		users.coaches[coach.ID] = coach
		users.sessions["tok"] = &domain.CoachSession{
			Token: "tok", Subject: "user_abc", ExpiresAt: testNow.Add(time.Hour),
		}

		got, err := svc.ResolveCoachSession(context.Background(), "tok")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, coach.ID, got.ID)
	})

	t.Run("unknown token resolves to nobody", func(t *testing.T) {
		svc, _ := newSessionFixture(t)
		got, err := svc.ResolveCoachSession(context.Background(), "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("expired session resolves to nobody", func(t *testing.T) {
		svc, users := newSessionFixture(t)
		users.sessions["tok"] = &domain.CoachSession{
			Token: "tok", Subject: "user_abc", ExpiresAt: testNow.Add(-time.Minute),
		}

		got, err := svc.ResolveCoachSession(context.Background(), "tok")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("first sight of a subject provisions the coach", func(t *testing.T) {
		svc, users := newSessionFixture(t)
		users.sessions["tok"] = &domain.CoachSession{
			Token: "tok", Subject: "user_new", ExpiresAt: testNow.Add(time.Hour),
		}

		got, err := svc.ResolveCoachSession(context.Background(), "tok")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "user_new", got.Subject)
		require.Len(t, users.coaches, 1)

		again, err := svc.ResolveCoachSession(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, got.ID, again.ID)
		assert.Len(t, users.coaches, 1)
	})
}

func TestFindAdminByID(t *testing.T) {
	svc, users := newSessionFixture(t)
	admin := &domain.AdminUser{ID: uuid.New(), Name: "Root"}
	users.admins[admin.ID] = admin

	got, err := svc.FindAdminByID(context.Background(), admin.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, admin.ID, got.ID)

	missing, err := svc.FindAdminByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
