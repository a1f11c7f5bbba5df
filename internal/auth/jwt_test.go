package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminTokenRoundTrip(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Hour)
	adminID := uuid.New()

	token, err := mgr.GenerateAdminToken(adminID, "+15551234567")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := mgr.ValidateAdminToken(token)
	require.NoError(t, err)
	assert.Equal(t, adminID.String(), claims.Subject)
	assert.Equal(t, RealmAdmin, claims.Realm)
	assert.Equal(t, "+15551234567", claims.Phone)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateAdminTokenRejectsWrongSecret(t *testing.T) {
	mgr := NewJWTManager("secret-a", time.Hour)
	token, err := mgr.GenerateAdminToken(uuid.New(), "")
	require.NoError(t, err)

	other := NewJWTManager("secret-b", time.Hour)
	_, err = other.ValidateAdminToken(token)
	require.Error(t, err)
}

func TestValidateAdminTokenRejectsExpired(t *testing.T) {
	mgr := NewJWTManager("test-secret", -time.Minute)
	token, err := mgr.GenerateAdminToken(uuid.New(), "")
	require.NoError(t, err)

	_, err = mgr.ValidateAdminToken(token)
	require.Error(t, err)
}

func TestValidateAdminTokenRejectsWrongRealm(t *testing.T) {
	secret := "test-secret"
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Realm: "coach",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	mgr := NewJWTManager(secret, time.Hour)
	_, err = mgr.ValidateAdminToken(signed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "realm")
}

func TestValidateAdminTokenRejectsGarbage(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Hour)
	_, err := mgr.ValidateAdminToken("not.a.jwt")
	require.Error(t, err)
}
