package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Realm identifies the JWT authentication realm. Coach sessions are opaque
// database tokens, not JWTs; only the admin realm is signed here.
type Realm string

const RealmAdmin Realm = "admin"

// Claims holds the custom JWT claims carried by admin session tokens.
type Claims struct {
	jwt.RegisteredClaims
	Realm Realm  `json:"realm"`
	Phone string `json:"phone,omitempty"`
}

// JWTManager handles admin token generation and validation.
type JWTManager struct {
	secret      []byte
	adminExpiry time.Duration
}

// NewJWTManager creates a JWT manager.
func NewJWTManager(secret string, adminExpiry time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), adminExpiry: adminExpiry}
}

// GenerateAdminToken creates a signed JWT for an admin user.
func (m *JWTManager) GenerateAdminToken(adminID uuid.UUID, phone string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.adminExpiry)),
			ID:        uuid.New().String(),
		},
		Realm: RealmAdmin,
		Phone: phone,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateAdminToken parses and validates an admin JWT, returning its claims.
func (m *JWTManager) ValidateAdminToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Realm != RealmAdmin {
		return nil, fmt.Errorf("expected realm %s, got %s", RealmAdmin, claims.Realm)
	}

	return claims, nil
}
