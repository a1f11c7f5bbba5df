package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rosterup/platform/internal/domain"
)

type contextKey string

const (
	adminKey contextKey = "auth_admin"
	coachKey contextKey = "auth_coach"
)

// AdminFromContext extracts the authenticated admin from request context.
func AdminFromContext(ctx context.Context) *domain.AdminUser {
	admin, _ := ctx.Value(adminKey).(*domain.AdminUser)
	return admin
}

// CoachFromContext extracts the authenticated coach from request context.
func CoachFromContext(ctx context.Context) *domain.Coach {
	coach, _ := ctx.Value(coachKey).(*domain.Coach)
	return coach
}

// AdminDirectory resolves an admin token's subject to a live admin record.
// A nil result means the record is gone and the token is revoked, however
// validly it is signed.
type AdminDirectory interface {
	FindAdminByID(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error)
}

// CoachResolver turns an opaque coach session token into a coach profile,
// auto-provisioning the profile on first sight of a new subject.
type CoachResolver interface {
	ResolveCoachSession(ctx context.Context, token string) (*domain.Coach, error)
}

// GuardRules is the routing table the guard enforces, expressed as data so
// route changes don't mean editing middleware logic.
type GuardRules struct {
	// AllowPrefixes bypass both credential checks entirely.
	AllowPrefixes []string
	// CoachPrefixes require a coach session; everything else requires admin.
	CoachPrefixes []string
	// LoginPath is where stale admin sessions are redirected.
	LoginPath string
	// Cookie names for the two credential kinds.
	AdminCookie string
	CoachCookie string
}

// DefaultGuardRules returns the routing table for the platform's route tree.
func DefaultGuardRules() GuardRules {
	return GuardRules{
		AllowPrefixes: []string{
			"/health",
			"/login",
			"/player-share/",
			"/static/",
		},
		CoachPrefixes: []string{"/portal/", "/api/portal/"},
		LoginPath:     "/login",
		AdminCookie:   "admin_session",
		CoachCookie:   "coach_session",
	}
}

// Guard gates every route behind the right credential kind. The two kinds
// are never interchangeable: a coach session opens no admin route and vice
// versa.
type Guard struct {
	rules   GuardRules
	jwt     *JWTManager
	admins  AdminDirectory
	coaches CoachResolver
	logger  *slog.Logger
}

// NewGuard creates a session guard.
func NewGuard(rules GuardRules, jwtMgr *JWTManager, admins AdminDirectory, coaches CoachResolver, logger *slog.Logger) *Guard {
	return &Guard{rules: rules, jwt: jwtMgr, admins: admins, coaches: coaches, logger: logger}
}

// Middleware returns the guard as chi-compatible middleware.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if matchesPrefix(path, g.rules.AllowPrefixes) {
			next.ServeHTTP(w, r)
			return
		}

		if matchesPrefix(path, g.rules.CoachPrefixes) {
			g.requireCoach(w, r, next)
			return
		}

		g.requireAdmin(w, r, next)
	})
}

func (g *Guard) requireCoach(w http.ResponseWriter, r *http.Request, next http.Handler) {
	token := cookieValue(r, g.rules.CoachCookie)
	if token == "" {
		g.rejectCoach(w)
		return
	}

	coach, err := g.coaches.ResolveCoachSession(r.Context(), token)
	if err != nil {
		g.logger.Warn("coach session resolution failed", "error", err)
		g.rejectCoach(w)
		return
	}
	if coach == nil {
		g.rejectCoach(w)
		return
	}

	ctx := context.WithValue(r.Context(), coachKey, coach)
	next.ServeHTTP(w, r.WithContext(ctx))
}

// rejectCoach answers 401 JSON: coach routes are API callers, never pages.
func (g *Guard) rejectCoach(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	http.Error(w, `{"success":false,"code":"UNAUTHORIZED","message":"coach session required"}`, http.StatusUnauthorized)
}

func (g *Guard) requireAdmin(w http.ResponseWriter, r *http.Request, next http.Handler) {
	token := bearerToken(r)
	if token == "" {
		token = cookieValue(r, g.rules.AdminCookie)
	}
	if token == "" {
		g.rejectAdmin(w, r)
		return
	}

	claims, err := g.jwt.ValidateAdminToken(token)
	if err != nil {
		g.rejectAdmin(w, r)
		return
	}

	adminID, err := uuid.Parse(claims.Subject)
	if err != nil {
		g.rejectAdmin(w, r)
		return
	}

	// Cross-check the live record: a deleted admin row revokes the token.
	admin, err := g.admins.FindAdminByID(r.Context(), adminID)
	if err != nil {
		g.logger.Error("admin lookup failed", "error", err, "admin_id", adminID)
		g.rejectAdmin(w, r)
		return
	}
	if admin == nil {
		g.rejectAdmin(w, r)
		return
	}

	ctx := context.WithValue(r.Context(), adminKey, admin)
	next.ServeHTTP(w, r.WithContext(ctx))
}

// rejectAdmin deletes the stale cookie and redirects page requests to login;
// API callers get 401 JSON.
func (g *Guard) rejectAdmin(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:    g.rules.AdminCookie,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	})

	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		http.Error(w, `{"success":false,"code":"UNAUTHORIZED","message":"admin session required"}`, http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, g.rules.LoginPath, http.StatusFound)
}

func matchesPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
