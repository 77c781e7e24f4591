package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/panjiggm/syntegra-app-sub000/internal/models"
	"github.com/panjiggm/syntegra-app-sub000/internal/repo"
	"github.com/panjiggm/syntegra-app-sub000/internal/transport"
	"github.com/panjiggm/syntegra-app-sub000/pkg/logging"
	"github.com/panjiggm/syntegra-app-sub000/pkg/tokens"
)

const (
	ctxUserKey      = "auth_user"
	ctxSessionIDKey = "auth_session_id"
)

type AuthMiddleware struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
}

func NewAuthMiddleware(r *repo.GormRepo, secret []byte) *AuthMiddleware {
	return &AuthMiddleware{Repo: r, JWTSecret: secret}
}

// RequireAuth gates a route behind a verified bearer token. Each check
// short-circuits: header present, token verifies, session row still active,
// user exists, user active. On success the user and session id are attached
// to the request context and last_used is bumped off the request path.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, sessionID, code := m.authenticate(c)
		if code != "" {
			status := http.StatusUnauthorized
			if code == transport.CodeAccountDeactivated {
				status = http.StatusForbidden
			}
			return transport.Fail(c, status, code, failMessage(code))
		}

		c.Set(ctxUserKey, user)
		c.Set(ctxSessionIDKey, sessionID)
		m.touchAsync(c, sessionID)
		return next(c)
	}
}

// OptionalAuth attaches the user when a valid token is presented and
// silently proceeds otherwise. It never blocks the route.
func (m *AuthMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, sessionID, code := m.authenticate(c)
		if code == "" {
			c.Set(ctxUserKey, user)
			c.Set(ctxSessionIDKey, sessionID)
			m.touchAsync(c, sessionID)
		}
		return next(c)
	}
}

// authenticate runs the per-request check chain and returns an error code
// naming the first failed transition, or "" on success.
func (m *AuthMiddleware) authenticate(c echo.Context) (*models.User, uuid.UUID, string) {
	ctx := c.Request().Context()

	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return nil, uuid.Nil, transport.CodeMissingToken
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return nil, uuid.Nil, transport.CodeMissingToken
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if raw == "" {
		return nil, uuid.Nil, transport.CodeEmptyToken
	}

	claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
	if err != nil {
		return nil, uuid.Nil, transport.CodeInvalidToken
	}

	var sessionID uuid.UUID
	if claims.SessionID != "" {
		sessionID, err = uuid.Parse(claims.SessionID)
		if err != nil {
			return nil, uuid.Nil, transport.CodeInvalidToken
		}
		active, err := m.Repo.SessionIsActive(ctx, sessionID, time.Now().UTC())
		if err != nil || !active {
			return nil, uuid.Nil, transport.CodeSessionExpired
		}
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, uuid.Nil, transport.CodeInvalidToken
	}
	user, err := m.Repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, uuid.Nil, transport.CodeUserNotFound
	}
	if !user.IsActive {
		return nil, uuid.Nil, transport.CodeAccountDeactivated
	}

	return user, sessionID, ""
}

// touchAsync bumps the session's last_used without holding the response:
// a failed bump is logged and never fails the request.
func (m *AuthMiddleware) touchAsync(c echo.Context, sessionID uuid.UUID) {
	if sessionID == uuid.Nil {
		return
	}
	l := logging.FromContext(c.Request().Context())
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := m.Repo.TouchSession(ctx, sessionID, time.Now().UTC()); err != nil {
			l.Warn("session_touch_failed", "session_id", sessionID, "error", err)
		}
	}()
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return RequireRole(models.RoleAdmin)(next)
}

// RequireRole allows only the named roles through.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return transport.Fail(c, http.StatusUnauthorized, transport.CodeMissingToken, "authentication required")
			}
			for _, role := range roles {
				if user.Role == role {
					return next(c)
				}
			}
			return transport.Fail(c, http.StatusForbidden, transport.CodeForbidden, "insufficient privileges")
		}
	}
}

// RequireOwnershipOrAdmin lets admins through unconditionally; everyone
// else must match the path parameter against their own user id.
func RequireOwnershipOrAdmin(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return transport.Fail(c, http.StatusUnauthorized, transport.CodeMissingToken, "authentication required")
			}
			if user.Role == models.RoleAdmin || user.ID.String() == c.Param(param) {
				return next(c)
			}
			return transport.Fail(c, http.StatusForbidden, transport.CodeForbidden, "insufficient privileges")
		}
	}
}

func CurrentUser(c echo.Context) (*models.User, bool) {
	user, ok := c.Get(ctxUserKey).(*models.User)
	return user, ok && user != nil
}

func CurrentSessionID(c echo.Context) uuid.UUID {
	if id, ok := c.Get(ctxSessionIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

func failMessage(code string) string {
	switch code {
	case transport.CodeMissingToken:
		return "missing authorization header"
	case transport.CodeEmptyToken:
		return "empty bearer token"
	case transport.CodeInvalidToken:
		return "invalid or expired token"
	case transport.CodeSessionExpired:
		return "session has expired or been revoked"
	case transport.CodeUserNotFound:
		return "user not found"
	case transport.CodeAccountDeactivated:
		return "account is deactivated"
	default:
		return "unauthorized"
	}
}
