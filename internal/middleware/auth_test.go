package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/panjiggm/syntegra-app-sub000/internal/models"
	"github.com/panjiggm/syntegra-app-sub000/internal/repo"
	"github.com/panjiggm/syntegra-app-sub000/internal/transport"
	"github.com/panjiggm/syntegra-app-sub000/pkg/tokens"
)

var testSecret = []byte("test-jwt-secret")

type mwEnv struct {
	db *gorm.DB
	mw *AuthMiddleware
}

func newMWEnv(t *testing.T) *mwEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.AuthSession{}))

	return &mwEnv{
		db: db,
		mw: NewAuthMiddleware(&repo.GormRepo{DB: db}, testSecret),
	}
}

// seedSession creates an active user with one live auth session and returns
// both along with a signed access token.
func (e *mwEnv) seedSession(t *testing.T) (*models.User, *models.AuthSession, string) {
	t.Helper()

	user := &models.User{
		Name:     "Test Admin",
		Email:    "a@x.com",
		NIK:      "1234567890123456",
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	require.NoError(t, e.db.Create(user).Error)

	session := &models.AuthSession{
		ID:        uuid.New(),
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
		IsActive:  true,
	}
	require.NoError(t, e.db.Create(session).Error)

	return user, session, e.signToken(t, user, session.ID.String(), time.Now().Add(time.Minute))
}

func (e *mwEnv) signToken(t *testing.T, user *models.User, sessionID string, exp time.Time) string {
	t.Helper()

	claims := tokens.AccessClaims{
		Role:      user.Role,
		NIK:       user.NIK,
		Email:     user.Email,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

// doRequest runs a request through the given middleware chain with a probe
// handler that records whether it was reached.
func doRequest(t *testing.T, handler echo.HandlerFunc, authHeader string) (*httptest.ResponseRecorder, transport.Envelope) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler(c))

	var env transport.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func okProbe(reached *bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		*reached = true
		return transport.Success(c, http.StatusOK, "ok", nil)
	}
}

func firstCode(t *testing.T, env transport.Envelope) string {
	t.Helper()
	require.NotEmpty(t, env.Errors)
	return env.Errors[0].Code
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	t.Parallel()

	env := newMWEnv(t)
	var reached bool
	rec, body := doRequest(t, env.mw.RequireAuth(okProbe(&reached)), "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, body.Success)
	assert.Equal(t, transport.CodeMissingToken, firstCode(t, body))
	assert.False(t, reached)
}

func TestRequireAuth_NonBearerScheme(t *testing.T) {
	t.Parallel()

	env := newMWEnv(t)
	var reached bool
	rec, body := doRequest(t, env.mw.RequireAuth(okProbe(&reached)), "Basic dXNlcjpwYXNz")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, transport.CodeMissingToken, firstCode(t, body))
	assert.False(t, reached)
}

func TestRequireAuth_EmptyBearer(t *testing.T) {
	t.Parallel()

	env := newMWEnv(t)
	var reached bool
	rec, body := doRequest(t, env.mw.RequireAuth(okProbe(&reached)), "Bearer   ")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, transport.CodeEmptyToken, firstCode(t, body))
	assert.False(t, reached)
}

func TestRequireAuth_MalformedToken(t *testing.T) {
	t.Parallel()

	env := newMWEnv(t)
	var reached bool
	rec, body := doRequest(t, env.mw.RequireAuth(okProbe(&reached)), "Bearer not-a-jwt")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, transport.CodeInvalidToken, firstCode(t, body))
	assert.False(t, reached)
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	t.Parallel()

	env := newMWEnv(t)
	user, session, _ := env.seedSession(t)
	expired := env.signToken(t, user, session.ID.String(), time.Now().Add(-time.Minute))

	var reached bool
	rec, body := doRequest(t, env.mw.RequireAuth(okProbe(&reached)), "Bearer "+expired)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, transport.CodeInvalidToken, firstCode(t, body))
	assert.False(t, reached)
}

func TestRequireAuth_RevokedSession(t *testing.T) {
	t.Parallel()

	env := newMWEnv(t)
	_, session, token := env.seedSession(t)
	require.NoError(t, env.db.Model(session).Update("is_active", false).Error)

	var reached bool
	rec, body := doRequest(t, env.mw.RequireAuth(okProbe(&reached)), "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, transport.CodeSessionExpired, firstCode(t, body))
	assert.False(t, reached)
}

func TestRequireAuth_ExpiredSessionRow(t *testing.T) {
	t.Parallel()

	env := newMWEnv(t)
	_, session, token := env.seedSession(t)
	require.NoError(t, env.db.Model(session).Update("expires_at", time.Now().UTC().Add(-time.Minute)).Error)

	var reached bool
	rec, body := doRequest(t, env.mw.RequireAuth(okProbe(&reached)), "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, transport.CodeSessionExpired, firstCode(t, body))
	assert.False(t, reached)
}

func TestRequireAuth_DeactivatedUser(t *testing.T) {
	t.Parallel()

	env := newMWEnv(t)
	user, _, token := env.seedSession(t)
	require.NoError(t, env.db.Model(user).Update("is_active", false).Error)

	var reached bool
	rec, body := doRequest(t, env.mw.RequireAuth(okProbe(&reached)), "Bearer "+token)

	// Deactivation is the one auth failure that is a 403, not a 401.
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, transport.CodeAccountDeactivated, firstCode(t, body))
	assert.False(t, reached)
}

func TestRequireAuth_Success(t *testing.T) {
	t.Parallel()

	env := newMWEnv(t)
	user, session, token := env.seedSession(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := env.mw.RequireAuth(func(c echo.Context) error {
		got, ok := CurrentUser(c)
		require.True(t, ok)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, session.ID, CurrentSessionID(c))
		return transport.Success(c, http.StatusOK, "ok", nil)
	})
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOptionalAuth_ProceedsWithoutToken(t *testing.T) {
	t.Parallel()

	env := newMWEnv(t)

	var sawUser bool
	handler := env.mw.OptionalAuth(func(c echo.Context) error {
		_, sawUser = CurrentUser(c)
		return transport.Success(c, http.StatusOK, "ok", nil)
	})

	rec, body := doRequest(t, handler, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Success)
	assert.False(t, sawUser)
}

func TestOptionalAuth_AttachesUserWhenValid(t *testing.T) {
	t.Parallel()

	env := newMWEnv(t)
	user, _, token := env.seedSession(t)

	var gotID uuid.UUID
	handler := env.mw.OptionalAuth(func(c echo.Context) error {
		if u, ok := CurrentUser(c); ok {
			gotID = u.ID
		}
		return transport.Success(c, http.StatusOK, "ok", nil)
	})

	rec, _ := doRequest(t, handler, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.ID, gotID)
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	env := newMWEnv(t)
	user, _, token := env.seedSession(t)
	require.NoError(t, env.db.Model(user).Update("role", models.RoleParticipant).Error)

	var reached bool
	handler := env.mw.RequireAuth(RequireAdmin(okProbe(&reached)))
	rec, body := doRequest(t, handler, "Bearer "+token)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, transport.CodeForbidden, firstCode(t, body))
	assert.False(t, reached)

	require.NoError(t, env.db.Model(user).Update("role", models.RoleAdmin).Error)
	rec, _ = doRequest(t, handler, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
}

func TestRequireRole_WithoutAuthContext(t *testing.T) {
	t.Parallel()

	var reached bool
	rec, body := doRequest(t, RequireRole(models.RoleAdmin)(okProbe(&reached)), "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, transport.CodeMissingToken, firstCode(t, body))
	assert.False(t, reached)
}
