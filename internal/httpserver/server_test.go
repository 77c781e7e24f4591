package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/panjiggm/syntegra-app-sub000/internal/events"
	"github.com/panjiggm/syntegra-app-sub000/internal/middleware"
	"github.com/panjiggm/syntegra-app-sub000/internal/models"
	"github.com/panjiggm/syntegra-app-sub000/internal/repo"
	"github.com/panjiggm/syntegra-app-sub000/internal/service"
	"github.com/panjiggm/syntegra-app-sub000/internal/transport"
	pkg_hash "github.com/panjiggm/syntegra-app-sub000/pkg/hash"
)

var (
	testJWTSecret     = []byte("test-jwt-secret")
	testRefreshSecret = []byte("test-refresh-secret")
)

// serverEnv wires the full router against an in-memory database, the same
// way main does against postgres.
type serverEnv struct {
	db   *gorm.DB
	echo *echo.Echo
}

func newServerEnv(t *testing.T) *serverEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.AuthSession{},
		&models.Test{},
		&models.TestSession{},
		&models.SessionParticipant{},
	))

	gormRepo := &repo.GormRepo{DB: db}
	producer := events.NewProducer(nil, "")

	deps := &Deps{
		Auth: &AuthHTTP{
			Svc: &service.AuthService{
				Repo:          gormRepo,
				Events:        producer,
				JWTSecret:     testJWTSecret,
				RefreshSecret: testRefreshSecret,
			},
			Detail: true,
		},
		Sessions: &SessionHTTP{
			Mgr:    &service.SessionManager{Repo: gormRepo, Events: producer},
			Detail: true,
		},
		Tests: &TestHTTP{
			Svc:    &service.TestService{Repo: gormRepo},
			Detail: true,
		},
		TestSessions: &TestSessionHTTP{
			Svc:    &service.TestSessionService{Repo: gormRepo, Events: producer},
			Detail: true,
		},
		Participants: &ParticipantHTTP{
			Svc:    &service.ParticipantService{Repo: gormRepo, FrontendURL: "https://app.example.com"},
			Detail: true,
		},
		AuthMW: middleware.NewAuthMiddleware(gormRepo, testJWTSecret),
	}

	e := echo.New()
	Register(e, deps)
	return &serverEnv{db: db, echo: e}
}

func (e *serverEnv) seedAdmin(t *testing.T, email, password string) *models.User {
	t.Helper()

	hash, err := pkg_hash.HashPassword(password)
	require.NoError(t, err)
	user := &models.User{
		NIK:          "1234567890123456",
		Name:         "Test Admin",
		Email:        email,
		Role:         models.RoleAdmin,
		PasswordHash: hash,
		IsActive:     true,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *serverEnv) seedParticipant(t *testing.T, phone string) *models.User {
	t.Helper()

	user := &models.User{
		Name:     "Test Participant",
		Phone:    phone,
		Role:     models.RoleParticipant,
		IsActive: true,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

// do sends one request through the router and decodes the envelope.
func (e *serverEnv) do(t *testing.T, method, path, token string, body any) (int, transport.Envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.echo.ServeHTTP(rec, req)

	var env transport.Envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

// decodeData re-marshals the envelope's data field into out.
func decodeData(t *testing.T, env transport.Envelope, out any) {
	t.Helper()
	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func (e *serverEnv) login(t *testing.T, path string, body any) transport.LoginResponse {
	t.Helper()

	status, env := e.do(t, http.MethodPost, path, "", body)
	require.Equal(t, http.StatusOK, status, "login failed: %s", env.Message)
	var res transport.LoginResponse
	decodeData(t, env, &res)
	require.NotEmpty(t, res.Tokens.AccessToken)
	return res
}

func (e *serverEnv) adminLogin(t *testing.T, email, password string) transport.LoginResponse {
	t.Helper()
	return e.login(t, "/api/v1/auth/admin/login", transport.AdminLoginRequest{Identifier: email, Password: password})
}

func (e *serverEnv) participantLogin(t *testing.T, phone string) transport.LoginResponse {
	t.Helper()
	return e.login(t, "/api/v1/auth/participant/login", transport.ParticipantLoginRequest{Phone: phone})
}

func errCode(t *testing.T, env transport.Envelope) string {
	t.Helper()
	require.NotEmpty(t, env.Errors)
	return env.Errors[0].Code
}
