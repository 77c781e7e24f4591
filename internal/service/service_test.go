package service

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/panjiggm/syntegra-app-sub000/internal/events"
	"github.com/panjiggm/syntegra-app-sub000/internal/models"
	"github.com/panjiggm/syntegra-app-sub000/internal/repo"
	pkg_hash "github.com/panjiggm/syntegra-app-sub000/pkg/hash"
)

type testEnv struct {
	db   *gorm.DB
	repo *repo.GormRepo
	auth *AuthService
	mgr  *SessionManager

	// clock drives every service's notion of now.
	clock time.Time
}

func newTestEnv(t *testing.T) *testEnv {
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

	r := &repo.GormRepo{DB: db}
	env := &testEnv{
		db:    db,
		repo:  r,
		clock: time.Now().UTC(),
	}
	env.auth = &AuthService{
		Repo:          r,
		Events:        events.NewProducer(nil, ""),
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		Now:           func() time.Time { return env.clock },
	}
	env.mgr = &SessionManager{Repo: r, Events: events.NewProducer(nil, "")}
	return env
}

func (e *testEnv) advance(d time.Duration) {
	e.clock = e.clock.Add(d)
}

func (e *testEnv) createAdmin(t *testing.T, email, nik, password string) *models.User {
	t.Helper()

	hash, err := pkg_hash.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		NIK:          nik,
		Name:         "Test Admin",
		Email:        email,
		Role:         models.RoleAdmin,
		PasswordHash: hash,
		IsActive:     true,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createParticipant(t *testing.T, phone string) *models.User {
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
