package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panjiggm/syntegra-app-sub000/internal/models"
	"github.com/panjiggm/syntegra-app-sub000/internal/repo"
	"github.com/panjiggm/syntegra-app-sub000/pkg/tokens"
)

func TestAdminLogin_Success_BindsSessionIDToRow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.createAdmin(t, "a@x.com", "1234567890123456", "secret123")

	res, err := env.auth.AdminLogin(ctx, "a@x.com", "secret123", "127.0.0.1", "test-agent")
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NotEmpty(t, res.Tokens.AccessToken)
	require.NotEmpty(t, res.Tokens.RefreshToken)

	accessClaims, err := tokens.AccessClaimsFromToken(res.Tokens.AccessToken, env.auth.JWTSecret)
	require.NoError(t, err)
	refreshClaims, err := tokens.RefreshClaimsFromToken(res.Tokens.RefreshToken, env.auth.RefreshSecret)
	require.NoError(t, err)

	// Both tokens carry the same session id.
	assert.Equal(t, accessClaims.SessionID, refreshClaims.SessionID)

	var sessions []models.AuthSession
	require.NoError(t, env.db.Find(&sessions).Error)
	require.Len(t, sessions, 1)
	assert.Equal(t, accessClaims.SessionID, sessions[0].ID.String())
	assert.True(t, sessions[0].IsActive)
	assert.Equal(t, "127.0.0.1", sessions[0].IPAddress)
	assert.Equal(t, "test-agent", sessions[0].UserAgent)
}

func TestAdminLogin_ByNIK(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.createAdmin(t, "a@x.com", "1234567890123456", "secret123")

	res, err := env.auth.AdminLogin(context.Background(), "1234567890123456", "secret123", "", "")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", res.User.Email)
}

func TestAdminLogin_Validation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		identifier string
		password   string
	}{
		{name: "empty identifier", identifier: "", password: "secret"},
		{name: "empty password", identifier: "a@x.com", password: ""},
		{name: "not email nor nik", identifier: "short", password: "secret"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := env.auth.AdminLogin(ctx, tt.identifier, tt.password, "", "")
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAdminLogin_UnknownUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, err := env.auth.AdminLogin(context.Background(), "nobody@x.com", "secret123", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminLogin_LockoutAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createAdmin(t, "a@x.com", "1234567890123456", "secret123")

	for i := 0; i < repo.MaxLoginAttempts; i++ {
		_, err := env.auth.AdminLogin(ctx, "a@x.com", "wrong-password", "", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	var locked models.User
	require.NoError(t, env.db.First(&locked, "id = ?", user.ID).Error)
	assert.Equal(t, repo.MaxLoginAttempts, locked.LoginAttempts)
	require.NotNil(t, locked.LockedUntil)

	// Correct password is still rejected while the lock is open.
	_, err := env.auth.AdminLogin(ctx, "a@x.com", "secret123", "", "")
	assert.ErrorIs(t, err, ErrAccountLocked)

	// The lock expires on its own.
	env.advance(repo.LockoutDuration + time.Minute)
	res, err := env.auth.AdminLogin(ctx, "a@x.com", "secret123", "", "")
	require.NoError(t, err)
	require.NotNil(t, res)

	var unlocked models.User
	require.NoError(t, env.db.First(&unlocked, "id = ?", user.ID).Error)
	assert.Equal(t, 0, unlocked.LoginAttempts)
	assert.Nil(t, unlocked.LockedUntil)
}

func TestAdminLogin_InactiveAccount(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user := env.createAdmin(t, "a@x.com", "1234567890123456", "secret123")
	require.NoError(t, env.db.Model(user).Update("is_active", false).Error)

	_, err := env.auth.AdminLogin(context.Background(), "a@x.com", "secret123", "", "")
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestIncrementLoginAttempts_ReturnsNewCount(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createAdmin(t, "a@x.com", "1234567890123456", "secret123")

	// Each call observes its own distinct post-increment value.
	for want := 1; want <= 3; want++ {
		got, err := env.repo.IncrementLoginAttempts(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := env.repo.IncrementLoginAttempts(ctx, uuid.New())
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestAdminLogin_SuccessClearsCounterBeforeSessionExists(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createAdmin(t, "a@x.com", "1234567890123456", "secret123")

	for i := 0; i < 3; i++ {
		_, err := env.auth.AdminLogin(ctx, "a@x.com", "wrong-password", "", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err := env.auth.AdminLogin(ctx, "a@x.com", "secret123", "", "")
	require.NoError(t, err)

	// Counter cleared, and exactly the one session the client received.
	var got models.User
	require.NoError(t, env.db.First(&got, "id = ?", user.ID).Error)
	assert.Equal(t, 0, got.LoginAttempts)
	assert.Nil(t, got.LockedUntil)

	var count int64
	require.NoError(t, env.db.Model(&models.AuthSession{}).
		Where("user_id = ? AND is_active = ?", user.ID, true).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestResetLoginAttempts_Idempotent(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createAdmin(t, "a@x.com", "1234567890123456", "secret123")

	require.NoError(t, env.repo.ResetLoginAttempts(ctx, user.ID))
	require.NoError(t, env.repo.ResetLoginAttempts(ctx, user.ID))

	var got models.User
	require.NoError(t, env.db.First(&got, "id = ?", user.ID).Error)
	assert.Equal(t, 0, got.LoginAttempts)
	assert.Nil(t, got.LockedUntil)
}

func TestParticipantLogin_ByPhone(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.createParticipant(t, "081234567890")

	res, err := env.auth.ParticipantLogin(ctx, "081234567890", "10.0.0.1", "device-a")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, models.RoleParticipant, res.User.Role)

	_, err = env.auth.ParticipantLogin(ctx, "089999999999", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh_PreservesSessionID(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.createAdmin(t, "a@x.com", "1234567890123456", "secret123")

	login, err := env.auth.AdminLogin(ctx, "a@x.com", "secret123", "", "")
	require.NoError(t, err)

	oldClaims, err := tokens.RefreshClaimsFromToken(login.Tokens.RefreshToken, env.auth.RefreshSecret)
	require.NoError(t, err)

	pair, err := env.auth.Refresh(ctx, login.Tokens.RefreshToken)
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.NotEqual(t, login.Tokens.RefreshToken, pair.RefreshToken)

	newAccess, err := tokens.AccessClaimsFromToken(pair.AccessToken, env.auth.JWTSecret)
	require.NoError(t, err)
	newRefresh, err := tokens.RefreshClaimsFromToken(pair.RefreshToken, env.auth.RefreshSecret)
	require.NoError(t, err)

	assert.Equal(t, oldClaims.SessionID, newAccess.SessionID)
	assert.Equal(t, oldClaims.SessionID, newRefresh.SessionID)

	// Still exactly one session row; same id, rotated token hashes.
	var sessions []models.AuthSession
	require.NoError(t, env.db.Find(&sessions).Error)
	require.Len(t, sessions, 1)
	assert.Equal(t, oldClaims.SessionID, sessions[0].ID.String())
	assert.Equal(t, tokens.Sha256Hex(pair.RefreshToken), sessions[0].RefreshTokenHash)

	// The superseded refresh token no longer matches any row.
	_, err = env.auth.Refresh(ctx, login.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefresh_InvalidToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, err := env.auth.Refresh(context.Background(), "not-a-valid-jwt")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestLogout_SingleSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createAdmin(t, "a@x.com", "1234567890123456", "secret123")

	login, err := env.auth.AdminLogin(ctx, "a@x.com", "secret123", "", "")
	require.NoError(t, err)

	claims, err := tokens.AccessClaimsFromToken(login.Tokens.AccessToken, env.auth.JWTSecret)
	require.NoError(t, err)
	sessionID := uuid.MustParse(claims.SessionID)

	require.NoError(t, env.auth.Logout(ctx, user.ID, sessionID, false))

	active, err := env.repo.SessionIsActive(ctx, sessionID, env.clock)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestLogout_AllDevices(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createAdmin(t, "a@x.com", "1234567890123456", "secret123")

	for i := 0; i < 3; i++ {
		_, err := env.auth.AdminLogin(ctx, "a@x.com", "secret123", "", "")
		require.NoError(t, err)
	}

	require.NoError(t, env.auth.Logout(ctx, user.ID, uuid.Nil, true))

	var count int64
	require.NoError(t, env.db.Model(&models.AuthSession{}).
		Where("user_id = ? AND is_active = ?", user.ID, true).
		Count(&count).Error)
	assert.Zero(t, count)
}

func TestChangePassword_RevokesAllSessions(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createAdmin(t, "a@x.com", "1234567890123456", "secret123")

	login, err := env.auth.AdminLogin(ctx, "a@x.com", "secret123", "", "")
	require.NoError(t, err)

	require.NoError(t, env.auth.ChangePassword(ctx, user.ID, "secret123", "new-secret-456"))

	// Every session is dead; the pre-change refresh token is useless.
	var count int64
	require.NoError(t, env.db.Model(&models.AuthSession{}).
		Where("user_id = ? AND is_active = ?", user.ID, true).
		Count(&count).Error)
	assert.Zero(t, count)

	_, err = env.auth.Refresh(ctx, login.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	// Old password is gone, new one works.
	_, err = env.auth.AdminLogin(ctx, "a@x.com", "secret123", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.auth.AdminLogin(ctx, "a@x.com", "new-secret-456", "", "")
	require.NoError(t, err)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user := env.createAdmin(t, "a@x.com", "1234567890123456", "secret123")

	err := env.auth.ChangePassword(context.Background(), user.ID, "wrong", "new-secret-456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
