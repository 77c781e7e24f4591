package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/panjiggm/syntegra-app-sub000/internal/events"
	"github.com/panjiggm/syntegra-app-sub000/internal/models"
	"github.com/panjiggm/syntegra-app-sub000/internal/repo"
	"github.com/panjiggm/syntegra-app-sub000/internal/transport"
	pkg_hash "github.com/panjiggm/syntegra-app-sub000/pkg/hash"
	"github.com/panjiggm/syntegra-app-sub000/pkg/logging"
	"github.com/panjiggm/syntegra-app-sub000/pkg/tokens"
)

var nikPattern = regexp.MustCompile(`^[0-9]{16}$`)

type AuthService struct {
	Repo          *repo.GormRepo
	Events        *events.Producer
	JWTSecret     []byte
	RefreshSecret []byte

	// Now is overridable for deterministic tests.
	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *AuthService) publish(ctx context.Context, eventType, key string, payload map[string]any) {
	if err := s.Events.Publish(ctx, eventType, key, payload); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", eventType, "error", err)
	}
}

func (s *AuthService) CreateAccessToken(user *models.User, sessionID string, exp time.Time) (string, error) {
	claims := tokens.AccessClaims{
		Role:      user.Role,
		NIK:       user.NIK,
		Email:     user.Email,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(s.now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.JWTSecret)
}

func (s *AuthService) CreateRefreshToken(userID uuid.UUID, sessionID string, exp time.Time) (string, error) {
	// The JTI makes every issued token unique even inside one clock tick,
	// so a rotation always invalidates the previous pair's hashes.
	claims := tokens.RefreshClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(s.now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.RefreshSecret)
}

// issueSession mints the session id first, signs both tokens with it, then
// persists the row under the same id. The id exists before either
// representation does, so a verified token always has a backing row.
func (s *AuthService) issueSession(ctx context.Context, user *models.User, ip, userAgent string) (*transport.LoginResponse, error) {
	sessionID := uuid.New()
	now := s.now()
	accessExp := now.Add(tokens.AccessTokenTTL)
	refreshExp := now.Add(tokens.RefreshTokenTTL)

	accessToken, err := s.CreateAccessToken(user, sessionID.String(), accessExp)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, err := s.CreateRefreshToken(user.ID, sessionID.String(), refreshExp)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	session := models.AuthSession{
		ID:               sessionID,
		UserID:           user.ID,
		TokenHash:        tokens.Sha256Hex(accessToken),
		RefreshTokenHash: tokens.Sha256Hex(refreshToken),
		ExpiresAt:        refreshExp,
		IPAddress:        ip,
		UserAgent:        userAgent,
		IsActive:         true,
	}
	if err := s.Repo.CreateAuthSession(ctx, &session); err != nil {
		return nil, fmt.Errorf("persist auth session: %w", err)
	}

	return &transport.LoginResponse{
		User: user,
		Tokens: transport.TokenPair{
			AccessToken:      accessToken,
			RefreshToken:     refreshToken,
			AccessExpiresAt:  accessExp,
			RefreshExpiresAt: refreshExp,
		},
	}, nil
}

// AdminLogin authenticates an admin by email or NIK plus password.
func (s *AuthService) AdminLogin(ctx context.Context, identifier, password, ip, userAgent string) (*transport.LoginResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.admin_login")

	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, fmt.Errorf("identifier and password are required: %w", ErrValidation)
	}

	var (
		user *models.User
		err  error
	)
	switch {
	case strings.Contains(identifier, "@"):
		user, err = s.Repo.FindAdminByEmail(ctx, strings.ToLower(identifier))
	case nikPattern.MatchString(identifier):
		user, err = s.Repo.FindAdminByNIK(ctx, identifier)
	default:
		return nil, fmt.Errorf("identifier must be an email or a 16-digit NIK: %w", ErrValidation)
	}
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.IsLocked(s.now()) {
		l.Warn("login_rejected", "reason", "account locked", "user_id", user.ID)
		return nil, ErrAccountLocked
	}
	if !user.IsActive {
		l.Warn("login_rejected", "reason", "account deactivated", "user_id", user.ID)
		return nil, ErrAccountInactive
	}

	if !pkg_hash.CheckPassword(user.PasswordHash, password) {
		if err := s.registerFailedAttempt(ctx, user); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}

	// Reset before issuing: if the reset fails the login errors out without
	// leaving behind a session row the client never received tokens for.
	if err := s.Repo.ResetLoginAttempts(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("reset login attempts: %w", err)
	}

	res, err := s.issueSession(ctx, user, ip, userAgent)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypeLogin, user.ID.String(), map[string]any{"role": user.Role, "ip": ip})
	l.Info("login_successful", "user_id", user.ID)
	return res, nil
}

// registerFailedAttempt bumps the counter and locks the account at the
// threshold. A failure to set the lock surfaces as an error rather than
// letting the login path continue unlocked.
func (s *AuthService) registerFailedAttempt(ctx context.Context, user *models.User) error {
	l := logging.FromContext(ctx)

	attempts, err := s.Repo.IncrementLoginAttempts(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("increment login attempts: %w", err)
	}
	s.publish(ctx, events.TypeLoginFailed, user.ID.String(), map[string]any{"attempts": attempts})

	if attempts >= repo.MaxLoginAttempts {
		until := s.now().Add(repo.LockoutDuration)
		if err := s.Repo.LockAccount(ctx, user.ID, until); err != nil {
			return fmt.Errorf("lock account: %w", err)
		}
		s.publish(ctx, events.TypeAccountLocked, user.ID.String(), map[string]any{"until": until})
		l.Warn("account_locked", "user_id", user.ID, "until", until)
	}
	return nil
}

// ParticipantLogin authenticates a participant by phone number alone.
// Sessions are invite-only; the phone number is the invitation credential.
func (s *AuthService) ParticipantLogin(ctx context.Context, phone, ip, userAgent string) (*transport.LoginResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.participant_login")

	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, fmt.Errorf("phone is required: %w", ErrValidation)
	}

	user, err := s.Repo.FindParticipantByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.IsLocked(s.now()) {
		return nil, ErrAccountLocked
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	res, err := s.issueSession(ctx, user, ip, userAgent)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypeLogin, user.ID.String(), map[string]any{"role": user.Role, "ip": ip})
	l.Info("login_successful", "user_id", user.ID)
	return res, nil
}

// Refresh rotates the token pair of an existing session. The session id is
// never re-minted: the new pair carries the id of the row that validated
// the refresh token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*transport.TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	session, err := s.Repo.FindActiveSessionByRefreshHash(ctx, tokens.Sha256Hex(refreshToken))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if claims.SessionID != session.ID.String() {
		return nil, ErrInvalidRefreshToken
	}

	now := s.now()
	if !session.ExpiresAt.After(now) {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.Repo.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	accessExp := now.Add(tokens.AccessTokenTTL)
	refreshExp := now.Add(tokens.RefreshTokenTTL)

	newAccess, err := s.CreateAccessToken(user, session.ID.String(), accessExp)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	newRefresh, err := s.CreateRefreshToken(user.ID, session.ID.String(), refreshExp)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.Repo.RotateSessionTokens(ctx, session.ID,
		tokens.Sha256Hex(newAccess), tokens.Sha256Hex(newRefresh), refreshExp, now); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	l.Info("refresh_successful", "session_id", session.ID)
	return &transport.TokenPair{
		AccessToken:      newAccess,
		RefreshToken:     newRefresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Logout deactivates the current session, or every session the user owns
// when allDevices is set.
func (s *AuthService) Logout(ctx context.Context, userID, sessionID uuid.UUID, allDevices bool) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout", "user_id", userID)

	if allDevices {
		count, err := s.Repo.DeactivateAllUserSessions(ctx, userID)
		if err != nil {
			return err
		}
		s.publish(ctx, events.TypeLogout, userID.String(), map[string]any{"all_devices": true, "revoked": count})
		l.Info("logout_all_devices", "revoked", count)
		return nil
	}

	if err := s.Repo.DeactivateSession(ctx, sessionID); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	s.publish(ctx, events.TypeLogout, userID.String(), map[string]any{"session_id": sessionID})
	l.Info("logout", "session_id", sessionID)
	return nil
}

// ChangePassword verifies the current password, stores the new hash, and
// revokes every session the user holds. Password change revokes all trust.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.change_password", "user_id", userID)

	if len(newPassword) < 8 {
		return fmt.Errorf("new password must be at least 8 characters: %w", ErrValidation)
	}

	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !pkg_hash.CheckPassword(user.PasswordHash, currentPassword) {
		return ErrInvalidCredentials
	}

	newHash, err := pkg_hash.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Repo.UpdatePasswordHash(ctx, userID, newHash); err != nil {
		return err
	}

	count, err := s.Repo.DeactivateAllUserSessions(ctx, userID)
	if err != nil {
		return fmt.Errorf("revoke sessions after password change: %w", err)
	}

	s.publish(ctx, events.TypePasswordChange, userID.String(), map[string]any{"revoked_sessions": count})
	l.Info("password_changed", "revoked_sessions", count)
	return nil
}
