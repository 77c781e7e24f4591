package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/panjiggm/syntegra-app-sub000/internal/models"
)

// CreateAuthSession inserts a session row. The ID must be supplied by the
// caller: it is embedded into the token pair before the row exists, so the
// database never generates it.
func (r *GormRepo) CreateAuthSession(ctx context.Context, s *models.AuthSession) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *GormRepo) GetAuthSession(ctx context.Context, id uuid.UUID) (*models.AuthSession, error) {
	var s models.AuthSession
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// SessionIsActive is the store-side authority consulted by the middleware:
// the row must exist, be active, and not be past its expiry.
func (r *GormRepo) SessionIsActive(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.AuthSession{}).
		Where("id = ? AND is_active = ? AND expires_at > ?", id, true, now).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) FindActiveSessionByRefreshHash(ctx context.Context, refreshHash string) (*models.AuthSession, error) {
	var s models.AuthSession
	if err := r.DB.WithContext(ctx).
		Where("refresh_token_hash = ? AND is_active = ?", refreshHash, true).
		First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *GormRepo) ListActiveSessions(ctx context.Context, userID uuid.UUID) ([]models.AuthSession, error) {
	var sessions []models.AuthSession
	if err := r.DB.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// RotateSessionTokens replaces the token pair of an existing session row in
// place, keeping its id.
func (r *GormRepo) RotateSessionTokens(ctx context.Context, id uuid.UUID, tokenHash, refreshHash string, expiresAt, now time.Time) error {
	res := r.DB.WithContext(ctx).Model(&models.AuthSession{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]any{
			"token_hash":         tokenHash,
			"refresh_token_hash": refreshHash,
			"expires_at":         expiresAt,
			"last_used":          now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeactivateSession(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Model(&models.AuthSession{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeactivateAllUserSessions(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.AuthSession{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

func (r *GormRepo) DeactivateOtherUserSessions(ctx context.Context, userID, keepID uuid.UUID) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.AuthSession{}).
		Where("user_id = ? AND id <> ? AND is_active = ?", userID, keepID, true).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

// TouchSession bumps last_used. Called off the request path; failures are
// the caller's to log, never to propagate.
func (r *GormRepo) TouchSession(ctx context.Context, id uuid.UUID, now time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.AuthSession{}).
		Where("id = ?", id).
		Update("last_used", now).Error
}
