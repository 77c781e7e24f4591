package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/panjiggm/syntegra-app-sub000/internal/models"
)

func (r *GormRepo) GetTestSession(ctx context.Context, id uuid.UUID) (*models.TestSession, error) {
	var s models.TestSession
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *GormRepo) GetTestSessionByCode(ctx context.Context, code string) (*models.TestSession, error) {
	var s models.TestSession
	if err := r.DB.WithContext(ctx).Where("session_code = ?", code).First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *GormRepo) ListTestSessions(ctx context.Context, status string, offset, limit int) (int64, []models.TestSession, error) {
	q := r.DB.WithContext(ctx).Model(&models.TestSession{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.TestSession, 0, limit)
	if err := q.Order("start_time DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CreateTestSession(ctx context.Context, s *models.TestSession) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *GormRepo) SaveTestSession(ctx context.Context, s *models.TestSession) error {
	return r.DB.WithContext(ctx).Save(s).Error
}

func (r *GormRepo) DeleteTestSession(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&models.TestSession{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DueSessions returns draft sessions whose window has opened.
func (r *GormRepo) DueSessions(ctx context.Context, now time.Time) ([]models.TestSession, error) {
	var items []models.TestSession
	if err := r.DB.WithContext(ctx).
		Where("status = ? AND start_time <= ? AND end_time > ?", models.SessionStatusDraft, now, now).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// OverdueSessions returns draft or active sessions whose window has closed.
func (r *GormRepo) OverdueSessions(ctx context.Context, now time.Time) ([]models.TestSession, error) {
	var items []models.TestSession
	if err := r.DB.WithContext(ctx).
		Where("status IN ? AND end_time <= ?", []string{models.SessionStatusDraft, models.SessionStatusActive}, now).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) UpdateTestSessionStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := r.DB.WithContext(ctx).Model(&models.TestSession{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
