package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/panjiggm/syntegra-app-sub000/internal/models"
)

func (r *GormRepo) GetParticipant(ctx context.Context, id uuid.UUID) (*models.SessionParticipant, error) {
	var p models.SessionParticipant
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *GormRepo) GetParticipantByLinkToken(ctx context.Context, token string) (*models.SessionParticipant, error) {
	var p models.SessionParticipant
	if err := r.DB.WithContext(ctx).Where("unique_link_token = ?", token).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *GormRepo) ParticipantExists(ctx context.Context, sessionID uuid.UUID, phone string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.SessionParticipant{}).
		Where("session_id = ? AND phone = ?", sessionID, phone).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) CountParticipants(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.SessionParticipant{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

// ListParticipationsByUser returns every session participation of one user,
// session preloaded, newest invitation first.
func (r *GormRepo) ListParticipationsByUser(ctx context.Context, userID uuid.UUID) ([]models.SessionParticipant, error) {
	var items []models.SessionParticipant
	if err := r.DB.WithContext(ctx).
		Preload("Session").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) ListParticipants(ctx context.Context, sessionID uuid.UUID, status string, offset, limit int) (int64, []models.SessionParticipant, error) {
	q := r.DB.WithContext(ctx).Model(&models.SessionParticipant{}).
		Where("session_id = ?", sessionID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.SessionParticipant, 0, limit)
	if err := q.Order("created_at ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CreateParticipant(ctx context.Context, p *models.SessionParticipant) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) UpdateParticipantStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := r.DB.WithContext(ctx).Model(&models.SessionParticipant{}).
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

func (r *GormRepo) DeleteParticipant(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&models.SessionParticipant{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
