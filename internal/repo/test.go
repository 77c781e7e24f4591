package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/panjiggm/syntegra-app-sub000/internal/models"
)

type TestFilter struct {
	Category   string
	ModuleType string
	Query      string
}

func (r *GormRepo) GetTest(ctx context.Context, id uuid.UUID) (*models.Test, error) {
	var test models.Test
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&test).Error; err != nil {
		return nil, translate(err)
	}
	return &test, nil
}

func (r *GormRepo) ListTests(ctx context.Context, f TestFilter, offset, limit int) (int64, []models.Test, error) {
	q := r.DB.WithContext(ctx).Model(&models.Test{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.ModuleType != "" {
		q = q.Where("module_type = ?", f.ModuleType)
	}
	if f.Query != "" {
		q = q.Where("name LIKE ?", "%"+f.Query+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Test, 0, limit)
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CreateTest(ctx context.Context, test *models.Test) error {
	return r.DB.WithContext(ctx).Create(test).Error
}

func (r *GormRepo) SaveTest(ctx context.Context, test *models.Test) error {
	return r.DB.WithContext(ctx).Save(test).Error
}

func (r *GormRepo) DeleteTest(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&models.Test{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
