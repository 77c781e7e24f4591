package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/panjiggm/syntegra-app-sub000/internal/models"
)

// MaxLoginAttempts failed logins lock the account for LockoutDuration.
const (
	MaxLoginAttempts = 5
	LockoutDuration  = 30 * time.Minute
)

func (r *GormRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormRepo) FindAdminByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).
		Where("email = ? AND role = ?", email, models.RoleAdmin).
		First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormRepo) FindAdminByNIK(ctx context.Context, nik string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).
		Where("nik = ? AND role = ?", nik, models.RoleAdmin).
		First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormRepo) FindParticipantByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).
		Where("phone = ? AND role = ?", phone, models.RoleParticipant).
		First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementLoginAttempts bumps the counter and returns the new value in one
// statement, so concurrent failed logins each observe a distinct count and
// the lock threshold is crossed exactly once.
func (r *GormRepo) IncrementLoginAttempts(ctx context.Context, userID uuid.UUID) (int, error) {
	var user models.User
	res := r.DB.WithContext(ctx).Model(&user).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "login_attempts"}}}).
		Where("id = ?", userID).
		Update("login_attempts", gorm.Expr("login_attempts + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	return user.LoginAttempts, nil
}

func (r *GormRepo) ResetLoginAttempts(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"login_attempts": 0,
			"locked_until":   nil,
		}).Error
}

func (r *GormRepo) LockAccount(ctx context.Context, userID uuid.UUID, until time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("locked_until", until).Error
}
