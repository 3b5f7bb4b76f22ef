package postgres

import (
	"context"
	"errors"
	"fmt"

	"threadmarket/domain"
	"threadmarket/pkg/apperror"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		DB: db,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.DB.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	var user domain.User

	err := r.DB.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, apperror.NotFound("user does not exist")
		}
		return domain.User{}, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	var user domain.User

	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, apperror.NotFound("user does not exist")
		}
		return domain.User{}, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	var users []domain.User

	if err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}

	return users, nil
}

// UpdateProfile touches only the fields a user may edit themselves.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	result := r.DB.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", user.ID).
		Select("name", "phone", "address").
		Updates(user)
	if result.Error != nil {
		return fmt.Errorf("failed to update profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("user does not exist")
	}

	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	result := r.DB.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return fmt.Errorf("failed to update password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("user does not exist")
	}

	return nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id uint, role string) error {
	result := r.DB.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("role", role)
	if result.Error != nil {
		return fmt.Errorf("failed to update role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("user does not exist")
	}

	return nil
}

func (r *UserRepository) SetVerified(ctx context.Context, id uint, verified bool) error {
	result := r.DB.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("verified", verified)
	if result.Error != nil {
		return fmt.Errorf("failed to update verification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("user does not exist")
	}

	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	result := r.DB.WithContext(ctx).Delete(&domain.User{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("user does not exist")
	}

	return nil
}
